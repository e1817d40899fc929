package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EVENT_SOURCES", "sqs")
	t.Setenv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/order-events")
	t.Setenv("USER_STORE", "mongo")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("PUSH_PROVIDER", "fcm")
	t.Setenv("AWS_USE_SECRETS", "")
	for _, key := range []string{
		"KAFKA_BROKERS", "RABBITMQ_URL", "INGRESS_JWT_SECRET", "DYNAMODB_USERS_TABLE",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"SNS_PLATFORM_APPLICATION_ARN", "TOKEN_CACHE_TTL", "ORDER_EVENTS_QUEUE_URL",
		"INGRESS_RATE_PER_SECOND", "INGRESS_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, []string{"sqs"}, cfg.EventSources)
	assert.Equal(t, 5*time.Minute, cfg.TokenCacheTTL)
	assert.Equal(t, "orders", cfg.OrdersCollection)
	assert.Equal(t, "users", cfg.UsersCollection)
	assert.Equal(t, "order_exchange", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 50.0, cfg.IngressRatePerSecond)
	assert.Equal(t, 100, cfg.IngressBurst)
	assert.True(t, cfg.HasSource("sqs"))
	assert.False(t, cfg.HasSource("kafka"))
}

func TestLoadConfig_MultipleSources(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("EVENT_SOURCES", "sqs, kafka,http")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("INGRESS_JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_CACHE_TTL", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"sqs", "kafka", "http"}, cfg.EventSources)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.TokenCacheTTL)
}

func TestLoadConfig_FirestoreStore(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("USER_STORE", "firestore")
	t.Setenv("MONGO_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "firestore", cfg.UserStore)
	assert.Equal(t, "users", cfg.UsersCollection)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown source", map[string]string{"EVENT_SOURCES": "pubsub"}},
		{"sqs without queue", map[string]string{"SQS_QUEUE_URL": ""}},
		{"kafka without brokers", map[string]string{"EVENT_SOURCES": "kafka"}},
		{"rabbitmq without url", map[string]string{"EVENT_SOURCES": "rabbitmq"}},
		{"http without secret", map[string]string{"EVENT_SOURCES": "http"}},
		{"unknown store", map[string]string{"USER_STORE": "cassandra"}},
		{"dynamodb without table", map[string]string{"USER_STORE": "dynamodb"}},
		{"postgres without credentials", map[string]string{"USER_STORE": "postgres"}},
		{"sns without platform app", map[string]string{"PUSH_PROVIDER": "sns"}},
		{"unknown provider", map[string]string{"PUSH_PROVIDER": "apns"}},
		{"bad ttl", map[string]string{"TOKEN_CACHE_TTL": "five minutes"}},
		{"bad burst", map[string]string{"INGRESS_BURST": "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{FCMCredentialsFile: "/etc/fcm.json", IngressJWTSecret: "from-env"}
	applySecrets(context.Background(), fakeSecrets{
		"notifier/FCM_CREDENTIALS": `{"type":"service_account"}`,
		"notifier/DB_CREDENTIALS":  `{"POSTGRES_USER":"notifier","POSTGRES_PASSWORD":"pw","POSTGRES_DB":"users"}`,
	}, cfg)

	assert.Equal(t, `{"type":"service_account"}`, cfg.FCMCredentialsJSON)
	assert.Equal(t, "from-env", cfg.IngressJWTSecret)
	assert.Equal(t, "notifier", cfg.Postgres.User)
	assert.Equal(t, "pw", cfg.Postgres.Password)
	assert.Equal(t, "users", cfg.Postgres.DB)
}

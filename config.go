package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rayhandestian/quickbites/consumer"
	"github.com/rayhandestian/quickbites/database"
	aws_pkg "github.com/rayhandestian/quickbites/pkg/aws"
)

const (
	sourceSQS          = "sqs"
	sourceKafka        = "kafka"
	sourceRabbitMQ     = "rabbitmq"
	sourceChangeStream = "mongo"
	sourceHTTP         = "http"

	storeMongo     = "mongo"
	storeDynamoDB  = "dynamodb"
	storePostgres  = "postgres"
	storeFirestore = "firestore"

	providerFCM = "fcm"
	providerSNS = "sns"
)

type Config struct {
	AppEnv        string
	Port          string
	ServiceRegion string
	EventSources  []string
	UserStore     string
	PushProvider  string

	MongoURL         string
	MongoDB          string
	OrdersCollection string
	UsersCollection  string
	DynamoUsersTable string
	Postgres         database.PostgresConfig
	RedisURL         string
	TokenCacheTTL    time.Duration

	SQSQueueURL  string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	RabbitMQ     consumer.RabbitMQConfig

	FCMCredentialsFile        string
	FCMCredentialsJSON        string
	SNSPlatformApplicationARN string
	IngressJWTSecret          string
	IngressRatePerSecond      float64
	IngressBurst              int
	CloudWatchEnabled         bool
}

// secretGetter is satisfied by *aws_pkg.SecretsClient.
type secretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("TOKEN_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_CACHE_TTL: %w", err)
	}

	ratePerSecond, err := strconv.ParseFloat(getEnv("INGRESS_RATE_PER_SECOND", "50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid INGRESS_RATE_PER_SECOND: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("INGRESS_BURST", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGRESS_BURST: %w", err)
	}

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8090"),
		ServiceRegion: getEnv("SERVICE_REGION", "asia-southeast2"),
		EventSources:  splitList(getEnv("EVENT_SOURCES", sourceSQS)),
		UserStore:     getEnv("USER_STORE", storeMongo),
		PushProvider:  getEnv("PUSH_PROVIDER", providerFCM),

		MongoURL:         os.Getenv("MONGO_URL"),
		MongoDB:          getEnv("MONGO_DB", "quickbites"),
		OrdersCollection: getEnv("ORDERS_COLLECTION", "orders"),
		UsersCollection:  getEnv("USERS_COLLECTION", "users"),
		DynamoUsersTable: os.Getenv("DYNAMODB_USERS_TABLE"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Jakarta"),
		},
		RedisURL:      os.Getenv("REDIS_URL"),
		TokenCacheTTL: ttl,

		SQSQueueURL:  getEnv("SQS_QUEUE_URL", os.Getenv("ORDER_EVENTS_QUEUE_URL")),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "order.events"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "order-notifier"),
		RabbitMQ: consumer.RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "order_exchange"),
			Queue:    getEnv("RABBITMQ_QUEUE", "order_notifications"),
		},

		FCMCredentialsFile:        os.Getenv("FCM_CREDENTIALS_FILE"),
		FCMCredentialsJSON:        os.Getenv("FCM_CREDENTIALS_JSON"),
		SNSPlatformApplicationARN: os.Getenv("SNS_PLATFORM_APPLICATION_ARN"),
		IngressJWTSecret:          os.Getenv("INGRESS_JWT_SECRET"),
		IngressRatePerSecond:      ratePerSecond,
		IngressBurst:              burst,
		CloudWatchEnabled:         os.Getenv("CLOUDWATCH_ENABLED") == "true",
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			applySecrets(context.Background(), aws_pkg.NewSecretsClient(awsCfg), cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets overrides credentials with values found in Secrets Manager.
// Missing secrets leave the environment values in place.
func applySecrets(ctx context.Context, sm secretGetter, cfg *Config) {
	if v, err := sm.GetSecret(ctx, "notifier/FCM_CREDENTIALS"); err == nil && v != "" {
		cfg.FCMCredentialsJSON = v
	}
	if v, err := sm.GetSecret(ctx, "notifier/INGRESS_JWT_SECRET"); err == nil && v != "" {
		cfg.IngressJWTSecret = v
	}
	if dbjson, err := sm.GetSecret(ctx, "notifier/DB_CREDENTIALS"); err == nil && dbjson != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(dbjson), &m); err == nil {
			if v, ok := m["POSTGRES_USER"]; ok && v != "" {
				cfg.Postgres.User = v
			}
			if v, ok := m["POSTGRES_PASSWORD"]; ok && v != "" {
				cfg.Postgres.Password = v
			}
			if v, ok := m["POSTGRES_DB"]; ok && v != "" {
				cfg.Postgres.DB = v
			}
			if v, ok := m["POSTGRES_HOST"]; ok && v != "" {
				cfg.Postgres.Host = v
			}
		}
	}
}

func (c *Config) validate() error {
	if len(c.EventSources) == 0 {
		return fmt.Errorf("EVENT_SOURCES is empty")
	}
	for _, s := range c.EventSources {
		switch s {
		case sourceSQS:
			if c.SQSQueueURL == "" {
				return fmt.Errorf("SQS_QUEUE_URL is required for the sqs source")
			}
		case sourceKafka:
			if len(c.KafkaBrokers) == 0 {
				return fmt.Errorf("KAFKA_BROKERS is required for the kafka source")
			}
		case sourceRabbitMQ:
			if c.RabbitMQ.URL == "" {
				return fmt.Errorf("RABBITMQ_URL is required for the rabbitmq source")
			}
		case sourceChangeStream:
			if c.MongoURL == "" {
				return fmt.Errorf("MONGO_URL is required for the mongo source")
			}
		case sourceHTTP:
			if c.IngressJWTSecret == "" {
				return fmt.Errorf("INGRESS_JWT_SECRET is required for the http source")
			}
		default:
			return fmt.Errorf("unknown event source %q", s)
		}
	}

	switch c.UserStore {
	case storeMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("MONGO_URL is required for the mongo user store")
		}
	case storeDynamoDB:
		if c.DynamoUsersTable == "" {
			return fmt.Errorf("DYNAMODB_USERS_TABLE is required for the dynamodb user store")
		}
	case storePostgres:
		if _, err := c.Postgres.DSN(); err != nil {
			return fmt.Errorf("database config incomplete: %w", err)
		}
	case storeFirestore:
		// Firebase credentials may come from the environment (ADC).
	default:
		return fmt.Errorf("unknown USER_STORE %q", c.UserStore)
	}

	switch c.PushProvider {
	case providerFCM:
	case providerSNS:
		if c.SNSPlatformApplicationARN == "" {
			return fmt.Errorf("SNS_PLATFORM_APPLICATION_ARN is required for the sns provider")
		}
	default:
		return fmt.Errorf("unknown PUSH_PROVIDER %q", c.PushProvider)
	}
	return nil
}

func (c *Config) HasSource(name string) bool {
	for _, s := range c.EventSources {
		if s == name {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

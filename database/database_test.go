package database

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgresConfig_DSN(t *testing.T) {
	dsn, err := PostgresConfig{User: "notifier", Password: "secret", DB: "quickbites"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=localhost user=notifier password=secret dbname=quickbites port=5432 sslmode=disable TimeZone=Asia/Jakarta", dsn)

	dsn, err = PostgresConfig{User: "u", Password: "p", DB: "d", Host: "db", Port: "6543", SSLMode: "require", TimeZone: "UTC"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=db user=u password=p dbname=d port=6543 sslmode=require TimeZone=UTC", dsn)
}

func TestPostgresConfig_DSNValidation(t *testing.T) {
	for _, cfg := range []PostgresConfig{
		{Password: "p", DB: "d"},
		{User: "u", DB: "d"},
		{User: "u", Password: "p"},
	} {
		_, err := cfg.DSN()
		assert.Error(t, err)
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not a url", zap.NewNop())
	assert.Error(t, err)
}

type fakeDescribe struct{ err error }

func (f fakeDescribe) DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, f.err
}

func TestCheckTable(t *testing.T) {
	assert.NoError(t, CheckTable(context.Background(), fakeDescribe{}, "users"))
	assert.Error(t, CheckTable(context.Background(), fakeDescribe{}, ""))
	assert.Error(t, CheckTable(context.Background(), fakeDescribe{err: errors.New("ResourceNotFoundException")}, "users"))
}

func TestConnectMongo_RequiresURL(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "", zap.NewNop())
	assert.Error(t, err)
}

func TestConnectFirestore_RequiresApp(t *testing.T) {
	_, err := ConnectFirestore(context.Background(), nil, zap.NewNop())
	assert.Error(t, err)
	assert.NoError(t, CloseFirestore(nil))
}

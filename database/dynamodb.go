package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// DescribeTableAPI is used to confirm the users table exists at startup.
type DescribeTableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

func NewDynamoDBClient(ctx context.Context, cfg aws.Config, table string, logger *zap.Logger) (*dynamodb.Client, error) {
	client := dynamodb.NewFromConfig(cfg)
	if err := CheckTable(ctx, client, table); err != nil {
		return nil, err
	}
	logger.Info("Connected to DynamoDB", zap.String("table", table))
	return client, nil
}

// CheckTable fails when table is unset or cannot be described.
func CheckTable(ctx context.Context, api DescribeTableAPI, table string) error {
	if table == "" {
		return fmt.Errorf("DYNAMODB_USERS_TABLE not set")
	}
	if _, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}); err != nil {
		return fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	return nil
}

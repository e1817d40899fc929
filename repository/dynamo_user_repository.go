package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rayhandestian/quickbites/models"
)

// DynamoGetItemAPI is the part of the DynamoDB client the repository uses.
type DynamoGetItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoUserRepository reads users from a table keyed by the string
// attribute `id`.
type DynamoUserRepository struct {
	client DynamoGetItemAPI
	table  string
}

func NewDynamoUserRepository(client DynamoGetItemAPI, table string) *DynamoUserRepository {
	return &DynamoUserRepository{client: client, table: table}
}

func (d *DynamoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &user, nil
}

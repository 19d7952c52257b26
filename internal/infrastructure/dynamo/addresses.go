package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vanishmail/internal/domain"
)

// AddressRepo provides typed DynamoDB operations for the addresses table.
// Expired rows are evicted by the table's TTL on expires_at.
type AddressRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAddressRepo(client *dynamodb.Client, tableName string) *AddressRepo {
	return &AddressRepo{client: client, tableName: tableName}
}

func (r *AddressRepo) Put(ctx context.Context, a *domain.Address) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AddressRepo) Get(ctx context.Context, addressID string) (*domain.Address, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("address_id", addressID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("address not found: %w", domain.ErrNotFound)
	}
	var a domain.Address
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByAddress resolves a full address string (local@domain) via the
// address-index GSI.
func (r *AddressRepo) GetByAddress(ctx context.Context, address string) (*domain.Address, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("address-index"),
		KeyConditionExpression:    aws.String("address = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: address}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("address not found: %w", domain.ErrNotFound)
	}
	var a domain.Address
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("user_id = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var addrs []domain.Address
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &addrs); err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *AddressRepo) Delete(ctx context.Context, addressID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("address_id", addressID),
	})
	return err
}

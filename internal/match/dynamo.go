package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps like records in a table with string hash key "pair_key".
type DynamoStore struct {
	client DynamoAPI
	table  string
}

type dynamoRecord struct {
	PairKey   string `dynamodbav:"pair_key"`
	FIDLow    int64  `dynamodbav:"fid_low"`
	FIDHigh   int64  `dynamodbav:"fid_high"`
	Liked     bool   `dynamodbav:"liked"`
	CreatedAt string `dynamodbav:"created_at"`
}

// NewDynamoStore builds a DynamoDB-backed like store.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// CheckMutualLike reports whether a like record exists for the pair.
func (s *DynamoStore) CheckMutualLike(ctx context.Context, a, b int64) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"pair_key": &types.AttributeValueMemberS{Value: PairKey(a, b)}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("get like record from table '%s': %w", s.table, err)
	}
	if len(out.Item) == 0 {
		return false, nil
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return false, fmt.Errorf("unmarshal like record: %w", err)
	}
	return rec.Liked, nil
}

// RecordLike writes the pair's record unless one already exists.
func (s *DynamoStore) RecordLike(ctx context.Context, a, b int64) error {
	low, high := order(a, b)
	item, err := attributevalue.MarshalMap(dynamoRecord{
		PairKey:   PairKey(a, b),
		FIDLow:    low,
		FIDHigh:   high,
		Liked:     true,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal like record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pair_key)"),
	})
	if err != nil {
		var exists *types.ConditionalCheckFailedException
		if errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("put like record in table '%s': %w", s.table, err)
	}
	return nil
}

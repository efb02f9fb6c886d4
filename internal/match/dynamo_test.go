package match

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	puts  int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func hashKey(item map[string]types.AttributeValue) string {
	if v, ok := item["pair_key"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[hashKey(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	key := hashKey(in.Item)
	if _, exists := f.items[key]; exists && aws.ToString(in.ConditionExpression) != "" {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoStore(t *testing.T) {
	fake := newFakeDynamo()
	s := NewDynamoStore(fake, "likes")
	exerciseStore(t, s)

	if fake.puts != 2 {
		t.Fatalf("expected 2 put attempts, got %d", fake.puts)
	}
	item, ok := fake.items["1:42"]
	if !ok {
		t.Fatalf("expected item keyed 1:42")
	}
	if low, ok := item["fid_low"].(*types.AttributeValueMemberN); !ok || low.Value != "1" {
		t.Fatalf("unexpected fid_low %#v", item["fid_low"])
	}
}

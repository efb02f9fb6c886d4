package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "lovecaster"

// RedisStore keeps like records as JSON strings under <prefix>:likes:<pair>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a Redis-backed like store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(a, b int64) string {
	return s.prefix + ":likes:" + PairKey(a, b)
}

// CheckMutualLike reports whether a like record exists for the pair.
func (s *RedisStore) CheckMutualLike(ctx context.Context, a, b int64) (bool, error) {
	raw, err := s.client.Get(ctx, s.key(a, b)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get like record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return false, fmt.Errorf("decode like record %s: %w", PairKey(a, b), err)
	}
	return rec.Liked, nil
}

// RecordLike upserts the pair's record. Records never expire.
func (s *RedisStore) RecordLike(ctx context.Context, a, b int64) error {
	payload, err := json.Marshal(Record{Liked: true})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(a, b), payload, 0).Err(); err != nil {
		return fmt.Errorf("set like record: %w", err)
	}
	return nil
}

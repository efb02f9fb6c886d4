package match

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	pairs := [][2]int64{{1, 2}, {42, 7}, {326948, 1}, {5, 5}}
	for _, p := range pairs {
		if PairKey(p[0], p[1]) != PairKey(p[1], p[0]) {
			t.Fatalf("pair key differs for %v", p)
		}
	}
	if got := PairKey(42, 7); got != "7:42" {
		t.Fatalf("expected 7:42, got %s", got)
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedisStore(client, "test"), mr
}

// exerciseStore checks the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	liked, err := s.CheckMutualLike(ctx, 1, 42)
	if err != nil {
		t.Fatalf("check before like: %v", err)
	}
	if liked {
		t.Fatalf("expected no record before any like")
	}

	if err := s.RecordLike(ctx, 1, 42); err != nil {
		t.Fatalf("record like: %v", err)
	}
	if err := s.RecordLike(ctx, 1, 42); err != nil {
		t.Fatalf("record like twice: %v", err)
	}

	for _, pair := range [][2]int64{{1, 42}, {42, 1}} {
		liked, err := s.CheckMutualLike(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("check %v: %v", pair, err)
		}
		if !liked {
			t.Fatalf("expected record for %v", pair)
		}
	}

	liked, err = s.CheckMutualLike(ctx, 1, 43)
	if err != nil {
		t.Fatalf("check unrelated pair: %v", err)
	}
	if liked {
		t.Fatalf("unrelated pair should have no record")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	s, mr := newRedisStore(t)
	exerciseStore(t, s)

	raw, err := mr.Get("test:likes:1:42")
	if err != nil {
		t.Fatalf("expected raw record: %v", err)
	}
	if raw != `{"liked":true}` {
		t.Fatalf("unexpected stored value %s", raw)
	}
	if ttl := mr.TTL("test:likes:1:42"); ttl != 0 {
		t.Fatalf("like records must not expire, ttl=%s", ttl)
	}
}

func TestRedisStoreSurfacesOutage(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	if _, err := s.CheckMutualLike(context.Background(), 1, 2); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
	if err := s.RecordLike(context.Background(), 1, 2); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

func TestRedisStoreRejectsCorruptRecord(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Set("test:likes:1:2", "not-json")

	if _, err := s.CheckMutualLike(context.Background(), 2, 1); err == nil {
		t.Fatalf("expected decode error")
	}
}

//go:build integration

package match

import (
	"context"
	"os"
	"testing"

	"github.com/lovecaster/lovecaster/internal/infra"
)

// Run with: LOVECASTER_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/match/
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("LOVECASTER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LOVECASTER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := infra.NewPostgresPool(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := infra.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// migrations are re-runnable
	if err := infra.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM like_records WHERE pair_key IN ('1:42', '1:43')`); err != nil {
		t.Fatalf("reset: %v", err)
	}

	exerciseStore(t, NewPostgresStore(pool))

	var low, high int64
	if err := pool.QueryRow(ctx, `SELECT fid_low, fid_high FROM like_records WHERE pair_key = '1:42'`).Scan(&low, &high); err != nil {
		t.Fatalf("read row: %v", err)
	}
	if low != 1 || high != 42 {
		t.Fatalf("unexpected pair members %d/%d", low, high)
	}
}

package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists like records in the like_records table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed like store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CheckMutualLike reports whether a like record exists for the pair.
func (s *PostgresStore) CheckMutualLike(ctx context.Context, a, b int64) (bool, error) {
	var liked bool
	err := s.db.QueryRow(ctx, `SELECT liked FROM like_records WHERE pair_key = $1`, PairKey(a, b)).Scan(&liked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select like record: %w", err)
	}
	return liked, nil
}

// RecordLike inserts the pair's record; an existing row is left untouched.
func (s *PostgresStore) RecordLike(ctx context.Context, a, b int64) error {
	low, high := order(a, b)
	_, err := s.db.Exec(ctx, `INSERT INTO like_records (pair_key, fid_low, fid_high, liked)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (pair_key) DO NOTHING`, PairKey(a, b), low, high)
	if err != nil {
		return fmt.Errorf("insert like record: %w", err)
	}
	return nil
}

package match

import (
	"context"
	"strconv"
)

// Store records one-directional likes under an order-independent pair key and
// answers whether a pair has a like on record.
type Store interface {
	CheckMutualLike(ctx context.Context, a, b int64) (bool, error)
	RecordLike(ctx context.Context, a, b int64) error
}

// Record is the persisted value for a pair.
type Record struct {
	Liked bool `json:"liked"`
}

// PairKey returns "min:max" so both members of a pair resolve to the same record.
func PairKey(a, b int64) string {
	low, high := order(a, b)
	return strconv.FormatInt(low, 10) + ":" + strconv.FormatInt(high, 10)
}

func order(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

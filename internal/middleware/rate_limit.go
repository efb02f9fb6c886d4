package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FIDLocal is the fiber local holding the verified acting fid, read by Audit.
const FIDLocal = "fid"

const rateWindow = time.Minute

// InteractionRateLimit limits frame POSTs per client IP using a fixed
// one-minute window in Redis. It runs before the packet is validated, so it
// never looks at the claimed fid. Without Redis it is a no-op.
func InteractionRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 600
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		cnt, err := hit(c.UserContext(), cache, "rl:frame:ip:"+c.IP())
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many interactions, slow down")
		}
		return c.Next()
	}
}

// FIDLimiter counts verified frame actions per fid. It must only be fed fids
// taken from a validated message.
type FIDLimiter struct {
	cache     *redis.Client
	maxPerMin int
}

// NewFIDLimiter builds a per-fid limiter. A nil cache allows everything.
func NewFIDLimiter(cache *redis.Client, maxPerMin int) *FIDLimiter {
	if maxPerMin <= 0 {
		maxPerMin = 60
	}
	return &FIDLimiter{cache: cache, maxPerMin: maxPerMin}
}

// Allow records one action for fid and reports whether it is within the window.
func (l *FIDLimiter) Allow(ctx context.Context, fid int64) (bool, error) {
	if l == nil || l.cache == nil {
		return true, nil
	}
	cnt, err := hit(ctx, l.cache, "rl:frame:fid:"+strconv.FormatInt(fid, 10))
	if err != nil {
		return true, err
	}
	return cnt <= int64(l.maxPerMin), nil
}

func hit(ctx context.Context, cache *redis.Client, key string) (int64, error) {
	cnt, err := cache.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		cache.Expire(ctx, key, rateWindow)
	}
	return cnt, nil
}

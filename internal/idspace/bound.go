// Package idspace provides the upper bound of registered Farcaster ids, used to
// sample random candidates.
package idspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxFID is the static bound used when the registry cannot be read.
const DefaultMaxFID int64 = 326948

// resolveTimeout caps the one-time source read.
const resolveTimeout = 10 * time.Second

// Bound returns the current largest valid fid.
type Bound interface {
	Max(ctx context.Context) int64
}

// CounterSource reads an authoritative fid counter.
type CounterSource interface {
	Count(ctx context.Context) (int64, error)
}

// Static is a fixed bound.
type Static int64

// Max returns the fixed value.
func (s Static) Max(context.Context) int64 { return int64(s) }

// Lazy reads its source once, on first use, and keeps the answer for the
// lifetime of the value. A failed read caches the fallback instead; the source
// is never asked again.
type Lazy struct {
	source   CounterSource
	fallback int64
	logger   *slog.Logger

	once  sync.Once
	value int64
}

// NewLazy builds a memoized bound. A nil source always yields the fallback.
func NewLazy(source CounterSource, fallback int64, logger *slog.Logger) *Lazy {
	if fallback <= 0 {
		fallback = DefaultMaxFID
	}
	return &Lazy{source: source, fallback: fallback, logger: logger}
}

// Max returns the cached bound, resolving it on the first call. The read is
// detached from ctx cancellation so one caller going away cannot pin the
// fallback for the process lifetime.
func (l *Lazy) Max(ctx context.Context) int64 {
	l.once.Do(func() {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		l.value = l.resolve(readCtx)
	})
	return l.value
}

func (l *Lazy) resolve(ctx context.Context) int64 {
	if l.source == nil {
		return l.fallback
	}

	n, err := l.source.Count(ctx)
	if err == nil && n <= 0 {
		err = errors.New("counter returned a non-positive value")
	}
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("fid bound lookup failed, using static bound",
				slog.Int64("fallback", l.fallback),
				slog.Any("error", err),
			)
		}
		return l.fallback
	}

	if l.logger != nil {
		l.logger.Info("fid bound resolved", slog.Int64("max_fid", n))
	}
	return n
}

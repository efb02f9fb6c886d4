package candidate

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"

	"github.com/lovecaster/lovecaster/internal/idspace"
	"github.com/lovecaster/lovecaster/internal/profile"
)

// MaxRetry is the number of random fids tried per search.
const MaxRetry = 5

// Sampler returns an fid in [1, bound].
type Sampler func(bound int64) int64

// UniformSampler draws uniformly from [1, bound].
func UniformSampler(bound int64) int64 {
	if bound < 1 {
		return 1
	}
	return rand.Int63n(bound) + 1
}

// Finder picks random profiles to show as candidates.
type Finder struct {
	bound   idspace.Bound
	source  profile.Source
	sample  Sampler
	retries int
	logger  *slog.Logger
}

// NewFinder builds a Finder. A nil sampler means UniformSampler.
func NewFinder(bound idspace.Bound, source profile.Source, sample Sampler, logger *slog.Logger) *Finder {
	if sample == nil {
		sample = UniformSampler
	}
	return &Finder{bound: bound, source: source, sample: sample, retries: MaxRetry, logger: logger}
}

// Find samples fids until one resolves to a valid profile or MaxRetry
// lookups have been made, in which case it returns profile.Sentinel().
func (f *Finder) Find(ctx context.Context) profile.Profile {
	bound := f.bound.Max(ctx)

	for attempt := 1; attempt <= f.retries; attempt++ {
		if ctx.Err() != nil {
			break
		}

		fid := f.sample(bound)
		p, err := f.source.Lookup(ctx, fid)
		if err == nil && p.Valid() {
			return p
		}
		if err != nil && !errors.Is(err, profile.ErrNotFound) && f.logger != nil {
			f.logger.Warn("candidate lookup failed",
				slog.Int64("fid", fid),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		}
	}

	if f.logger != nil {
		f.logger.Info("no candidate found", slog.Int("attempts", f.retries), slog.Int64("max_fid", bound))
	}
	return profile.Sentinel()
}

package candidate

import (
	"context"
	"errors"
	"testing"

	"github.com/lovecaster/lovecaster/internal/idspace"
	"github.com/lovecaster/lovecaster/internal/logging"
	"github.com/lovecaster/lovecaster/internal/profile"
)

type stubSource struct {
	profiles map[int64]profile.Profile
	err      error
	calls    []int64
}

func (s *stubSource) Lookup(_ context.Context, fid int64) (profile.Profile, error) {
	s.calls = append(s.calls, fid)
	if p, ok := s.profiles[fid]; ok {
		return p, nil
	}
	if s.err != nil {
		return profile.Profile{}, s.err
	}
	return profile.Profile{}, profile.ErrNotFound
}

func fixed(fid int64) Sampler {
	return func(int64) int64 { return fid }
}

func TestFindReturnsFirstValidProfile(t *testing.T) {
	seven := profile.Profile{FID: 7, ImageURL: "https://img/7.png", Username: "seven", DisplayName: "Seven"}
	src := &stubSource{profiles: map[int64]profile.Profile{7: seven}}
	f := NewFinder(idspace.Static(10), src, fixed(7), logging.Discard())

	got := f.Find(context.Background())
	if got != seven {
		t.Fatalf("expected %+v, got %+v", seven, got)
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected exactly 1 lookup, got %d", len(src.calls))
	}
}

func TestFindExhaustsRetriesAndReturnsSentinel(t *testing.T) {
	src := &stubSource{}
	f := NewFinder(idspace.Static(10), src, nil, logging.Discard())

	got := f.Find(context.Background())
	if got != profile.Sentinel() {
		t.Fatalf("expected sentinel, got %+v", got)
	}
	if len(src.calls) != MaxRetry {
		t.Fatalf("expected %d lookups, got %d", MaxRetry, len(src.calls))
	}
}

func TestFindTreatsLookupErrorsAsMisses(t *testing.T) {
	src := &stubSource{err: errors.New("connection reset")}
	f := NewFinder(idspace.Static(10), src, fixed(3), logging.Discard())

	if got := f.Find(context.Background()); !got.IsSentinel() {
		t.Fatalf("expected sentinel, got %+v", got)
	}
	if len(src.calls) != MaxRetry {
		t.Fatalf("expected %d lookups, got %d", MaxRetry, len(src.calls))
	}
}

func TestFindRetriesUntilHit(t *testing.T) {
	nine := profile.Profile{FID: 9, ImageURL: "https://img/9.png", DisplayName: "Nine"}
	src := &stubSource{profiles: map[int64]profile.Profile{9: nine}}
	seq := []int64{1, 2, 9, 4}
	i := 0
	sampler := func(int64) int64 {
		fid := seq[i]
		i++
		return fid
	}
	f := NewFinder(idspace.Static(10), src, sampler, logging.Discard())

	if got := f.Find(context.Background()); got != nine {
		t.Fatalf("expected %+v, got %+v", nine, got)
	}
	if len(src.calls) != 3 {
		t.Fatalf("expected 3 lookups, got %d", len(src.calls))
	}
}

func TestFindStopsOnCancelledContext(t *testing.T) {
	src := &stubSource{}
	f := NewFinder(idspace.Static(10), src, nil, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := f.Find(ctx); !got.IsSentinel() {
		t.Fatalf("expected sentinel, got %+v", got)
	}
	if len(src.calls) != 0 {
		t.Fatalf("expected no lookups, got %d", len(src.calls))
	}
}

func TestUniformSamplerStaysInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if got := UniformSampler(3); got < 1 || got > 3 {
			t.Fatalf("sample %d out of [1,3]", got)
		}
	}
	if got := UniformSampler(0); got != 1 {
		t.Fatalf("expected 1 for empty bound, got %d", got)
	}
}

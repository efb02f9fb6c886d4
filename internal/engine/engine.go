package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lovecaster/lovecaster/internal/match"
	"github.com/lovecaster/lovecaster/internal/notification"
	"github.com/lovecaster/lovecaster/internal/profile"
)

// CandidateFinder proposes the next profile to show.
type CandidateFinder interface {
	Find(ctx context.Context) profile.Profile
}

// Engine advances a participant's state for each frame action.
type Engine struct {
	finder   CandidateFinder
	profiles profile.Source
	store    match.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// New builds an Engine. notifier may be nil.
func New(finder CandidateFinder, profiles profile.Source, store match.Store, notifier notification.Notifier, logger *slog.Logger) *Engine {
	return &Engine{finder: finder, profiles: profiles, store: store, notifier: notifier, logger: logger}
}

// Reduce is the phase step without side effects: start and matched both open a
// new matching round with no candidate; matching is left as is.
func Reduce(s State) State {
	switch s.Phase {
	case PhaseStart, "", PhaseMatched:
		return State{Phase: PhaseMatching}
	default:
		return s
	}
}

// Transition returns the state and card content that follow action in state s.
// The like record, if any, is written before the next candidate is fetched.
func (e *Engine) Transition(ctx context.Context, s State, action Action) (Result, error) {
	switch s.Phase {
	case PhaseStart, "":
		return Result{State: Reduce(s)}, nil

	case PhaseMatched:
		return e.nextCandidate(ctx), nil

	case PhaseMatching:
		if s.Candidate == 0 || !action.IsLike() {
			return e.nextCandidate(ctx), nil
		}
		return e.like(ctx, s.Candidate, action)

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownPhase, s.Phase)
	}
}

func (e *Engine) like(ctx context.Context, candidate int64, action Action) (Result, error) {
	if action.FID <= 0 {
		return Result{}, fmt.Errorf("%w: missing acting fid", ErrInvalidAction)
	}

	mutual, err := e.store.CheckMutualLike(ctx, action.FID, candidate)
	if err != nil {
		return Result{}, fmt.Errorf("check mutual like: %w", err)
	}

	if mutual {
		p := e.matchedProfile(ctx, candidate)
		e.notifyMatch(ctx, action.FID, candidate)
		return Result{
			State:     State{Phase: PhaseMatched, Candidate: candidate},
			Candidate: &p,
		}, nil
	}

	if err := e.store.RecordLike(ctx, action.FID, candidate); err != nil {
		return Result{}, fmt.Errorf("record like: %w", err)
	}
	if e.logger != nil {
		e.logger.Debug("like recorded", slog.Int64("fid", action.FID), slog.Int64("candidate_fid", candidate))
	}

	return e.nextCandidate(ctx), nil
}

func (e *Engine) nextCandidate(ctx context.Context) Result {
	p := e.finder.Find(ctx)
	if p.IsSentinel() {
		return Result{
			State:       State{Phase: PhaseMatching},
			Candidate:   &p,
			NoCandidate: true,
		}
	}
	return Result{
		State:     State{Phase: PhaseMatching, Candidate: p.FID},
		Candidate: &p,
	}
}

// matchedProfile re-fetches the matched candidate for display. A miss still
// yields a profile carrying the fid so the match card can link to it.
func (e *Engine) matchedProfile(ctx context.Context, fid int64) profile.Profile {
	p, err := e.profiles.Lookup(ctx, fid)
	if err == nil {
		return p
	}
	if !errors.Is(err, profile.ErrNotFound) && e.logger != nil {
		e.logger.Warn("matched profile lookup failed", slog.Int64("candidate_fid", fid), slog.Any("error", err))
	}
	return profile.Profile{FID: fid}
}

func (e *Engine) notifyMatch(ctx context.Context, a, b int64) {
	if e.logger != nil {
		e.logger.Info("mutual match", slog.Int64("fid", a), slog.Int64("candidate_fid", b))
	}
	if e.notifier == nil {
		return
	}
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		msg := notification.Message{
			Kind:        notification.KindMutualMatch,
			FID:         pair[0],
			Counterpart: pair[1],
			Body:        fmt.Sprintf("You matched with fid %d", pair[1]),
		}
		if err := e.notifier.Send(ctx, msg); err != nil && e.logger != nil {
			e.logger.Warn("match notification failed", slog.Int64("fid", pair[0]), slog.Any("error", err))
		}
	}
}

package engine

import (
	"errors"

	"github.com/lovecaster/lovecaster/internal/profile"
)

var (
	// ErrUnknownPhase is returned for a state whose phase is not start, matching or matched.
	ErrUnknownPhase = errors.New("unknown phase")
	// ErrInvalidAction is returned when an action cannot be attributed to a participant.
	ErrInvalidAction = errors.New("invalid action")
)

// Phase is the stage of a participant's matching round.
type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseMatching Phase = "matching"
	PhaseMatched  Phase = "matched"
)

// Buttons on the matching card.
const (
	ButtonPass = 1
	ButtonLike = 2
)

// State is everything that survives between round trips. Candidate is zero
// when there is no usable candidate.
type State struct {
	Phase     Phase `json:"phase"`
	Candidate int64 `json:"fid,omitempty"`
}

// Initial is the state of a participant who has not pressed anything yet.
func Initial() State {
	return State{Phase: PhaseStart}
}

// Action is a decoded button press.
type Action struct {
	FID         int64
	ButtonIndex int
	InputText   string
}

// IsLike reports whether the affirmative button was pressed.
func (a Action) IsLike() bool {
	return a.ButtonIndex == ButtonLike
}

// Result is the outcome of a transition.
type Result struct {
	State State
	// Candidate is the profile to render; nil after a transition that fetched nothing.
	Candidate *profile.Profile
	// NoCandidate is set when the search gave up. Candidate then holds the sentinel.
	NoCandidate bool
}

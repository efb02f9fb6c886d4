package frame

import (
	"encoding/json"
	"fmt"

	"github.com/lovecaster/lovecaster/internal/engine"
)

// EncodeState renders s as the string carried in fc:frame:state.
func EncodeState(s engine.State) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// DecodeState parses a state string. An empty string is the initial state.
func DecodeState(raw string) (engine.State, error) {
	if raw == "" {
		return engine.Initial(), nil
	}

	var s engine.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return engine.State{}, fmt.Errorf("%w: state: %v", ErrInvalidPayload, err)
	}

	switch s.Phase {
	case engine.PhaseStart:
		if s.Candidate != 0 {
			return engine.State{}, fmt.Errorf("%w: start state carries a candidate", ErrInvalidPayload)
		}
	case engine.PhaseMatching, engine.PhaseMatched:
	default:
		return engine.State{}, fmt.Errorf("%w: unknown phase %q", ErrInvalidPayload, s.Phase)
	}
	if s.Candidate < 0 {
		return engine.State{}, fmt.Errorf("%w: negative candidate", ErrInvalidPayload)
	}
	return s, nil
}

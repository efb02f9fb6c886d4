package frame

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lovecaster/lovecaster/internal/engine"
)

// Decoder turns a raw frame POST body into the previous state and the action.
type Decoder struct {
	validator Validator
}

// NewDecoder builds a Decoder that checks packets with validator.
func NewDecoder(validator Validator) *Decoder {
	return &Decoder{validator: validator}
}

// Decode parses, validates and unpacks body. Every failure wraps ErrInvalidPayload.
func (d *Decoder) Decode(ctx context.Context, body []byte) (engine.State, engine.Action, error) {
	var p Packet
	if err := json.Unmarshal(body, &p); err != nil {
		return engine.State{}, engine.Action{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	msg, err := d.validator.Validate(ctx, p)
	if err != nil {
		return engine.State{}, engine.Action{}, err
	}

	state, err := DecodeState(msg.State)
	if err != nil {
		return engine.State{}, engine.Action{}, err
	}

	return state, engine.Action{
		FID:         msg.FID,
		ButtonIndex: msg.ButtonIndex,
		InputText:   msg.InputText,
	}, nil
}

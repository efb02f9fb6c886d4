package frame

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Validator turns a packet into a trusted Message.
type Validator interface {
	Validate(ctx context.Context, p Packet) (Message, error)
}

// HubValidator asks a Farcaster hub to verify the signed message bytes.
type HubValidator struct {
	hubURL string
	http   *http.Client
}

// NewHubValidator builds a validator against the hub HTTP API at hubURL.
func NewHubValidator(hubURL string, timeout time.Duration) *HubValidator {
	return &HubValidator{hubURL: strings.TrimRight(hubURL, "/"), http: &http.Client{Timeout: timeout}}
}

type hubValidateResponse struct {
	Valid   bool `json:"valid"`
	Message struct {
		Data struct {
			FID             int64 `json:"fid"`
			FrameActionBody struct {
				ButtonIndex int    `json:"buttonIndex"`
				InputText   string `json:"inputText"`
				State       string `json:"state"`
				CastID      CastID `json:"castId"`
			} `json:"frameActionBody"`
		} `json:"data"`
	} `json:"message"`
}

// Validate posts the message bytes to /v1/validateMessage. Anything short of
// an explicit valid verdict is ErrInvalidPayload.
func (v *HubValidator) Validate(ctx context.Context, p Packet) (Message, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(p.TrustedData.MessageBytes, "0x"))
	if err != nil || len(raw) == 0 {
		return Message{}, fmt.Errorf("%w: trusted message bytes are not hex", ErrInvalidPayload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.hubURL+"/v1/validateMessage", bytes.NewReader(raw))
	if err != nil {
		return Message{}, fmt.Errorf("build hub request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := v.http.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrHubUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Message{}, fmt.Errorf("%w: hub returned status %d", ErrHubUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Message{}, fmt.Errorf("%w: hub returned status %d", ErrInvalidPayload, resp.StatusCode)
	}

	var out hubValidateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return Message{}, fmt.Errorf("%w: decode hub response: %v", ErrInvalidPayload, err)
	}
	if !out.Valid {
		return Message{}, fmt.Errorf("%w: hub rejected message", ErrInvalidPayload)
	}

	body := out.Message.Data.FrameActionBody
	inputText, err := decodeHubBytes(body.InputText)
	if err != nil {
		return Message{}, fmt.Errorf("%w: input text: %v", ErrInvalidPayload, err)
	}
	state, err := decodeHubBytes(body.State)
	if err != nil {
		return Message{}, fmt.Errorf("%w: state: %v", ErrInvalidPayload, err)
	}

	return Message{
		FID:         out.Message.Data.FID,
		ButtonIndex: body.ButtonIndex,
		InputText:   inputText,
		State:       state,
		CastID:      body.CastID,
	}, nil
}

// The hub HTTP API renders protobuf bytes fields as standard base64.
func decodeHubBytes(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnverifiedValidator trusts the packet's untrustedData. Local development only.
type UnverifiedValidator struct{}

// Validate copies the untrusted fields after basic sanity checks.
func (UnverifiedValidator) Validate(_ context.Context, p Packet) (Message, error) {
	u := p.UntrustedData
	if u.FID <= 0 || u.ButtonIndex < 1 || u.ButtonIndex > 4 {
		return Message{}, fmt.Errorf("%w: untrusted data incomplete", ErrInvalidPayload)
	}
	return Message{
		FID:         u.FID,
		ButtonIndex: u.ButtonIndex,
		InputText:   u.InputText,
		State:       u.State,
		CastID:      u.CastID,
	}, nil
}

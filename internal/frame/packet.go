package frame

import "errors"

// ErrInvalidPayload is returned for frame actions that fail signature or
// structural checks. It is never recovered from.
var ErrInvalidPayload = errors.New("invalid frame payload")

// ErrHubUnavailable is returned when the validating hub cannot be reached, so
// the action can be neither trusted nor rejected.
var ErrHubUnavailable = errors.New("frame hub unavailable")

// Packet is the body a Farcaster client POSTs when a frame button is pressed.
type Packet struct {
	UntrustedData UntrustedData `json:"untrustedData"`
	TrustedData   TrustedData   `json:"trustedData"`
}

// UntrustedData mirrors the signed message for convenience; only the debug
// validator reads it.
type UntrustedData struct {
	FID         int64  `json:"fid"`
	URL         string `json:"url"`
	MessageHash string `json:"messageHash"`
	Timestamp   int64  `json:"timestamp"`
	Network     int    `json:"network"`
	ButtonIndex int    `json:"buttonIndex"`
	InputText   string `json:"inputText"`
	State       string `json:"state"`
	CastID      CastID `json:"castId"`
}

// TrustedData carries the hex-encoded signed FrameAction message.
type TrustedData struct {
	MessageBytes string `json:"messageBytes"`
}

// CastID identifies the cast that embedded the frame.
type CastID struct {
	FID  int64  `json:"fid"`
	Hash string `json:"hash"`
}

// Message is a frame action whose origin has been checked.
type Message struct {
	FID         int64
	ButtonIndex int
	InputText   string
	State       string
	CastID      CastID
}

package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a fid has no usable profile: the directory
// answered non-2xx, returned nothing, or the profile lacks an image or name.
var ErrNotFound = errors.New("profile not found")

// SentinelImageURL is shown when no candidate could be found.
const SentinelImageURL = "https://picsum.photos/id/237/200/400.jpg"

// Profile is a Farcaster user as shown on a swipe card.
type Profile struct {
	FID         int64  `json:"fid"`
	ImageURL    string `json:"image_url"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Valid reports whether the profile can be rendered as a candidate.
func (p Profile) Valid() bool {
	return p.ImageURL != "" && p.DisplayName != ""
}

// IsSentinel reports whether p is the placeholder returned after a failed search.
func (p Profile) IsSentinel() bool {
	return p.FID == 0
}

// Sentinel returns the placeholder profile used when candidate search gives up.
func Sentinel() Profile {
	return Profile{
		FID:         0,
		ImageURL:    SentinelImageURL,
		Username:    "invalid",
		DisplayName: "invalid",
	}
}

// Source looks up profiles by fid.
type Source interface {
	Lookup(ctx context.Context, fid int64) (Profile, error)
}

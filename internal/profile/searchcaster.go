package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxResponseBytes = 1 << 20

// SearchcasterClient resolves profiles against the searchcaster profile API
// (GET <base>?fid=N).
type SearchcasterClient struct {
	baseURL string
	http    *http.Client
}

// NewSearchcasterClient builds a client for baseURL with a per-request timeout.
func NewSearchcasterClient(baseURL string, timeout time.Duration) *SearchcasterClient {
	return &SearchcasterClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchcasterProfile struct {
	Body struct {
		ID          int64  `json:"id"`
		AvatarURL   string `json:"avatarUrl"`
		Username    string `json:"username"`
		DisplayName string `json:"displayName"`
	} `json:"body"`
}

// Lookup fetches the profile for fid. Transport failures are returned as
// errors; every kind of unusable answer is ErrNotFound.
func (c *SearchcasterClient) Lookup(ctx context.Context, fid int64) (Profile, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Profile{}, fmt.Errorf("parse profile api url: %w", err)
	}
	q := u.Query()
	q.Set("fid", strconv.FormatInt(fid, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("profile lookup fid=%d: %w", fid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Profile{}, ErrNotFound
	}

	var results []searchcasterProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&results); err != nil {
		return Profile{}, ErrNotFound
	}
	if len(results) == 0 {
		return Profile{}, ErrNotFound
	}

	body := results[0].Body
	p := Profile{
		FID:         body.ID,
		ImageURL:    body.AvatarURL,
		Username:    body.Username,
		DisplayName: body.DisplayName,
	}
	if p.FID == 0 {
		p.FID = fid
	}
	if !p.Valid() {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

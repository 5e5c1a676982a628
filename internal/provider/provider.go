// Package provider contains the conferencing provider clients. Each client
// exposes a single capability: given a meeting draft, mint a join link.
package provider

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/timelyapp/timely/internal/model"
)

// LinkRequest carries the fields every provider needs to create a meeting.
type LinkRequest struct {
	Title           string
	StartTime       time.Time
	DurationMinutes int
	Participants    []string
	Timezone        string
}

// Client creates a meeting on one conferencing platform.
type Client interface {
	CreateMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error)
}

// TokenSource yields a bearer token for provider calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource wraps a pre-obtained OAuth access token.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", model.ErrAuthenticationRequired
	}
	return string(s), nil
}

func validateLinkRequest(req LinkRequest) error {
	if req.Title == "" {
		return errors.New("title required")
	}
	if req.DurationMinutes <= 0 {
		return errors.New("duration must be > 0")
	}
	if req.StartTime.IsZero() {
		return errors.New("start time required")
	}
	return nil
}

// doWithRetry runs op with a single bounded retry on transient failures.
// 4xx provider responses (other than 408/429) fail immediately.
func doWithRetry(ctx context.Context, op func() error) error {
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 1)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if transient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}

func transient(err error) bool {
	var pe *model.ProviderAPIError
	if errors.As(err, &pe) {
		return pe.StatusCode >= 500 || pe.StatusCode == 429 || pe.StatusCode == 408
	}
	var ne *model.NetworkError
	return errors.As(err, &ne)
}

func truncateBody(s string) string {
	const max = 512
	if len(s) > max {
		return s[:max]
	}
	return s
}

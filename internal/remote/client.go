package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

// Gateway binds an HTTP client and base URL over the stateless mapping
// functions so callers inject one dependency.
type Gateway struct {
	hc        *http.Client
	baseURL   string
	defaultTZ string
	log       zerolog.Logger
}

// NewGateway constructs a Gateway. defaultTimezone seeds the availability
// default when the remote document has none.
func NewGateway(baseURL string, timeout time.Duration, defaultTimezone string, log zerolog.Logger) *Gateway {
	return &Gateway{
		hc:        &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		defaultTZ: defaultTimezone,
		log:       log.With().Str("component", "remote").Logger(),
	}
}

func (g *Gateway) SaveMeeting(ctx context.Context, userID string, m model.Meeting) error {
	return SaveMeeting(ctx, g.hc, g.baseURL, userID, m)
}

func (g *Gateway) LoadMeetings(ctx context.Context, userID string) ([]model.Meeting, error) {
	return LoadMeetings(ctx, g.hc, g.baseURL, userID, g.log)
}

func (g *Gateway) SaveMeetingType(ctx context.Context, userID string, t model.MeetingType) error {
	return SaveMeetingType(ctx, g.hc, g.baseURL, userID, t)
}

func (g *Gateway) LoadMeetingTypes(ctx context.Context, userID string) ([]model.MeetingType, error) {
	return LoadMeetingTypes(ctx, g.hc, g.baseURL, userID, g.log)
}

func (g *Gateway) SaveAvailability(ctx context.Context, userID string, a model.Availability) error {
	return SaveAvailability(ctx, g.hc, g.baseURL, userID, a)
}

func (g *Gateway) LoadAvailability(ctx context.Context, userID string) (model.Availability, error) {
	return LoadAvailability(ctx, g.hc, g.baseURL, userID, g.defaultTZ, g.log)
}

func (g *Gateway) SaveProfile(ctx context.Context, userID string, p model.UserProfile) error {
	return SaveProfile(ctx, g.hc, g.baseURL, userID, p)
}

func (g *Gateway) LoadProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	return LoadProfile(ctx, g.hc, g.baseURL, userID)
}

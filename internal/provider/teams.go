package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

const teamsProviderName = "teams"

// ErrSandboxOnly is returned when the Teams client is used outside sandbox
// mode. The Graph integration is request-shape only; a real call has never
// been implemented, and fabricating a link on a genuine path is forbidden.
var ErrSandboxOnly = errors.New("teams client supports sandbox mode only")

// TeamsClient shapes Microsoft Graph online-meeting requests. In sandbox
// mode it returns a clearly marked placeholder link; outside sandbox mode
// every call fails with ErrSandboxOnly.
type TeamsClient struct {
	sandbox bool
	log     zerolog.Logger
}

// NewTeamsClient constructs the client. Pass sandbox=true for demo and test
// environments only.
func NewTeamsClient(sandbox bool, log zerolog.Logger) *TeamsClient {
	return &TeamsClient{sandbox: sandbox, log: log.With().Str("provider", teamsProviderName).Logger()}
}

type teamsAttendee struct {
	UPN string `json:"upn"`
}

type teamsMeetingRequest struct {
	Subject       string `json:"subject"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Participants  struct {
		Attendees []teamsAttendee `json:"attendees"`
	} `json:"participants"`
}

// CreateMeeting builds the Graph request shape and, in sandbox mode,
// answers with a placeholder marked Sandbox.
func (c *TeamsClient) CreateMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error) {
	linkRequestsTotal.WithLabelValues(teamsProviderName).Inc()
	link, err := c.createMeeting(ctx, req)
	if err != nil {
		linkFailuresTotal.WithLabelValues(teamsProviderName).Inc()
	}
	return link, err
}

func (c *TeamsClient) createMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateLinkRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}

	body := teamsMeetingRequest{
		Subject:       req.Title,
		StartDateTime: req.StartTime.Format(time.RFC3339),
		EndDateTime:   req.StartTime.Add(time.Duration(req.DurationMinutes) * time.Minute).Format(time.RFC3339),
	}
	for _, p := range req.Participants {
		body.Participants.Attendees = append(body.Participants.Attendees, teamsAttendee{UPN: p})
	}
	if _, err := json.Marshal(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}

	if !c.sandbox {
		return nil, ErrSandboxOnly
	}

	id := uuid.NewString()
	c.log.Warn().Str("meeting_id", id).Msg("sandbox teams link fabricated; it will not resolve")
	return &model.MeetingLink{
		JoinURL:    "https://teams.microsoft.com/l/meetup-join/" + id,
		ProviderID: id,
		Sandbox:    true,
	}, nil
}

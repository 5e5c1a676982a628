package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

const meetProviderName = "google_meet"

// MeetClient creates Google Meet links by inserting a calendar event with a
// conference-data create request.
type MeetClient struct {
	rc     *resty.Client
	tokens TokenSource
	log    zerolog.Logger
}

// NewMeetClient constructs a client against the Google Calendar API base URL.
func NewMeetClient(baseURL string, tokens TokenSource, timeout time.Duration, log zerolog.Logger) *MeetClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &MeetClient{rc: rc, tokens: tokens, log: log.With().Str("provider", meetProviderName).Logger()}
}

type meetEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type meetAttendee struct {
	Email string `json:"email"`
}

type meetEventRequest struct {
	Summary        string         `json:"summary"`
	Start          meetEventTime  `json:"start"`
	End            meetEventTime  `json:"end"`
	Attendees      []meetAttendee `json:"attendees"`
	ConferenceData struct {
		CreateRequest struct {
			RequestID             string `json:"requestId"`
			ConferenceSolutionKey struct {
				Type string `json:"type"`
			} `json:"conferenceSolutionKey"`
		} `json:"createRequest"`
	} `json:"conferenceData"`
}

type meetEventResponse struct {
	ID          string `json:"id"`
	HangoutLink string `json:"hangoutLink"`
}

// CreateMeeting inserts a calendar event on the primary calendar and returns
// the generated Meet link. Success is HTTP 200 with hangoutLink and id set.
func (c *MeetClient) CreateMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error) {
	linkRequestsTotal.WithLabelValues(meetProviderName).Inc()
	link, err := c.createMeeting(ctx, req)
	if err != nil {
		linkFailuresTotal.WithLabelValues(meetProviderName).Inc()
	}
	return link, err
}

func (c *MeetClient) createMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error) {
	if err := validateLinkRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body := meetEventRequest{
		Summary: req.Title,
		Start:   meetEventTime{DateTime: req.StartTime.Format(time.RFC3339), TimeZone: req.Timezone},
		End: meetEventTime{
			DateTime: req.StartTime.Add(time.Duration(req.DurationMinutes) * time.Minute).Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
	}
	for _, p := range req.Participants {
		body.Attendees = append(body.Attendees, meetAttendee{Email: p})
	}
	body.ConferenceData.CreateRequest.RequestID = uuid.NewString()
	body.ConferenceData.CreateRequest.ConferenceSolutionKey.Type = "hangoutsMeet"

	var out meetEventResponse
	err = doWithRetry(ctx, func() error {
		resp, err := c.rc.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParam("conferenceDataVersion", "1").
			SetBody(&body).
			SetResult(&out).
			Post("/calendars/primary/events")
		if err != nil {
			return &model.NetworkError{Op: "create meet event", Err: err}
		}
		if resp.StatusCode() != http.StatusOK {
			return &model.ProviderAPIError{
				Provider:   meetProviderName,
				StatusCode: resp.StatusCode(),
				Message:    truncateBody(resp.String()),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.HangoutLink == "" || out.ID == "" {
		return nil, fmt.Errorf("%w: event response missing hangoutLink or id", model.ErrValidation)
	}

	c.log.Debug().Str("event_id", out.ID).Msg("meet link created")
	return &model.MeetingLink{JoinURL: out.HangoutLink, ProviderID: out.ID}, nil
}

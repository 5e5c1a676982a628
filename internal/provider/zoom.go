package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

const zoomProviderName = "zoom"

// zoomScheduledMeeting is the Zoom API meeting type for a one-off
// scheduled meeting (as opposed to instant or recurring).
const zoomScheduledMeeting = 2

// ZoomClient creates scheduled Zoom meetings for the authenticated account.
type ZoomClient struct {
	rc     *resty.Client
	tokens TokenSource
	log    zerolog.Logger
}

// NewZoomClient constructs a client against the Zoom REST API base URL.
// Token acquisition always completes before the meeting call is issued.
func NewZoomClient(baseURL string, tokens TokenSource, timeout time.Duration, log zerolog.Logger) *ZoomClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &ZoomClient{rc: rc, tokens: tokens, log: log.With().Str("provider", zoomProviderName).Logger()}
}

type zoomMeetingSettings struct {
	HostVideo      bool   `json:"host_video"`
	ParticipantVid bool   `json:"participant_video"`
	JoinBeforeHost bool   `json:"join_before_host"`
	MuteUponEntry  bool   `json:"mute_upon_entry"`
	WaitingRoom    bool   `json:"waiting_room"`
	UsePMI         bool   `json:"use_pmi"`
	ApprovalType   int    `json:"approval_type"`
	Audio          string `json:"audio"`
	AutoRecording  string `json:"auto_recording"`
}

type zoomMeetingRequest struct {
	Topic     string              `json:"topic"`
	Type      int                 `json:"type"`
	StartTime string              `json:"start_time"`
	Duration  int                 `json:"duration"`
	Timezone  string              `json:"timezone"`
	Settings  zoomMeetingSettings `json:"settings"`
}

type zoomMeetingResponse struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	Password string `json:"password"`
}

// CreateMeeting schedules a meeting under the token's account. Success is
// HTTP 201 with id and join_url set.
func (c *ZoomClient) CreateMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error) {
	linkRequestsTotal.WithLabelValues(zoomProviderName).Inc()
	link, err := c.createMeeting(ctx, req)
	if err != nil {
		linkFailuresTotal.WithLabelValues(zoomProviderName).Inc()
	}
	return link, err
}

func (c *ZoomClient) createMeeting(ctx context.Context, req LinkRequest) (*model.MeetingLink, error) {
	if err := validateLinkRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body := zoomMeetingRequest{
		Topic:     req.Title,
		Type:      zoomScheduledMeeting,
		StartTime: req.StartTime.Format(time.RFC3339),
		Duration:  req.DurationMinutes,
		Timezone:  req.Timezone,
		Settings: zoomMeetingSettings{
			HostVideo:      true,
			ParticipantVid: true,
			JoinBeforeHost: false,
			MuteUponEntry:  true,
			WaitingRoom:    true,
			UsePMI:         false,
			ApprovalType:   0,
			Audio:          "both",
			AutoRecording:  "none",
		},
	}

	var out zoomMeetingResponse
	err = doWithRetry(ctx, func() error {
		resp, err := c.rc.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(&body).
			SetResult(&out).
			Post("/users/me/meetings")
		if err != nil {
			return &model.NetworkError{Op: "create zoom meeting", Err: err}
		}
		if resp.StatusCode() != http.StatusCreated {
			return &model.ProviderAPIError{
				Provider:   zoomProviderName,
				StatusCode: resp.StatusCode(),
				Message:    truncateBody(resp.String()),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.ID == 0 || out.JoinURL == "" {
		return nil, fmt.Errorf("%w: meeting response missing id or join_url", model.ErrValidation)
	}

	c.log.Debug().Int64("meeting_id", out.ID).Msg("zoom meeting created")
	return &model.MeetingLink{
		JoinURL:    out.JoinURL,
		ProviderID: strconv.FormatInt(out.ID, 10),
		Password:   out.Password,
	}, nil
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

func TestZoomClient_CreateMeeting_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/meetings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer ztok" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var body zoomMeetingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Type != zoomScheduledMeeting {
			t.Errorf("expected scheduled meeting type, got %d", body.Type)
		}
		if body.Topic != "Design review" || body.Duration != 45 {
			t.Errorf("unexpected payload: %+v", body)
		}
		if !body.Settings.WaitingRoom || body.Settings.JoinBeforeHost {
			t.Errorf("unexpected settings: %+v", body.Settings)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":987654321,"join_url":"https://zoom.us/j/987654321","password":"pw12"}`))
	}))
	defer srv.Close()

	c := NewZoomClient(srv.URL, StaticTokenSource("ztok"), 5*time.Second, zerolog.Nop())
	link, err := c.CreateMeeting(context.Background(), testLinkRequest())
	if err != nil {
		t.Fatalf("CreateMeeting error: %v", err)
	}
	if link.JoinURL != "https://zoom.us/j/987654321" || link.ProviderID != "987654321" || link.Password != "pw12" {
		t.Fatalf("unexpected link: %+v", link)
	}
}

func TestZoomClient_CreateMeeting_TwoCallsTwoMeetings(t *testing.T) {
	t.Parallel()
	var id int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":` + strconv.FormatInt(id, 10) + `,"join_url":"https://zoom.us/j/` + strconv.FormatInt(id, 10) + `"}`))
	}))
	defer srv.Close()

	c := NewZoomClient(srv.URL, StaticTokenSource("ztok"), 5*time.Second, zerolog.Nop())
	first, err := c.CreateMeeting(context.Background(), testLinkRequest())
	if err != nil {
		t.Fatalf("first CreateMeeting error: %v", err)
	}
	second, err := c.CreateMeeting(context.Background(), testLinkRequest())
	if err != nil {
		t.Fatalf("second CreateMeeting error: %v", err)
	}
	if first.ProviderID == second.ProviderID {
		t.Fatalf("identical drafts must still create distinct meetings, both got %s", first.ProviderID)
	}
}

func TestZoomClient_CreateMeeting_TokenFailureSkipsCall(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no meeting call expected when the token exchange fails")
	}))
	defer srv.Close()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer tokenSrv.Close()

	tokens := NewZoomTokenSource(tokenSrv.URL, "acct_1", "cid", "bad", 5*time.Second, zerolog.Nop())
	c := NewZoomClient(srv.URL, tokens, 5*time.Second, zerolog.Nop())
	if _, err := c.CreateMeeting(context.Background(), testLinkRequest()); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestZoomClient_CreateMeeting_NonCreatedStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewZoomClient(srv.URL, StaticTokenSource("ztok"), 5*time.Second, zerolog.Nop())
	_, err := c.CreateMeeting(context.Background(), testLinkRequest())
	var apiErr *model.ProviderAPIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 provider error, got %v", err)
	}
}

func TestZoomClient_CreateMeeting_MissingJoinURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":123}`))
	}))
	defer srv.Close()

	c := NewZoomClient(srv.URL, StaticTokenSource("ztok"), 5*time.Second, zerolog.Nop())
	if _, err := c.CreateMeeting(context.Background(), testLinkRequest()); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

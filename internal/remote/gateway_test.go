package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

func testMeeting() model.Meeting {
	return model.Meeting{
		ID:              "m1",
		Title:           "Standup",
		StartTime:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 15,
		Platform:        model.PlatformGoogleMeet,
		Participants:    []string{"a@example.com", "b@example.com"},
		MeetingType:     "Daily",
	}
}

func TestSaveMeeting_WritesDocument(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/api/users/user_1/meetings/m1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var doc meetingDoc
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if doc.ParticipantEmail != "a@example.com,b@example.com" {
			t.Errorf("unexpected participantEmail %q", doc.ParticipantEmail)
		}
		if doc.Platform != "Google Meet" || doc.UserID != "user_1" {
			t.Errorf("unexpected doc: %+v", doc)
		}
		if doc.UpdatedAt.IsZero() {
			t.Error("updatedAt must be stamped on every write")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := SaveMeeting(context.Background(), srv.Client(), srv.URL, "user_1", testMeeting()); err != nil {
		t.Fatalf("SaveMeeting error: %v", err)
	}
}

func TestSaveMeeting_EmptyUserID(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty user id")
	}))
	defer srv.Close()

	err := SaveMeeting(context.Background(), srv.Client(), srv.URL, "", testMeeting())
	if !errors.Is(err, model.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestLoadMeetings_SkipsInvalidDocuments(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/user_1/meetings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"meetings": [
				{"id":"m1","title":"Standup","date":"2026-03-02T09:00:00Z","duration":15,"platform":"Google Meet","participantEmail":"a@example.com"},
				{"id":"m2","title":"","date":"2026-03-02T10:00:00Z","duration":30,"platform":"Zoom"},
				{"id":"m3","title":"1:1","date":"2026-03-02T11:00:00Z","duration":30,"platform":"Teams Unknown"},
				{"id":"m4","title":"Sync","date":"2026-03-03T09:00:00Z","duration":25,"platform":"In Person","participantEmail":" c@example.com , "}
			],
			"count": 4
		}`))
	}))
	defer srv.Close()

	meetings, err := LoadMeetings(context.Background(), srv.Client(), srv.URL, "user_1", zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadMeetings error: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("expected 2 valid meetings, got %d: %+v", len(meetings), meetings)
	}
	if meetings[0].ID != "m1" || meetings[1].ID != "m4" {
		t.Fatalf("unexpected ids: %s, %s", meetings[0].ID, meetings[1].ID)
	}
	if len(meetings[1].Participants) != 1 || meetings[1].Participants[0] != "c@example.com" {
		t.Fatalf("participantEmail not split and trimmed: %+v", meetings[1].Participants)
	}
}

func TestLoadMeetings_RequestFailureSurfaces(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := LoadMeetings(context.Background(), srv.Client(), srv.URL, "user_1", zerolog.Nop())
	if !errors.Is(err, model.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	var pe *model.PersistenceError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 persistence error, got %v", err)
	}
}

func TestSaveAvailability_MergesUserDocument(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/api/users/user_1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]availabilityDoc
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		doc, ok := payload["availability"]
		if !ok {
			t.Fatal("payload missing availability map")
		}
		if len(doc.WorkDays) != 2 || doc.WorkDays[0] != "Monday" {
			t.Errorf("unexpected workDays: %+v", doc.WorkDays)
		}
		if got := doc.StartTime.UTC().Format("15:04"); got != "08:30" {
			t.Errorf("unexpected startTime wall clock %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := model.Availability{
		WorkDays: []time.Weekday{time.Monday, time.Wednesday},
		DayStart: 8*60 + 30,
		DayEnd:   16 * 60,
		Timezone: "Europe/Istanbul",
	}
	if err := SaveAvailability(context.Background(), srv.Client(), srv.URL, "user_1", a); err != nil {
		t.Fatalf("SaveAvailability error: %v", err)
	}
}

func TestLoadAvailability_RoundTrip(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id":"user_1","email":"u@example.com",
			"availability":{
				"workDays":["Tuesday","Thursday"],
				"startTime":"1970-01-01T10:15:00Z",
				"endTime":"1970-01-01T18:45:00Z",
				"timezone":"UTC"
			}
		}`))
	}))
	defer srv.Close()

	a, err := LoadAvailability(context.Background(), srv.Client(), srv.URL, "user_1", "UTC", zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadAvailability error: %v", err)
	}
	if a.DayStart.String() != "10:15" || a.DayEnd.String() != "18:45" {
		t.Fatalf("unexpected window %s-%s", a.DayStart, a.DayEnd)
	}
	if len(a.WorkDays) != 2 || a.WorkDays[0] != time.Tuesday {
		t.Fatalf("unexpected work days: %+v", a.WorkDays)
	}
}

func TestLoadAvailability_DefaultOnMissing(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a, err := LoadAvailability(context.Background(), srv.Client(), srv.URL, "user_1", "Europe/Istanbul", zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadAvailability error: %v", err)
	}
	want := model.DefaultAvailability("Europe/Istanbul")
	if a.DayStart != want.DayStart || a.DayEnd != want.DayEnd || a.Timezone != want.Timezone {
		t.Fatalf("expected default availability, got %+v", a)
	}
}

func TestLoadAvailability_DefaultOnInvalidStored(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id":"user_1","email":"u@example.com",
			"availability":{"workDays":["Noday"],"startTime":"1970-01-01T09:00:00Z","endTime":"1970-01-01T17:00:00Z","timezone":"UTC"}
		}`))
	}))
	defer srv.Close()

	a, err := LoadAvailability(context.Background(), srv.Client(), srv.URL, "user_1", "UTC", zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadAvailability error: %v", err)
	}
	want := model.DefaultAvailability("UTC")
	if a.DayStart != want.DayStart || len(a.WorkDays) != len(want.WorkDays) {
		t.Fatalf("expected default availability, got %+v", a)
	}
}

func TestSaveAndLoadProfile(t *testing.T) {
	t.Parallel()
	var stored userDoc
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
				t.Errorf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(stored)
		}
	}))
	defer srv.Close()

	p := model.UserProfile{
		ID:                  "user_1",
		FirstName:           "Ada",
		LastName:            "Lovelace",
		Email:               "ada@example.com",
		Purpose:             "Sales",
		OnboardingCompleted: true,
	}
	if err := SaveProfile(context.Background(), srv.Client(), srv.URL, "user_1", p); err != nil {
		t.Fatalf("SaveProfile error: %v", err)
	}
	if !stored.IsOnboardingComplete {
		t.Fatal("isOnboardingCompleted not serialized")
	}

	got, err := LoadProfile(context.Background(), srv.Client(), srv.URL, "user_1")
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}
	if got.DisplayName() != "Ada Lovelace" || !got.OnboardingCompleted {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

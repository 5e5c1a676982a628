package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies where a meeting takes place.
type Platform string

const (
	PlatformGoogleMeet Platform = "Google Meet"
	PlatformZoom       Platform = "Zoom"
	PlatformTeams      Platform = "Microsoft Teams"
	PlatformInPerson   Platform = "In Person"
)

// ParsePlatform maps a stored display label back to a Platform.
func ParsePlatform(label string) (Platform, error) {
	switch Platform(label) {
	case PlatformGoogleMeet, PlatformZoom, PlatformTeams, PlatformInPerson:
		return Platform(label), nil
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrValidation, label)
}

// Remote reports whether the platform requires a conferencing link.
func (p Platform) Remote() bool { return p != PlatformInPerson }

// Meeting is a scheduled meeting. Instances are immutable once created;
// the id is generated client-side before the first remote write.
type Meeting struct {
	ID              string
	Title           string
	StartTime       time.Time
	DurationMinutes int
	Platform        Platform
	Participants    []string
	MeetingType     string
	CreatedAt       time.Time
}

// EndTime returns the scheduled end instant.
func (m Meeting) EndTime() time.Time {
	return m.StartTime.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

// MeetingType is a reusable meeting template.
type MeetingType struct {
	ID              string
	Name            string
	DurationMinutes int
	Platform        Platform
	Description     string
	CreatedAt       time.Time
}

// MinuteOfDay is a wall-clock time expressed as minutes from midnight.
type MinuteOfDay int

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ParseMinuteOfDay parses an HH:MM wall-clock string.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid wall-clock time %q", ErrValidation, s)
	}
	return MinuteOfDay(t.Hour()*60 + t.Minute()), nil
}

// ParseWeekday maps an English day name to its time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrValidation, name)
}

// Availability is the per-user weekly working window. It is a singleton
// value object replaced wholesale on every save.
type Availability struct {
	WorkDays []time.Weekday
	DayStart MinuteOfDay
	DayEnd   MinuteOfDay
	Timezone string
}

// DefaultAvailability mirrors the onboarding default: Mon-Fri, 09:00-17:00.
func DefaultAvailability(timezone string) Availability {
	return Availability{
		WorkDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		DayStart: 9 * 60,
		DayEnd:   17 * 60,
		Timezone: timezone,
	}
}

// Covers reports whether t falls inside the working window, evaluated in
// the availability's own timezone.
func (a Availability) Covers(t time.Time) bool {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return false
	}
	local := t.In(loc)
	day := local.Weekday()
	found := false
	for _, d := range a.WorkDays {
		if d == day {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	minute := MinuteOfDay(local.Hour()*60 + local.Minute())
	return minute >= a.DayStart && minute <= a.DayEnd
}

// Contact is derived from meeting participants; MeetingCount tracks how
// many meetings reference the email.
type Contact struct {
	ID           string
	DisplayName  string
	Email        string
	MeetingCount int
}

// MeetingLink is the normalized provider response attached to an
// in-progress meeting draft. It is never persisted.
type MeetingLink struct {
	JoinURL    string
	ProviderID string
	Password   string
	DialIn     string

	// Sandbox marks a link fabricated by a stub client. Sandbox links are
	// structurally valid but do not resolve to a real meeting.
	Sandbox bool
}

// UserProfile is the remote profile document stored at users/{userId}.
type UserProfile struct {
	ID                   string
	FirstName            string
	LastName             string
	Email                string
	Purpose              string
	SchedulingPreference string
	CalendarProvider     string
	OnboardingCompleted  bool
	PhoneNumber          string
	AvatarURL            string
	CreatedAt            time.Time
}

// DisplayName joins first and last name, tolerating a missing last name.
func (p UserProfile) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

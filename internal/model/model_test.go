package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for _, label := range []string{"Google Meet", "Zoom", "Microsoft Teams", "In Person"} {
		p, err := ParsePlatform(label)
		require.NoError(t, err, label)
		assert.Equal(t, label, string(p))
	}
	_, err := ParsePlatform("Skype")
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlatformRemote(t *testing.T) {
	assert.True(t, PlatformGoogleMeet.Remote())
	assert.True(t, PlatformZoom.Remote())
	assert.True(t, PlatformTeams.Remote())
	assert.False(t, PlatformInPerson.Remote())
}

func TestMinuteOfDay_RoundTrip(t *testing.T) {
	m, err := ParseMinuteOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, MinuteOfDay(9*60+30), m)
	assert.Equal(t, "09:30", m.String())

	_, err = ParseMinuteOfDay("25:00")
	require.ErrorIs(t, err, ErrValidation)
	_, err = ParseMinuteOfDay("0930")
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)
	_, err = ParseWeekday("Funday")
	require.ErrorIs(t, err, ErrValidation)
}

func TestMeetingEndTime(t *testing.T) {
	m := Meeting{
		StartTime:       time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
	}
	assert.Equal(t, time.Date(2026, 3, 2, 10, 45, 0, 0, time.UTC), m.EndTime())
}

func TestValidateMeeting(t *testing.T) {
	valid := Meeting{
		ID:              "m1",
		Title:           "Standup",
		StartTime:       time.Now(),
		DurationMinutes: 15,
		Platform:        PlatformZoom,
		Participants:    []string{"a@example.com"},
	}
	require.NoError(t, ValidateMeeting(valid))

	cases := map[string]func(*Meeting){
		"empty id":        func(m *Meeting) { m.ID = "" },
		"blank title":     func(m *Meeting) { m.Title = "  " },
		"zero duration":   func(m *Meeting) { m.DurationMinutes = 0 },
		"bad platform":    func(m *Meeting) { m.Platform = "Skype" },
		"malformed email": func(m *Meeting) { m.Participants = []string{"nope"} },
	}
	for name, mutate := range cases {
		m := valid
		m.Participants = append([]string(nil), valid.Participants...)
		mutate(&m)
		assert.ErrorIs(t, ValidateMeeting(m), ErrValidation, name)
	}
}

func TestValidateUserID(t *testing.T) {
	require.NoError(t, ValidateUserID("user_1"))
	assert.ErrorIs(t, ValidateUserID(""), ErrAuthenticationRequired)
	assert.ErrorIs(t, ValidateUserID("   "), ErrAuthenticationRequired)
}

func TestValidateAvailability(t *testing.T) {
	valid := Availability{
		WorkDays: []time.Weekday{time.Monday},
		DayStart: 9 * 60,
		DayEnd:   17 * 60,
		Timezone: "Europe/Istanbul",
	}
	require.NoError(t, ValidateAvailability(valid))

	noDays := valid
	noDays.WorkDays = nil
	assert.ErrorIs(t, ValidateAvailability(noDays), ErrValidation)

	inverted := valid
	inverted.DayStart, inverted.DayEnd = inverted.DayEnd, inverted.DayStart
	assert.ErrorIs(t, ValidateAvailability(inverted), ErrValidation)

	badTZ := valid
	badTZ.Timezone = "Mars/Olympus"
	assert.ErrorIs(t, ValidateAvailability(badTZ), ErrValidation)
}

func TestDefaultAvailability(t *testing.T) {
	a := DefaultAvailability("UTC")
	assert.Len(t, a.WorkDays, 5)
	assert.Equal(t, "09:00", a.DayStart.String())
	assert.Equal(t, "17:00", a.DayEnd.String())
	require.NoError(t, ValidateAvailability(a))
}

func TestAvailabilityCovers(t *testing.T) {
	a := DefaultAvailability("UTC")

	// Monday 2026-03-02, 10:00 UTC.
	assert.True(t, a.Covers(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)))
	// Monday before the window opens.
	assert.False(t, a.Covers(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)))
	// Saturday is not a working day.
	assert.False(t, a.Covers(time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)))

	// The same instant can fall outside the window in another timezone.
	ist := a
	ist.Timezone = "Europe/Istanbul"
	assert.False(t, ist.Covers(time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC)))
}

func TestUserProfileDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", UserProfile{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Ada", UserProfile{FirstName: "Ada"}.DisplayName())
}

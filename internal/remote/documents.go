// Package remote maps the local domain model onto the hosted document
// store. It holds no state between calls; every operation is keyed by the
// authenticated user id.
package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/timelyapp/timely/internal/model"
)

// participantSeparator flattens the participant list into the legacy
// participantEmail field. The list form is authoritative; the joined string
// is a wire concern only.
const participantSeparator = ","

type meetingDoc struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             time.Time `json:"date"`
	Duration         int       `json:"duration"`
	Platform         string    `json:"platform"`
	ParticipantEmail string    `json:"participantEmail"`
	MeetingType      string    `json:"meetingType"`
	UserID           string    `json:"userId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type listMeetingsResponse struct {
	Meetings []meetingDoc `json:"meetings"`
	Count    int          `json:"count"`
}

func meetingToDoc(userID string, m model.Meeting, now time.Time) meetingDoc {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return meetingDoc{
		ID:               m.ID,
		Title:            m.Title,
		Date:             m.StartTime.UTC(),
		Duration:         m.DurationMinutes,
		Platform:         string(m.Platform),
		ParticipantEmail: strings.Join(m.Participants, participantSeparator),
		MeetingType:      m.MeetingType,
		UserID:           userID,
		CreatedAt:        createdAt.UTC(),
		UpdatedAt:        now.UTC(),
	}
}

// meetingFromDoc validates required fields; a failure means the document is
// skipped during a batch read, never that the batch fails.
func meetingFromDoc(d meetingDoc) (model.Meeting, error) {
	if d.ID == "" || d.Title == "" {
		return model.Meeting{}, fmt.Errorf("%w: meeting document missing id or title", model.ErrValidation)
	}
	if d.Duration <= 0 {
		return model.Meeting{}, fmt.Errorf("%w: meeting %s has non-positive duration", model.ErrValidation, d.ID)
	}
	if d.Date.IsZero() {
		return model.Meeting{}, fmt.Errorf("%w: meeting %s missing date", model.ErrValidation, d.ID)
	}
	platform, err := model.ParsePlatform(d.Platform)
	if err != nil {
		return model.Meeting{}, err
	}
	var participants []string
	for _, p := range strings.Split(d.ParticipantEmail, participantSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			participants = append(participants, p)
		}
	}
	return model.Meeting{
		ID:              d.ID,
		Title:           d.Title,
		StartTime:       d.Date,
		DurationMinutes: d.Duration,
		Platform:        platform,
		Participants:    participants,
		MeetingType:     d.MeetingType,
		CreatedAt:       d.CreatedAt,
	}, nil
}

type meetingTypeDoc struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Duration    int       `json:"duration"`
	Platform    string    `json:"platform"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type listMeetingTypesResponse struct {
	MeetingTypes []meetingTypeDoc `json:"meetingTypes"`
	Count        int              `json:"count"`
}

func meetingTypeToDoc(userID string, t model.MeetingType, now time.Time) meetingTypeDoc {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return meetingTypeDoc{
		ID:          t.ID,
		Name:        t.Name,
		Duration:    t.DurationMinutes,
		Platform:    string(t.Platform),
		Description: t.Description,
		UserID:      userID,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   now.UTC(),
	}
}

func meetingTypeFromDoc(d meetingTypeDoc) (model.MeetingType, error) {
	if d.ID == "" || d.Name == "" {
		return model.MeetingType{}, fmt.Errorf("%w: meeting type document missing id or name", model.ErrValidation)
	}
	if d.Duration <= 0 {
		return model.MeetingType{}, fmt.Errorf("%w: meeting type %s has non-positive duration", model.ErrValidation, d.ID)
	}
	platform, err := model.ParsePlatform(d.Platform)
	if err != nil {
		return model.MeetingType{}, err
	}
	return model.MeetingType{
		ID:              d.ID,
		Name:            d.Name,
		DurationMinutes: d.Duration,
		Platform:        platform,
		Description:     d.Description,
		CreatedAt:       d.CreatedAt,
	}, nil
}

// availabilityDoc stores the working window as timestamps per the legacy
// schema. Only the wall-clock component is meaningful; timestamps are
// anchored to the epoch day in UTC so round-trips are loss-free.
type availabilityDoc struct {
	WorkDays  []string  `json:"workDays"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Timezone  string    `json:"timezone"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func minuteToTimestamp(m model.MinuteOfDay) time.Time {
	return time.Date(1970, time.January, 1, int(m)/60, int(m)%60, 0, 0, time.UTC)
}

func timestampToMinute(t time.Time) model.MinuteOfDay {
	u := t.UTC()
	return model.MinuteOfDay(u.Hour()*60 + u.Minute())
}

func availabilityToDoc(a model.Availability, now time.Time) availabilityDoc {
	days := make([]string, 0, len(a.WorkDays))
	for _, d := range a.WorkDays {
		days = append(days, d.String())
	}
	return availabilityDoc{
		WorkDays:  days,
		StartTime: minuteToTimestamp(a.DayStart),
		EndTime:   minuteToTimestamp(a.DayEnd),
		Timezone:  a.Timezone,
		UpdatedAt: now.UTC(),
	}
}

func availabilityFromDoc(d availabilityDoc) (model.Availability, error) {
	if len(d.WorkDays) == 0 {
		return model.Availability{}, fmt.Errorf("%w: availability missing work days", model.ErrValidation)
	}
	if d.Timezone == "" {
		return model.Availability{}, fmt.Errorf("%w: availability missing timezone", model.ErrValidation)
	}
	days := make([]time.Weekday, 0, len(d.WorkDays))
	for _, name := range d.WorkDays {
		day, ok := weekdayNames[name]
		if !ok {
			return model.Availability{}, fmt.Errorf("%w: unknown weekday %q", model.ErrValidation, name)
		}
		days = append(days, day)
	}
	return model.Availability{
		WorkDays: days,
		DayStart: timestampToMinute(d.StartTime),
		DayEnd:   timestampToMinute(d.EndTime),
		Timezone: d.Timezone,
	}, nil
}

type userDoc struct {
	ID                   string           `json:"id"`
	FirstName            string           `json:"firstName"`
	LastName             string           `json:"lastName"`
	Email                string           `json:"email"`
	Purpose              string           `json:"purpose"`
	SchedulingPreference string           `json:"schedulingPreference"`
	CalendarProvider     string           `json:"calendarProvider"`
	IsOnboardingComplete bool             `json:"isOnboardingCompleted"`
	PhoneNumber          string           `json:"phoneNumber"`
	AvatarURL            string           `json:"avatarURL"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
	Availability         *availabilityDoc `json:"availability,omitempty"`
}

func profileToDoc(p model.UserProfile, now time.Time) userDoc {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return userDoc{
		ID:                   p.ID,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		Email:                p.Email,
		Purpose:              p.Purpose,
		SchedulingPreference: p.SchedulingPreference,
		CalendarProvider:     p.CalendarProvider,
		IsOnboardingComplete: p.OnboardingCompleted,
		PhoneNumber:          p.PhoneNumber,
		AvatarURL:            p.AvatarURL,
		CreatedAt:            createdAt.UTC(),
		UpdatedAt:            now.UTC(),
	}
}

func profileFromDoc(d userDoc) (model.UserProfile, error) {
	if d.Email == "" {
		return model.UserProfile{}, fmt.Errorf("%w: user document missing email", model.ErrValidation)
	}
	return model.UserProfile{
		ID:                   d.ID,
		FirstName:            d.FirstName,
		LastName:             d.LastName,
		Email:                d.Email,
		Purpose:              d.Purpose,
		SchedulingPreference: d.SchedulingPreference,
		CalendarProvider:     d.CalendarProvider,
		OnboardingCompleted:  d.IsOnboardingComplete,
		PhoneNumber:          d.PhoneNumber,
		AvatarURL:            d.AvatarURL,
		CreatedAt:            d.CreatedAt,
	}, nil
}

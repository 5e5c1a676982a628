package model

import (
	"fmt"
	"strings"
	"time"
)

// ValidateUserID rejects the empty user id before any remote call is built.
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrAuthenticationRequired
	}
	return nil
}

// ValidateEmail performs the minimal shape check the app relies on.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return fmt.Errorf("%w: malformed email %q", ErrValidation, email)
	}
	return nil
}

// ValidateMeeting enforces the data-model invariants. The start instant is
// deliberately not required to be in the future; that is a UI concern.
func ValidateMeeting(m Meeting) error {
	if m.ID == "" {
		return fmt.Errorf("%w: meeting id required", ErrValidation)
	}
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: meeting title required", ErrValidation)
	}
	if m.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be > 0", ErrValidation)
	}
	if _, err := ParsePlatform(string(m.Platform)); err != nil {
		return err
	}
	for _, p := range m.Participants {
		if err := ValidateEmail(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMeetingType enforces the meeting-type invariants.
func ValidateMeetingType(t MeetingType) error {
	if t.ID == "" {
		return fmt.Errorf("%w: meeting type id required", ErrValidation)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: meeting type name required", ErrValidation)
	}
	if t.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be > 0", ErrValidation)
	}
	_, err := ParsePlatform(string(t.Platform))
	return err
}

// ValidateAvailability enforces start < end, at least one working day, and
// a resolvable IANA timezone.
func ValidateAvailability(a Availability) error {
	if len(a.WorkDays) == 0 {
		return fmt.Errorf("%w: at least one working day required", ErrValidation)
	}
	if a.DayStart >= a.DayEnd {
		return fmt.Errorf("%w: day start %s must precede day end %s", ErrValidation, a.DayStart, a.DayEnd)
	}
	if a.DayStart < 0 || a.DayEnd >= 24*60 {
		return fmt.Errorf("%w: working window outside a single day", ErrValidation)
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, a.Timezone)
	}
	return nil
}

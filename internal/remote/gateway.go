package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
)

// SaveMeeting upserts a meeting document at users/{userId}/meetings/{id}.
func SaveMeeting(ctx context.Context, hc *http.Client, baseURL, userID string, m model.Meeting) error {
	if err := model.ValidateUserID(userID); err != nil {
		return err
	}
	if err := model.ValidateMeeting(m); err != nil {
		return err
	}
	doc := meetingToDoc(userID, m, time.Now())
	url := fmt.Sprintf("%s/api/users/%s/meetings/%s", baseURL, userID, m.ID)
	return putJSON(ctx, hc, "save meeting", url, doc)
}

// LoadMeetings fetches all meetings for the user, ordered by date. Documents
// failing validation are skipped and logged; the batch never fails for one
// bad record.
func LoadMeetings(ctx context.Context, hc *http.Client, baseURL, userID string, log zerolog.Logger) ([]model.Meeting, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/users/%s/meetings", baseURL, userID)
	var lr listMeetingsResponse
	if err := getJSON(ctx, hc, "load meetings", url, &lr); err != nil {
		return nil, err
	}
	meetings := make([]model.Meeting, 0, len(lr.Meetings))
	for _, doc := range lr.Meetings {
		m, err := meetingFromDoc(doc)
		if err != nil {
			log.Warn().Err(err).Str("document_id", doc.ID).Msg("skipping invalid meeting document")
			continue
		}
		meetings = append(meetings, m)
	}
	return meetings, nil
}

// SaveMeetingType upserts a meeting-type document at
// users/{userId}/meetingTypes/{id}.
func SaveMeetingType(ctx context.Context, hc *http.Client, baseURL, userID string, t model.MeetingType) error {
	if err := model.ValidateUserID(userID); err != nil {
		return err
	}
	if err := model.ValidateMeetingType(t); err != nil {
		return err
	}
	doc := meetingTypeToDoc(userID, t, time.Now())
	url := fmt.Sprintf("%s/api/users/%s/meetingTypes/%s", baseURL, userID, t.ID)
	return putJSON(ctx, hc, "save meeting type", url, doc)
}

// LoadMeetingTypes fetches the user's meeting types, skipping invalid
// documents.
func LoadMeetingTypes(ctx context.Context, hc *http.Client, baseURL, userID string, log zerolog.Logger) ([]model.MeetingType, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/users/%s/meetingTypes", baseURL, userID)
	var lr listMeetingTypesResponse
	if err := getJSON(ctx, hc, "load meeting types", url, &lr); err != nil {
		return nil, err
	}
	types := make([]model.MeetingType, 0, len(lr.MeetingTypes))
	for _, doc := range lr.MeetingTypes {
		t, err := meetingTypeFromDoc(doc)
		if err != nil {
			log.Warn().Err(err).Str("document_id", doc.ID).Msg("skipping invalid meeting type document")
			continue
		}
		types = append(types, t)
	}
	return types, nil
}

// SaveAvailability merges the availability map into the user document. The
// replace is wholesale; there is no partial update.
func SaveAvailability(ctx context.Context, hc *http.Client, baseURL, userID string, a model.Availability) error {
	if err := model.ValidateUserID(userID); err != nil {
		return err
	}
	if err := model.ValidateAvailability(a); err != nil {
		return err
	}
	payload := map[string]availabilityDoc{"availability": availabilityToDoc(a, time.Now())}
	url := fmt.Sprintf("%s/api/users/%s", baseURL, userID)
	return patchJSON(ctx, hc, "save availability", url, payload)
}

// LoadAvailability reads the availability map off the user document. A
// missing document or missing map yields the onboarding default, not an
// error; only request-level failures surface.
func LoadAvailability(ctx context.Context, hc *http.Client, baseURL, userID, defaultTimezone string, log zerolog.Logger) (model.Availability, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return model.Availability{}, err
	}
	url := fmt.Sprintf("%s/api/users/%s", baseURL, userID)
	var doc userDoc
	err := getJSON(ctx, hc, "load availability", url, &doc)
	if err != nil {
		var pe *model.PersistenceError
		if errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound {
			return model.DefaultAvailability(defaultTimezone), nil
		}
		return model.Availability{}, err
	}
	if doc.Availability == nil {
		return model.DefaultAvailability(defaultTimezone), nil
	}
	a, err := availabilityFromDoc(*doc.Availability)
	if err != nil {
		log.Warn().Err(err).Msg("stored availability invalid; falling back to default")
		return model.DefaultAvailability(defaultTimezone), nil
	}
	return a, nil
}

// SaveProfile writes the whole profile document at users/{userId}.
func SaveProfile(ctx context.Context, hc *http.Client, baseURL, userID string, p model.UserProfile) error {
	if err := model.ValidateUserID(userID); err != nil {
		return err
	}
	if err := model.ValidateEmail(p.Email); err != nil {
		return err
	}
	doc := profileToDoc(p, time.Now())
	url := fmt.Sprintf("%s/api/users/%s", baseURL, userID)
	return patchJSON(ctx, hc, "save profile", url, doc)
}

// LoadProfile reads the profile document for the user.
func LoadProfile(ctx context.Context, hc *http.Client, baseURL, userID string) (*model.UserProfile, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/users/%s", baseURL, userID)
	var doc userDoc
	if err := getJSON(ctx, hc, "load profile", url, &doc); err != nil {
		return nil, err
	}
	p, err := profileFromDoc(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ------------------------- request plumbing -------------------------

func putJSON(ctx context.Context, hc *http.Client, op, url string, payload any) error {
	return writeJSON(ctx, hc, op, http.MethodPut, url, payload)
}

func patchJSON(ctx context.Context, hc *http.Client, op, url string, payload any) error {
	return writeJSON(ctx, hc, op, http.MethodPatch, url, payload)
}

func writeJSON(ctx context.Context, hc *http.Client, op, method, url string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(op, resp.StatusCode)
	}
	return nil
}

func getJSON(ctx context.Context, hc *http.Client, op, url string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrValidation, op, err)
	}
	return nil
}

func statusError(op string, status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &model.PersistenceError{Op: op, StatusCode: status, Err: model.ErrAuthenticationRequired}
	case http.StatusNotFound:
		return &model.PersistenceError{Op: op, StatusCode: status, Err: model.ErrNotFound}
	default:
		return &model.PersistenceError{Op: op, StatusCode: status}
	}
}

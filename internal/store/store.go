// Package store holds the in-memory state exposed to presentation code:
// meetings, meeting types, contacts, and the availability profile. Writes
// are optimistic: the local mutation lands first, the remote write follows
// through the sync queue, and a terminal remote failure rolls the local
// mutation back.
package store

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
	"github.com/timelyapp/timely/internal/syncqueue"
)

// Sync-queue keys; one per entity collection so writes stay FIFO per kind.
const (
	keyMeetings     = "meetings"
	keyMeetingTypes = "meetingTypes"
	keyAvailability = "availability"
)

// Remote is the slice of the persistence gateway the store depends on.
type Remote interface {
	SaveMeeting(ctx context.Context, userID string, m model.Meeting) error
	LoadMeetings(ctx context.Context, userID string) ([]model.Meeting, error)
	SaveMeetingType(ctx context.Context, userID string, t model.MeetingType) error
	LoadMeetingTypes(ctx context.Context, userID string) ([]model.MeetingType, error)
	SaveAvailability(ctx context.Context, userID string, a model.Availability) error
	LoadAvailability(ctx context.Context, userID string) (model.Availability, error)
}

// Identity yields the id every remote call is keyed by.
type Identity interface {
	CurrentUserID() string
}

// Store owns the in-memory collections. All access goes through the mutex;
// the sync queue's failure callbacks mutate under the same lock.
type Store struct {
	remote Remote
	ids    Identity
	queue  *syncqueue.Executor
	log    zerolog.Logger

	mu           sync.Mutex
	meetings     []model.Meeting
	types        []model.MeetingType
	manual       []model.Contact
	contacts     []model.Contact
	availability model.Availability
}

// New constructs a Store seeded with the default availability.
func New(remote Remote, ids Identity, queue *syncqueue.Executor, defaultTimezone string, log zerolog.Logger) *Store {
	return &Store{
		remote:       remote,
		ids:          ids,
		queue:        queue,
		log:          log.With().Str("component", "store").Logger(),
		availability: model.DefaultAvailability(defaultTimezone),
	}
}

// Load pulls all collections for the signed-in user. Each collection loads
// independently; one failing read does not block the others. Collected
// request-level errors are returned joined.
func (s *Store) Load(ctx context.Context) error {
	userID := s.ids.CurrentUserID()
	if userID == "" {
		return model.ErrAuthenticationRequired
	}

	var errs []error

	if meetings, err := s.remote.LoadMeetings(ctx, userID); err != nil {
		s.log.Error().Err(err).Msg("loading meetings failed")
		errs = append(errs, err)
	} else {
		s.mu.Lock()
		s.meetings = meetings
		s.deriveContactsLocked()
		s.mu.Unlock()
	}

	if types, err := s.remote.LoadMeetingTypes(ctx, userID); err != nil {
		s.log.Error().Err(err).Msg("loading meeting types failed")
		errs = append(errs, err)
	} else {
		s.mu.Lock()
		s.types = types
		s.mu.Unlock()
	}

	if avail, err := s.remote.LoadAvailability(ctx, userID); err != nil {
		s.log.Error().Err(err).Msg("loading availability failed")
		errs = append(errs, err)
	} else {
		s.mu.Lock()
		s.availability = avail
		s.mu.Unlock()
	}

	return errors.Join(errs...)
}

// AddMeeting appends the meeting locally, re-derives contacts, and queues
// the remote write. A terminal write failure removes the entry again.
func (s *Store) AddMeeting(ctx context.Context, m model.Meeting) error {
	if err := model.ValidateMeeting(m); err != nil {
		return err
	}
	userID := s.ids.CurrentUserID()
	if userID == "" {
		return model.ErrAuthenticationRequired
	}

	s.mu.Lock()
	s.meetings = append(s.meetings, m)
	s.deriveContactsLocked()
	s.mu.Unlock()

	return s.queue.Submit(ctx, keyMeetings, syncqueue.Job{
		Run: func(jctx context.Context) error {
			return s.remote.SaveMeeting(jctx, userID, m)
		},
		OnFailure: func(err error) {
			s.log.Error().Err(err).Str("meeting_id", m.ID).Msg("remote write failed; rolling back meeting")
			s.mu.Lock()
			s.removeMeetingLocked(m.ID)
			s.deriveContactsLocked()
			s.mu.Unlock()
		},
	})
}

// AddMeetingType appends the type locally and queues the remote write with
// the same rollback discipline as AddMeeting.
func (s *Store) AddMeetingType(ctx context.Context, t model.MeetingType) error {
	if err := model.ValidateMeetingType(t); err != nil {
		return err
	}
	userID := s.ids.CurrentUserID()
	if userID == "" {
		return model.ErrAuthenticationRequired
	}

	s.mu.Lock()
	s.types = append(s.types, t)
	s.mu.Unlock()

	return s.queue.Submit(ctx, keyMeetingTypes, syncqueue.Job{
		Run: func(jctx context.Context) error {
			return s.remote.SaveMeetingType(jctx, userID, t)
		},
		OnFailure: func(err error) {
			s.log.Error().Err(err).Str("type_id", t.ID).Msg("remote write failed; rolling back meeting type")
			s.mu.Lock()
			for i, existing := range s.types {
				if existing.ID == t.ID {
					s.types = append(s.types[:i], s.types[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		},
	})
}

// ReplaceAvailability swaps the availability wholesale and queues the
// remote write. Unlike the legacy client, a terminal write failure restores
// the previous value, keeping the rollback policy uniform across entities.
// The restore only happens while the optimistic value is still current.
func (s *Store) ReplaceAvailability(ctx context.Context, a model.Availability) error {
	if err := model.ValidateAvailability(a); err != nil {
		return err
	}
	userID := s.ids.CurrentUserID()
	if userID == "" {
		return model.ErrAuthenticationRequired
	}

	s.mu.Lock()
	prev := s.availability
	s.availability = a
	s.mu.Unlock()

	return s.queue.Submit(ctx, keyAvailability, syncqueue.Job{
		Run: func(jctx context.Context) error {
			return s.remote.SaveAvailability(jctx, userID, a)
		},
		OnFailure: func(err error) {
			s.log.Error().Err(err).Msg("remote write failed; rolling back availability")
			s.mu.Lock()
			if reflect.DeepEqual(s.availability, a) {
				s.availability = prev
			}
			s.mu.Unlock()
		},
	})
}

// AddContact registers a manually added contact. Manual contacts survive
// derivation as long as no meeting references their email.
func (s *Store) AddContact(c model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.manual = append(s.manual, c)
	s.deriveContactsLocked()
}

// Flush blocks until every queued write has been executed.
func (s *Store) Flush(ctx context.Context) error {
	for _, key := range []string{keyMeetings, keyMeetingTypes, keyAvailability} {
		if err := s.queue.Barrier(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Meetings returns a copy of the meeting collection.
func (s *Store) Meetings() []model.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Meeting, len(s.meetings))
	copy(out, s.meetings)
	return out
}

// MeetingTypes returns a copy of the meeting-type collection.
func (s *Store) MeetingTypes() []model.MeetingType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MeetingType, len(s.types))
	copy(out, s.types)
	return out
}

// Contacts returns a copy of the derived contact collection.
func (s *Store) Contacts() []model.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// Availability returns the current availability profile.
func (s *Store) Availability() model.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availability
}

func (s *Store) removeMeetingLocked(id string) {
	for i, m := range s.meetings {
		if m.ID == id {
			s.meetings = append(s.meetings[:i], s.meetings[i+1:]...)
			return
		}
	}
}

// deriveContactsLocked rebuilds the contact set from the full meeting
// collection, then appends manual contacts that match no meeting. Existing
// ids and display names are preserved across derivations.
func (s *Store) deriveContactsLocked() {
	known := make(map[string]model.Contact, len(s.contacts))
	for _, c := range s.contacts {
		known[c.Email] = c
	}

	var derived []model.Contact
	index := make(map[string]int)
	for _, m := range s.meetings {
		for _, email := range m.Participants {
			if i, ok := index[email]; ok {
				derived[i].MeetingCount++
				continue
			}
			c := model.Contact{Email: email, MeetingCount: 1}
			if prev, ok := known[email]; ok {
				c.ID = prev.ID
				c.DisplayName = prev.DisplayName
			} else {
				c.ID = uuid.NewString()
				c.DisplayName = displayNameFromEmail(email)
			}
			index[email] = len(derived)
			derived = append(derived, c)
		}
	}

	for _, c := range s.manual {
		if _, ok := index[c.Email]; !ok {
			derived = append(derived, c)
		}
	}

	s.contacts = derived
}

func displayNameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	if name == "" {
		return "Unknown"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

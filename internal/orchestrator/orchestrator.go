// Package orchestrator drives meeting-link provisioning for a meeting
// draft. Each draft walks a small state machine, Idle -> Requesting ->
// Succeeded or Failed, with at most one provider call in flight and stale
// responses discarded by version tag.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/model"
	"github.com/timelyapp/timely/internal/provider"
)

// ErrRequestInFlight is returned by RequestLink while a provider call for
// the current draft is still running.
var ErrRequestInFlight = errors.New("orchestrator: link request already in flight")

// State is the provisioning phase of the current draft.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Draft is the meeting being assembled before it is saved.
type Draft = model.Meeting

// Snapshot is a point-in-time view of the machine, safe to read after the
// lock is released.
type Snapshot struct {
	State   State
	Draft   Draft
	Link    *model.MeetingLink
	Failure string
}

// Orchestrator owns one draft and its provisioning state. All methods are
// safe for concurrent use.
type Orchestrator struct {
	providers map[model.Platform]provider.Client
	log       zerolog.Logger

	mu        sync.Mutex
	state     State
	draft     Draft
	version   uint64
	link      *model.MeetingLink
	failure   string
	observers []func(Snapshot)
}

// New builds an orchestrator over the given provider clients, one per
// remote platform.
func New(providers map[model.Platform]provider.Client, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		log:       log.With().Str("component", "orchestrator").Logger(),
		state:     StateIdle,
	}
}

// Subscribe registers fn to run after every state transition that settles
// or invalidates a request. Callbacks run outside the lock.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// SetTitle updates the draft title. Editing the title invalidates any link
// already obtained and any response still on the wire.
func (o *Orchestrator) SetTitle(title string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draft.Title == title {
		return
	}
	o.draft.Title = title
	o.invalidateLocked()
}

// SetPlatform updates the draft platform with the same invalidation rules
// as SetTitle.
func (o *Orchestrator) SetPlatform(p model.Platform) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draft.Platform == p {
		return
	}
	o.draft.Platform = p
	o.invalidateLocked()
}

// SetTiming updates the draft's start time and duration. Scheduling edits
// do not invalidate an existing link.
func (o *Orchestrator) SetTiming(m Draft) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.StartTime = m.StartTime
	o.draft.DurationMinutes = m.DurationMinutes
}

// SetParticipants replaces the participant list.
func (o *Orchestrator) SetParticipants(emails []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.Participants = append([]string(nil), emails...)
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// RequestLink starts provisioning for the current draft. It returns as
// soon as the request is accepted; completion is observable via Subscribe
// or Snapshot. In Person drafts resolve immediately without a provider
// call. A second trigger while one is running returns ErrRequestInFlight.
func (o *Orchestrator) RequestLink(ctx context.Context, timezone string) error {
	o.mu.Lock()

	if o.state == StateRequesting {
		o.mu.Unlock()
		return ErrRequestInFlight
	}
	if o.draft.Title == "" {
		o.mu.Unlock()
		return fmt.Errorf("%w: title is required", model.ErrValidation)
	}

	if o.draft.Platform == model.PlatformInPerson {
		o.state = StateSucceeded
		o.link = &model.MeetingLink{}
		o.failure = ""
		snap := o.snapshotLocked()
		obs := o.observersLocked()
		o.mu.Unlock()
		notify(obs, snap)
		return nil
	}

	client, ok := o.providers[o.draft.Platform]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: no client for platform %q", model.ErrValidation, o.draft.Platform)
	}

	o.state = StateRequesting
	o.failure = ""
	o.link = nil
	version := o.version
	req := provider.LinkRequest{
		Title:           o.draft.Title,
		StartTime:       o.draft.StartTime,
		DurationMinutes: o.draft.DurationMinutes,
		Participants:    append([]string(nil), o.draft.Participants...),
		Timezone:        timezone,
	}
	o.mu.Unlock()

	go o.run(ctx, client, req, version)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, client provider.Client, req provider.LinkRequest, version uint64) {
	link, err := client.CreateMeeting(ctx, req)

	o.mu.Lock()
	if o.version != version {
		// Draft changed while the request was on the wire.
		o.log.Debug().Uint64("stale_version", version).Msg("discarding stale link response")
		o.mu.Unlock()
		return
	}

	if err != nil {
		o.state = StateFailed
		o.failure = failureMessage(err)
		o.link = nil
		o.log.Warn().Err(err).Msg("link request failed")
	} else {
		o.state = StateSucceeded
		o.link = link
		o.failure = ""
	}
	snap := o.snapshotLocked()
	obs := o.observersLocked()
	o.mu.Unlock()

	notify(obs, snap)
}

// invalidateLocked applies the edit rules: a Succeeded draft drops its link
// and returns to Idle, a Requesting draft bumps the version so the pending
// response lands on the floor.
func (o *Orchestrator) invalidateLocked() {
	switch o.state {
	case StateSucceeded, StateFailed:
		o.state = StateIdle
		o.link = nil
		o.failure = ""
	case StateRequesting:
		o.version++
		o.state = StateIdle
		o.link = nil
		o.failure = ""
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{State: o.state, Draft: o.draft, Failure: o.failure}
	snap.Draft.Participants = append([]string(nil), o.draft.Participants...)
	if o.link != nil {
		l := *o.link
		snap.Link = &l
	}
	return snap
}

func (o *Orchestrator) observersLocked() []func(Snapshot) {
	return append([](func(Snapshot))(nil), o.observers...)
}

func notify(obs []func(Snapshot), snap Snapshot) {
	for _, fn := range obs {
		fn(snap)
	}
}

// failureMessage turns a provider error into the message surfaced to the
// user alongside the Failed state.
func failureMessage(err error) string {
	var apiErr *model.ProviderAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		return "network error: " + netErr.Error()
	}
	if errors.Is(err, provider.ErrAuthenticationFailed) {
		return "provider authentication failed; check credentials"
	}
	return err.Error()
}

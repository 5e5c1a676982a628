package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyapp/timely/internal/model"
	"github.com/timelyapp/timely/internal/provider"
)

// fakeProvider blocks on release (when set) before answering.
type fakeProvider struct {
	link    *model.MeetingLink
	err     error
	release chan struct{}
	calls   int32
	done    chan struct{}
}

func (f *fakeProvider) CreateMeeting(ctx context.Context, req provider.LinkRequest) (*model.MeetingLink, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.release != nil {
		<-f.release
	}
	if f.done != nil {
		defer close(f.done)
	}
	return f.link, f.err
}

func newTestOrchestrator(p provider.Client) *Orchestrator {
	return New(map[model.Platform]provider.Client{
		model.PlatformGoogleMeet: p,
		model.PlatformZoom:       p,
	}, zerolog.Nop())
}

func settledChan(o *Orchestrator) <-chan Snapshot {
	ch := make(chan Snapshot, 4)
	o.Subscribe(func(s Snapshot) { ch <- s })
	return ch
}

func awaitSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the orchestrator to settle")
		return Snapshot{}
	}
}

func TestRequestLink_Succeeds(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{link: &model.MeetingLink{JoinURL: "https://meet.google.com/abc", ProviderID: "evt"}}
	o := newTestOrchestrator(p)
	o.SetTitle("Kickoff")
	o.SetPlatform(model.PlatformGoogleMeet)
	o.SetTiming(Draft{StartTime: time.Now().Add(time.Hour), DurationMinutes: 30})
	ch := settledChan(o)

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	snap := awaitSnapshot(t, ch)

	assert.Equal(t, StateSucceeded, snap.State)
	require.NotNil(t, snap.Link)
	assert.Equal(t, "https://meet.google.com/abc", snap.Link.JoinURL)
}

func TestRequestLink_InPersonResolvesLocally(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	o := newTestOrchestrator(p)
	o.SetTitle("Coffee chat")
	o.SetPlatform(model.PlatformInPerson)
	ch := settledChan(o)

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	snap := awaitSnapshot(t, ch)

	assert.Equal(t, StateSucceeded, snap.State)
	require.NotNil(t, snap.Link)
	assert.Empty(t, snap.Link.JoinURL)
	assert.Zero(t, atomic.LoadInt32(&p.calls), "in-person drafts never call a provider")
}

func TestRequestLink_RejectsSecondTrigger(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{
		link:    &model.MeetingLink{JoinURL: "https://zoom.us/j/1"},
		release: make(chan struct{}),
	}
	o := newTestOrchestrator(p)
	o.SetTitle("Review")
	o.SetPlatform(model.PlatformZoom)
	ch := settledChan(o)

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	err := o.RequestLink(context.Background(), "UTC")
	require.ErrorIs(t, err, ErrRequestInFlight)

	close(p.release)
	awaitSnapshot(t, ch)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestRequestLink_EmptyTitleRejected(t *testing.T) {
	t.Parallel()
	o := newTestOrchestrator(&fakeProvider{})
	o.SetPlatform(model.PlatformGoogleMeet)
	err := o.RequestLink(context.Background(), "UTC")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestRequestLink_FailureKeepsDraftForRetry(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{err: &model.ProviderAPIError{Provider: "zoom", StatusCode: http.StatusBadGateway, Message: "upstream"}}
	o := newTestOrchestrator(p)
	o.SetTitle("Planning")
	o.SetPlatform(model.PlatformZoom)
	ch := settledChan(o)

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	snap := awaitSnapshot(t, ch)

	assert.Equal(t, StateFailed, snap.State)
	assert.NotEmpty(t, snap.Failure)
	assert.Nil(t, snap.Link)
	assert.Equal(t, "Planning", snap.Draft.Title, "draft survives failure")

	// A retry after failure is allowed.
	p.err = nil
	p.link = &model.MeetingLink{JoinURL: "https://zoom.us/j/2"}
	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	snap = awaitSnapshot(t, ch)
	assert.Equal(t, StateSucceeded, snap.State)
}

func TestRequestLink_StaleResponseDiscarded(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{
		link:    &model.MeetingLink{JoinURL: "https://meet.google.com/stale"},
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
	o := newTestOrchestrator(p)
	o.SetTitle("Original")
	o.SetPlatform(model.PlatformGoogleMeet)

	var notified int32
	o.Subscribe(func(Snapshot) { atomic.AddInt32(&notified, 1) })

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))

	// Editing the title while the request is on the wire invalidates it.
	o.SetTitle("Edited")
	close(p.release)

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("provider call never finished")
	}
	require.Eventually(t, func() bool {
		return o.Snapshot().State == StateIdle
	}, time.Second, 10*time.Millisecond)

	snap := o.Snapshot()
	assert.Nil(t, snap.Link, "stale link must be discarded")
	assert.Equal(t, "Edited", snap.Draft.Title)
	assert.Zero(t, atomic.LoadInt32(&notified), "discarded responses do not notify")
}

func TestEditAfterSuccess_DiscardsLink(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{link: &model.MeetingLink{JoinURL: "https://meet.google.com/abc"}}
	o := newTestOrchestrator(p)
	o.SetTitle("Kickoff")
	o.SetPlatform(model.PlatformGoogleMeet)
	ch := settledChan(o)

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	awaitSnapshot(t, ch)

	o.SetPlatform(model.PlatformZoom)
	snap := o.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Link)
}

func TestTimingEdits_DoNotInvalidate(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{link: &model.MeetingLink{JoinURL: "https://meet.google.com/abc"}}
	o := newTestOrchestrator(p)
	o.SetTitle("Kickoff")
	o.SetPlatform(model.PlatformGoogleMeet)
	ch := settledChan(o)

	require.NoError(t, o.RequestLink(context.Background(), "UTC"))
	awaitSnapshot(t, ch)

	o.SetTiming(Draft{StartTime: time.Now().Add(2 * time.Hour), DurationMinutes: 60})
	snap := o.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	require.NotNil(t, snap.Link)
}

func TestUnknownPlatformRejected(t *testing.T) {
	t.Parallel()
	o := New(map[model.Platform]provider.Client{}, zerolog.Nop())
	o.SetTitle("Kickoff")
	o.SetPlatform(model.PlatformTeams)
	err := o.RequestLink(context.Background(), "UTC")
	require.ErrorIs(t, err, model.ErrValidation)
	require.True(t, errors.Is(err, model.ErrValidation))
}

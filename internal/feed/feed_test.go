package feed

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/extrarr/extrarr/common"
)

// fakeTransport counts polls and lets tests control channel behavior.
type fakeTransport struct {
	openErr   error
	polls     atomic.Int64
	pollErr   error
	onDown    atomic.Pointer[func(error)]
	chanOpens atomic.Int64
	chanClose atomic.Int64
}

func (f *fakeTransport) OpenChannel(_ context.Context, _ string, onDown func(error)) (func(), error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.chanOpens.Add(1)
	f.onDown.Store(&onDown)
	return func() { f.chanClose.Add(1) }, nil
}

func (f *fakeTransport) Poll(context.Context, string) error {
	f.polls.Add(1)
	return f.pollErr
}

func (f *fakeTransport) killChannel(err error) {
	if fn := f.onDown.Load(); fn != nil {
		(*fn)(err)
	}
}

func newTestSelector(t *testing.T, tr Transport) (*Selector, *Lifecycle) {
	t.Helper()
	lc := NewLifecycle(nil)
	lc.SetActive(true)
	s := NewSelector(NewRegistry(), lc, tr, log.New(io.Discard, "", 0))
	s.SetInterval(common.FEED_TASKS, 5*time.Millisecond)
	s.SetInterval(common.FEED_QUEUE, 5*time.Millisecond)
	return s, lc
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

// TestRegistry_StaleHandleCannotAct verifies only the current generation's
// stop function may act after rapid re-activation.
func TestRegistry_StaleHandleCannotAct(t *testing.T) {
	r := NewRegistry()
	var stopped1, stopped2 atomic.Bool

	gen1 := r.Activate("queue")
	if !r.Bind("queue", gen1, func() { stopped1.Store(true) }) {
		t.Fatal("bind for current generation must succeed")
	}

	gen2 := r.Activate("queue")
	if !stopped1.Load() {
		t.Fatal("activating must synchronously stop the previous holder")
	}
	if r.Bind("queue", gen1, func() {}) {
		t.Fatal("stale bind must be refused")
	}
	if !r.Bind("queue", gen2, func() { stopped2.Store(true) }) {
		t.Fatal("current bind must succeed")
	}

	if r.Release("queue", gen1) {
		t.Fatal("stale release must be a no-op")
	}
	if stopped2.Load() {
		t.Fatal("stale release must not stop the current holder")
	}
	if !r.Release("queue", gen2) {
		t.Fatal("current release must act")
	}
	if !stopped2.Load() {
		t.Fatal("release must invoke the stop function")
	}
	if r.Release("queue", gen2) {
		t.Fatal("release must be idempotent")
	}
}

// TestSelector_ChannelSuccessMeansNoPolling verifies that after a successful
// channel open no polling request is observed for that feed.
func TestSelector_ChannelSuccessMeansNoPolling(t *testing.T) {
	tr := &fakeTransport{}
	s, _ := newTestSelector(t, tr)

	gen := s.Activate(common.FEED_QUEUE)
	defer s.Deactivate(common.FEED_QUEUE, gen)

	waitFor(t, func() bool { return tr.chanOpens.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	if n := tr.polls.Load(); n != 0 {
		t.Fatalf("expected zero polls in channel mode, got %d", n)
	}
}

// TestSelector_OpenFailureFallsBackToPolling verifies silent fallback.
func TestSelector_OpenFailureFallsBackToPolling(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("refused")}
	s, _ := newTestSelector(t, tr)

	gen := s.Activate(common.FEED_TASKS)
	defer s.Deactivate(common.FEED_TASKS, gen)

	waitFor(t, func() bool { return tr.polls.Load() >= 3 })
}

// TestSelector_ChannelDeathFallsBackToPolling verifies a channel error after
// a successful open starts interval polling.
func TestSelector_ChannelDeathFallsBackToPolling(t *testing.T) {
	tr := &fakeTransport{}
	s, _ := newTestSelector(t, tr)

	gen := s.Activate(common.FEED_QUEUE)
	defer s.Deactivate(common.FEED_QUEUE, gen)

	waitFor(t, func() bool { return tr.chanOpens.Load() == 1 })
	tr.killChannel(errors.New("connection reset"))
	waitFor(t, func() bool { return tr.polls.Load() >= 2 })
	if tr.chanClose.Load() != 1 {
		t.Fatalf("channel must be closed on fallback, got %d closes", tr.chanClose.Load())
	}
}

// TestSelector_LifecycleGatesPolling verifies polling only runs while the
// view is active and the host visible.
func TestSelector_LifecycleGatesPolling(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("refused")}
	s, lc := newTestSelector(t, tr)
	lc.SetVisible(false)

	gen := s.Activate(common.FEED_QUEUE)
	defer s.Deactivate(common.FEED_QUEUE, gen)

	time.Sleep(40 * time.Millisecond)
	if n := tr.polls.Load(); n != 0 {
		t.Fatalf("expected no polls while hidden, got %d", n)
	}

	lc.SetVisible(true)
	waitFor(t, func() bool { return tr.polls.Load() >= 1 })
}

// TestSelector_DeactivateStopsDelivery verifies teardown clears the poll
// timer and closes the channel, and that a stale deactivate cannot kill a
// newer activation.
func TestSelector_DeactivateStopsDelivery(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("refused")}
	s, _ := newTestSelector(t, tr)

	gen1 := s.Activate(common.FEED_QUEUE)
	waitFor(t, func() bool { return tr.polls.Load() >= 1 })
	if !s.Deactivate(common.FEED_QUEUE, gen1) {
		t.Fatal("deactivate with current token must act")
	}
	settled := tr.polls.Load()
	time.Sleep(40 * time.Millisecond)
	if tr.polls.Load()-settled > 1 {
		t.Fatal("polling must stop after deactivation")
	}

	gen2 := s.Activate(common.FEED_QUEUE)
	defer s.Deactivate(common.FEED_QUEUE, gen2)
	if s.Deactivate(common.FEED_QUEUE, gen1) {
		t.Fatal("stale deactivate must be a no-op")
	}
	before := tr.polls.Load()
	waitFor(t, func() bool { return tr.polls.Load() > before })
}

// TestSelector_PollErrorsAreSilent verifies failed poll ticks do not stop
// the loop; a later tick still fires.
func TestSelector_PollErrorsAreSilent(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("refused"), pollErr: errors.New("503")}
	s, _ := newTestSelector(t, tr)
	gen := s.Activate(common.FEED_TASKS)
	defer s.Deactivate(common.FEED_TASKS, gen)
	waitFor(t, func() bool { return tr.polls.Load() >= 3 })
}

// TestSelector_SetIntervalWhileActive verifies interval overrides are safe
// while a delivery loop is polling the map concurrently.
func TestSelector_SetIntervalWhileActive(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("refused")}
	s, _ := newTestSelector(t, tr)

	gen := s.Activate(common.FEED_QUEUE)
	defer s.Deactivate(common.FEED_QUEUE, gen)
	waitFor(t, func() bool { return tr.polls.Load() >= 1 })

	for i := 0; i < 50; i++ {
		s.SetInterval(common.FEED_QUEUE, time.Duration(i+1)*time.Millisecond)
	}
	waitFor(t, func() bool { return tr.polls.Load() >= 3 })
}

func TestLifecycle_OnChangeEdges(t *testing.T) {
	var calls []bool
	lc := NewLifecycle(func(deliver bool) { calls = append(calls, deliver) })

	lc.SetActive(true) // starts visible, so this is the false->true edge
	lc.SetActive(true) // no edge
	lc.SetVisible(false)
	lc.SetVisible(false) // no edge
	lc.SetVisible(true)

	want := []bool{true, false, true}
	if len(calls) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("transition %d: expected %v, got %v", i, want[i], calls[i])
		}
	}
}

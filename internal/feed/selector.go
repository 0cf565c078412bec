package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/extrarr/extrarr/common"
)

// Default poll intervals per feed when the push channel is unavailable.
const (
	DefaultTasksInterval = 500 * time.Millisecond
	DefaultQueueInterval = time.Second
)

// Transport is how the selector reaches the daemon. OpenChannel establishes
// the push subscription for a feed and reports transport death through
// onDown exactly once; Poll performs one snapshot fetch-and-apply.
type Transport interface {
	OpenChannel(ctx context.Context, feed string, onDown func(error)) (close func(), err error)
	Poll(ctx context.Context, feed string) error
}

// Selector owns channel-vs-polling selection per logical feed. Opening the
// push channel succeeds ⇒ no poll timer runs for that feed; channel open
// failure or later death ⇒ silent fallback to interval polling gated by the
// Lifecycle. Failed poll ticks leave the last known snapshot stale until a
// later tick succeeds. None of this ever surfaces to the user.
type Selector struct {
	reg *Registry
	lc  *Lifecycle
	tr  Transport
	log *log.Logger

	mu        sync.Mutex
	intervals map[string]time.Duration
}

// NewSelector creates a Selector. The logger may be nil.
func NewSelector(reg *Registry, lc *Lifecycle, tr Transport, l *log.Logger) *Selector {
	return &Selector{
		reg: reg,
		lc:  lc,
		tr:  tr,
		log: l,
		intervals: map[string]time.Duration{
			common.FEED_TASKS: DefaultTasksInterval,
			common.FEED_QUEUE: DefaultQueueInterval,
		},
	}
}

// SetInterval overrides the poll interval for a feed. Safe to call while
// delivery loops are running; a loop already polling keeps its ticker and
// picks the new value up on its next fallback or activation.
func (s *Selector) SetInterval(feed string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intervals[feed] = d
}

func (s *Selector) interval(feed string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.intervals[feed]; ok {
		return d
	}
	return time.Second
}

// Activate claims the feed and starts its delivery loop, stopping any
// previous holder first. The returned generation token is required to
// deactivate; a stale token cannot act.
func (s *Selector) Activate(feed string) uint64 {
	gen := s.reg.Activate(feed)
	ctx, cancel := context.WithCancel(context.Background())
	if !s.reg.Bind(feed, gen, cancel) {
		// Raced with a newer activation between Activate and Bind.
		cancel()
		return gen
	}
	go s.run(ctx, feed, gen)
	return gen
}

// Deactivate stops the holder identified by gen. Safe to call repeatedly.
func (s *Selector) Deactivate(feed string, gen uint64) bool {
	return s.reg.Release(feed, gen)
}

func (s *Selector) run(ctx context.Context, feed string, gen uint64) {
	down := make(chan error, 1)
	closeCh, err := s.tr.OpenChannel(ctx, feed, func(e error) {
		select {
		case down <- e:
		default:
		}
	})
	if err == nil {
		// Channel mode: by construction no poll timer exists for this
		// generation, satisfying the no-duplicate-requests guarantee.
		defer closeCh()
		select {
		case <-ctx.Done():
			return
		case err := <-down:
			if s.log != nil {
				s.log.Printf("feed %s channel down, polling: %v", feed, err)
			}
		}
	} else if s.log != nil {
		s.log.Printf("feed %s channel open failed, polling: %v", feed, err)
	}

	ticker := time.NewTicker(s.interval(feed))
	defer ticker.Stop()
	// Immediate first tick so the view is not blank for a full interval.
	s.pollOnce(ctx, feed, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx, feed, gen)
		}
	}
}

func (s *Selector) pollOnce(ctx context.Context, feed string, gen uint64) {
	if !s.reg.Alive(feed, gen) {
		return
	}
	if !s.lc.ShouldDeliver() {
		return
	}
	if err := s.tr.Poll(ctx, feed); err != nil && s.log != nil {
		// Last known snapshot stays until a later tick succeeds.
		s.log.Printf("feed %s poll: %v", feed, err)
	}
}

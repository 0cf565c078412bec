package extrasync

import (
	"sync"
	"time"
)

// Notice is one transient user-visible notification.
type Notice struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Notifier receives transient notices emitted by mutations and
// reconciliation.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// DefaultNoticeTTL is how long a posted notice stays visible unless replaced.
const DefaultNoticeTTL = 5 * time.Second

// Board holds the single currently-visible notice. A posted notice
// auto-dismisses after the TTL unless a newer notice replaced it first;
// expiry of a superseded notice is a no-op.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notice
	seq     uint64
}

// NewBoard creates a Board with the given TTL, or DefaultNoticeTTL when
// ttl is zero.
func NewBoard(ttl time.Duration) *Board {
	if ttl == 0 {
		ttl = DefaultNoticeTTL
	}
	return &Board{ttl: ttl}
}

// Notify implements Notifier by posting the notice.
func (b *Board) Notify(n Notice) { b.Post(n) }

// Post replaces the visible notice and returns the sequence token the caller
// passes back to Expire when the TTL elapses.
func (b *Board) Post(n Notice) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.current = &n
	return b.seq
}

// Expire clears the notice identified by seq. Stale tokens from replaced
// notices do nothing.
func (b *Board) Expire(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seq == seq {
		b.current = nil
	}
}

// TTL returns the board's auto-dismiss duration.
func (b *Board) TTL() time.Duration { return b.ttl }

// Current returns the visible notice, or nil.
func (b *Board) Current() *Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	n := *b.current
	return &n
}

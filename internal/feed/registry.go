// Package feed owns channel-versus-polling delivery for the logical feeds a
// view consumes. At most one delivery mode is active per feed; teardown is
// idempotent and race-free across rapid activate/deactivate cycles.
package feed

import "sync"

// Registry is the process-wide table of feed handles. Each feed carries a
// generation counter and the stop function of the current holder; only the
// holder matching the current generation may act, so a stale handle from a
// previous rapid mount/unmount cannot outlive a newer activation.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	generation uint64
	stop       func()
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Activate claims the feed for a new holder: any previous holder is stopped
// synchronously and the new generation token is returned.
func (r *Registry) Activate(feed string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[feed]
	if e == nil {
		e = &registryEntry{}
		r.entries[feed] = e
	}
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.generation++
	return e.generation
}

// Bind registers the stop function for the holder identified by gen. It
// reports false, without storing anything, when the generation is stale.
func (r *Registry) Bind(feed string, gen uint64, stop func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[feed]
	if e == nil || e.generation != gen {
		return false
	}
	e.stop = stop
	return true
}

// Release stops and invalidates the holder identified by gen. Stale tokens
// are no-ops, which makes teardown idempotent.
func (r *Registry) Release(feed string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[feed]
	if e == nil || e.generation != gen {
		return false
	}
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.generation++
	return true
}

// Alive reports whether gen is still the current holder of the feed. Runners
// check this at every resumption point before touching shared state.
func (r *Registry) Alive(feed string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[feed]
	return e != nil && e.generation == gen
}

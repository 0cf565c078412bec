package feed

import "sync"

// Lifecycle gates delivery on view activity and host visibility. Polling
// only runs while the consuming view is active and the host is visible;
// transitions fire the onChange hook so the app can refresh immediately on
// resume instead of waiting out a poll interval.
type Lifecycle struct {
	mu       sync.Mutex
	active   bool
	visible  bool
	onChange func(deliver bool)
}

// NewLifecycle creates a Lifecycle that starts inactive and visible. The
// onChange hook may be nil.
func NewLifecycle(onChange func(deliver bool)) *Lifecycle {
	return &Lifecycle{visible: true, onChange: onChange}
}

// SetActive records whether the consuming view is mounted and on screen.
func (l *Lifecycle) SetActive(active bool) {
	l.set(&l.active, active)
}

// SetVisible records whether the host itself is visible (e.g. terminal
// focus).
func (l *Lifecycle) SetVisible(visible bool) {
	l.set(&l.visible, visible)
}

func (l *Lifecycle) set(field *bool, v bool) {
	l.mu.Lock()
	before := l.active && l.visible
	*field = v
	after := l.active && l.visible
	hook := l.onChange
	l.mu.Unlock()
	if hook != nil && before != after {
		hook(after)
	}
}

// ShouldDeliver reports whether snapshots may be fetched and applied now.
func (l *Lifecycle) ShouldDeliver() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active && l.visible
}

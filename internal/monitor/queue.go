package monitor

import (
	"context"
	"log"
	"sync"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// QueueAPI is the slice of the daemon client the queue monitor needs.
type QueueAPI interface {
	QueueList(ctx context.Context) (*common.QueueListResult, error)
}

// QueueMonitor tracks the currently queued, running and finished background
// jobs, fed by listing snapshots and by push status updates.
type QueueMonitor struct {
	mu    sync.Mutex
	items []extrasync.QueueItem
	api   QueueAPI
	log   *log.Logger
}

// NewQueueMonitor creates a QueueMonitor. The logger may be nil.
func NewQueueMonitor(api QueueAPI, l *log.Logger) *QueueMonitor {
	return &QueueMonitor{api: api, log: l}
}

// Apply replaces the queue listing with an authoritative snapshot.
// Duplicate composite keys within one snapshot collapse to the later entry.
func (m *QueueMonitor) Apply(items []extrasync.QueueItem) {
	next := make([]extrasync.QueueItem, 0, len(items))
	seen := make(map[extrasync.QueueKey]int, len(items))
	for i := range items {
		item := items[i]
		item.Status = extrasync.ParseQueueStatus(string(item.Status))
		if at, dup := seen[item.Key()]; dup {
			next[at] = item
			continue
		}
		seen[item.Key()] = len(next)
		next = append(next, item)
	}
	m.mu.Lock()
	m.items = next
	m.mu.Unlock()
}

// ApplyStatusUpdates merges push status updates into the listing by external
// id. Jobs absent from the update keep their state; unknown wire statuses
// render distinctly rather than being mis-rendered.
func (m *QueueMonitor) ApplyStatusUpdates(updates []extrasync.StatusUpdate) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return extrasync.MergeSnapshot(m.items, updates,
		func(q *extrasync.QueueItem) string { return q.ExternalId },
		func(u *extrasync.StatusUpdate) string { return u.ExternalId },
		func(q *extrasync.QueueItem, u *extrasync.StatusUpdate) bool {
			next := extrasync.ParseQueueStatus(u.Status)
			if q.Status == next {
				return false
			}
			q.Status = next
			return true
		})
}

// Items returns a copy of the queue listing in snapshot order.
func (m *QueueMonitor) Items() []extrasync.QueueItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]extrasync.QueueItem(nil), m.items...)
}

// Refresh fetches and applies a listing snapshot.
func (m *QueueMonitor) Refresh(ctx context.Context) error {
	res, err := m.api.QueueList(ctx)
	if err != nil {
		return err
	}
	m.Apply(res.Items)
	return nil
}

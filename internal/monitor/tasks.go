// Package monitor holds the view-facing state holders: the scheduled-task
// monitor, the queue monitor, and the extras controller that routes
// optimistic mutations. Each holder is mutex-serialized so snapshots land in
// arrival order; the view renders whatever was last committed.
package monitor

import (
	"context"
	"log"
	"sync"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// TaskAPI is the slice of the daemon client the task monitor needs.
type TaskAPI interface {
	TaskList(ctx context.Context) (*common.TaskListResult, error)
	ForceExecute(ctx context.Context, taskId string) error
}

// TaskMonitor tracks the named recurring maintenance tasks. Snapshots are
// full replacements; there is no partial task state.
type TaskMonitor struct {
	mu    sync.Mutex
	tasks []extrasync.ScheduledTask
	api   TaskAPI
	log   *log.Logger
}

// NewTaskMonitor creates a TaskMonitor. The logger may be nil.
func NewTaskMonitor(api TaskAPI, l *log.Logger) *TaskMonitor {
	return &TaskMonitor{api: api, log: l}
}

// Apply replaces the task list with an authoritative snapshot. Wire statuses
// outside the closed set become the explicit unknown variant.
func (m *TaskMonitor) Apply(tasks []extrasync.ScheduledTask) {
	next := append([]extrasync.ScheduledTask(nil), tasks...)
	for i := range next {
		next[i].Status = extrasync.ParseTaskStatus(string(next[i].Status))
	}
	m.mu.Lock()
	m.tasks = next
	m.mu.Unlock()
}

// Tasks returns a copy of the current task list.
func (m *TaskMonitor) Tasks() []extrasync.ScheduledTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]extrasync.ScheduledTask(nil), m.tasks...)
}

// Refresh fetches and applies a full snapshot. Unlike poll ticks it is not
// gated by the lifecycle, so action-triggered refreshes always land.
func (m *TaskMonitor) Refresh(ctx context.Context) error {
	res, err := m.api.TaskList(ctx)
	if err != nil {
		return err
	}
	m.Apply(res.Tasks)
	return nil
}

// ForceExecute sends a one-shot, non-blocking execution request by task id.
// On completion, success or failure, a full non-suppressing refresh runs.
// The returned channel delivers the request error once.
func (m *TaskMonitor) ForceExecute(ctx context.Context, taskId string) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := m.api.ForceExecute(ctx, taskId)
		if rerr := m.Refresh(ctx); rerr != nil && m.log != nil {
			m.log.Printf("task refresh after force-execute: %v", rerr)
		}
		done <- err
	}()
	return done
}

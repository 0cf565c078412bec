package daemon

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// TaskWork is the body of one maintenance task.
type TaskWork func(ctx context.Context) error

// TaskSet owns the daemon's recurring maintenance tasks: their metadata,
// their work functions and their execution. Every state change is pushed to
// the tasks feed as a full snapshot.
type TaskSet struct {
	mu       sync.Mutex
	tasks    []extrasync.ScheduledTask
	work     map[string]TaskWork
	store    *Store
	notifier *FeedNotifier
	log      *log.Logger
}

// NewTaskSet creates an empty TaskSet. The store may be nil.
func NewTaskSet(store *Store, notifier *FeedNotifier, l *log.Logger) *TaskSet {
	return &TaskSet{
		work:     make(map[string]TaskWork),
		store:    store,
		notifier: notifier,
		log:      l,
	}
}

// Register adds a task and its work function. Last-run fields are restored
// from the store when available.
func (t *TaskSet) Register(task extrasync.ScheduledTask, work TaskWork) {
	if task.Status == "" {
		task.Status = extrasync.TaskIdle
	}
	if t.store != nil {
		if startedAt, durMs, err := t.store.LastTaskRun(context.Background(), task.Id); err != nil {
			t.log.Printf("restore task %s history: %v", task.Id, err)
		} else if !startedAt.IsZero() {
			task.LastExecution = startedAt
			task.LastDurationMs = durMs
		}
	}
	task.NextExecution = nextExecution(task, time.Now())

	t.mu.Lock()
	t.tasks = append(t.tasks, task)
	t.work[task.Id] = work
	t.mu.Unlock()
}

// Snapshot returns the current task listing.
func (t *TaskSet) Snapshot() []extrasync.ScheduledTask {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]extrasync.ScheduledTask(nil), t.tasks...)
}

// Events returns the schedule events for all enabled tasks, for seeding the
// scheduler at startup.
func (t *TaskSet) Events() []taskEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var events []taskEvent
	for i := range t.tasks {
		task := t.tasks[i]
		if task.Disabled() {
			continue
		}
		events = append(events, taskEvent{
			TaskId:          task.Id,
			TriggerAt:       task.NextExecution,
			IntervalSeconds: task.IntervalSeconds,
			CronExpr:        task.CronExpr,
		})
	}
	return events
}

// Run executes one task now. Concurrent runs of the same task collapse: a
// task already running is left alone.
func (t *TaskSet) Run(ctx context.Context, taskId string) error {
	t.mu.Lock()
	idx := -1
	for i := range t.tasks {
		if t.tasks[i].Id == taskId {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return extrasync.ErrNotFound
	}
	if t.tasks[idx].Status == extrasync.TaskRunning {
		t.mu.Unlock()
		return nil
	}
	t.tasks[idx].Status = extrasync.TaskRunning
	work := t.work[taskId]
	t.mu.Unlock()

	t.broadcast()

	started := time.Now()
	var runErr error
	if work != nil {
		runErr = work(ctx)
	}
	ended := time.Now()
	durMs := ended.Sub(started).Milliseconds()

	status := extrasync.TaskSuccess
	if runErr != nil {
		status = extrasync.TaskFailed
		t.log.Printf("task %s failed: %v", taskId, runErr)
	}

	t.mu.Lock()
	t.tasks[idx].Status = status
	t.tasks[idx].LastExecution = started
	t.tasks[idx].LastDurationMs = durMs
	t.tasks[idx].NextExecution = nextExecution(t.tasks[idx], ended)
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.RecordTaskRun(ctx, taskId, started, durMs, status); err != nil {
			t.log.Printf("record task run %s: %v", taskId, err)
		}
	}
	t.broadcast()
	return runErr
}

func (t *TaskSet) broadcast() {
	if t.notifier == nil {
		return
	}
	t.notifier.Broadcast(common.FEED_TASKS, common.UPDATE_TASKS, &common.TaskListResult{Tasks: t.Snapshot()})
}

// nextExecution computes when a task fires next. Disabled tasks get the
// zero time, which renders as absent.
func nextExecution(task extrasync.ScheduledTask, after time.Time) time.Time {
	if task.IntervalSeconds > 0 {
		return after.Add(time.Duration(task.IntervalSeconds) * time.Second)
	}
	if task.CronExpr != "" {
		next, err := gronx.NextTickAfter(task.CronExpr, after, false)
		if err != nil {
			return time.Time{}
		}
		return next
	}
	return time.Time{}
}

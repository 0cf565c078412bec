package daemon

import (
	"container/heap"
	"context"
	"time"

	"github.com/adhocore/gronx"
)

// The run loop never sleeps longer than this, so wall-clock jumps are
// picked up within a minute.
const maxSleepCap = 60 * time.Second

// taskEvent is one pending task execution in the scheduler heap. Recurring
// events re-add themselves after firing: by interval when IntervalSeconds is
// set, by cron expression otherwise.
type taskEvent struct {
	TaskId          string
	TriggerAt       time.Time
	IntervalSeconds int64
	CronExpr        string
}

type eventHeap []taskEvent

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(taskEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Scheduler fires scheduled task executions using a min-heap and a single
// background goroutine.
type Scheduler struct {
	addChan    chan taskEvent
	removeChan chan string
	ctx        context.Context
}

// NewScheduler creates and starts a Scheduler. onTrigger is invoked with the
// task id when an event fires; the goroutine exits when ctx is cancelled.
func NewScheduler(ctx context.Context, onTrigger func(string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan taskEvent, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues a schedule event.
func (s *Scheduler) Add(event taskEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove cancels all pending events for a task id.
func (s *Scheduler) Remove(taskId string) {
	select {
	case s.removeChan <- taskId:
	case <-s.ctx.Done():
	}
}

func (s *Scheduler) run(onTrigger func(string)) {
	h := &eventHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No events, block on the channels alone.
			return nil
		}
		dur := time.Until((*h)[0].TriggerAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heap.Push(h, event)
			timerCh = resetTimer()

		case taskId := <-s.removeChan:
			removeByTask(h, taskId)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heap.Pop(h).(taskEvent)
				onTrigger(event.TaskId)
				if next, ok := nextOccurrence(event, time.Now()); ok {
					event.TriggerAt = next
					heap.Push(h, event)
				}
			}
			timerCh = resetTimer()
		}
	}
}

func removeByTask(h *eventHeap, taskId string) {
	for i := 0; i < h.Len(); {
		if (*h)[i].TaskId == taskId {
			heap.Remove(h, i)
			continue
		}
		i++
	}
}

// nextOccurrence computes when a recurring event fires again. One-shot
// events (no interval, no cron) return false.
func nextOccurrence(event taskEvent, after time.Time) (time.Time, bool) {
	if event.IntervalSeconds > 0 {
		return after.Add(time.Duration(event.IntervalSeconds) * time.Second), true
	}
	if event.CronExpr != "" {
		next, err := gronx.NextTickAfter(event.CronExpr, after, false)
		if err != nil {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}

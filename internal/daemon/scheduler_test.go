package daemon

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_FiresDueEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 1)
	s := NewScheduler(ctx, func(taskId string) { fired <- taskId })

	s.Add(taskEvent{TaskId: "t1", TriggerAt: time.Now().Add(20 * time.Millisecond)})

	select {
	case id := <-fired:
		if id != "t1" {
			t.Fatalf("expected t1, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never fired")
	}
}

func TestScheduler_RemoveCancelsEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 1)
	s := NewScheduler(ctx, func(taskId string) { fired <- taskId })

	s.Add(taskEvent{TaskId: "t1", TriggerAt: time.Now().Add(150 * time.Millisecond)})
	s.Remove("t1")

	select {
	case id := <-fired:
		t.Fatalf("removed event fired: %s", id)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestScheduler_OneShotDoesNotRecur(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 4)
	s := NewScheduler(ctx, func(taskId string) { fired <- taskId })
	s.Add(taskEvent{TaskId: "t1", TriggerAt: time.Now()})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("event never fired")
	}
	select {
	case <-fired:
		t.Fatal("one-shot event fired twice")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNextOccurrence(t *testing.T) {
	after := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	next, ok := nextOccurrence(taskEvent{IntervalSeconds: 90}, after)
	if !ok || !next.Equal(after.Add(90*time.Second)) {
		t.Fatalf("interval recurrence wrong: %v ok=%v", next, ok)
	}

	next, ok = nextOccurrence(taskEvent{CronExpr: "0 3 * * *"}, after)
	if !ok {
		t.Fatal("cron recurrence must resolve")
	}
	if next.Hour() != 3 || !next.After(after) {
		t.Fatalf("unexpected cron occurrence: %v", next)
	}

	if _, ok := nextOccurrence(taskEvent{}, after); ok {
		t.Fatal("one-shot event must not recur")
	}

	if _, ok := nextOccurrence(taskEvent{CronExpr: "not a cron"}, after); ok {
		t.Fatal("invalid cron must not recur")
	}
}

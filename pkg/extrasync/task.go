package extrasync

import (
	"time"
)

// ScheduledTask is one named recurring maintenance task as reported by the
// daemon. An IntervalSeconds of zero means the task is disabled.
type ScheduledTask struct {
	Id              string     `json:"id"`
	Name            string     `json:"name"`
	IntervalSeconds int64      `json:"interval_seconds"`
	CronExpr        string     `json:"cron_expr,omitempty"`
	Status          TaskStatus `json:"status"`
	LastExecution   time.Time  `json:"last_execution"`
	LastDurationMs  int64      `json:"last_duration_ms"`
	NextExecution   time.Time  `json:"next_execution"`
}

// Disabled reports whether the task is switched off. Disabled tasks render a
// terminal "Disabled" interval and are excluded from countdown math.
func (t *ScheduledTask) Disabled() bool {
	return t.IntervalSeconds == 0 && t.CronExpr == ""
}

// IntervalDisplay renders the task interval column.
func (t *ScheduledTask) IntervalDisplay() string {
	if t.Disabled() {
		return "Disabled"
	}
	if t.CronExpr != "" {
		return t.CronExpr
	}
	return FormatDuration(time.Duration(t.IntervalSeconds)*time.Second, Cut)
}

// NextExecutionDisplay renders the next-run countdown column relative to now.
func (t *ScheduledTask) NextExecutionDisplay(now time.Time) string {
	if t.Disabled() {
		return AbsentTimeDisplay
	}
	return Countdown(t.NextExecution, now)
}

// LastExecutionDisplay renders the last-run column as a relative time.
func (t *ScheduledTask) LastExecutionDisplay() string {
	return TimeAgo(t.LastExecution)
}

// LastDurationDisplay renders how long the previous run took.
func (t *ScheduledTask) LastDurationDisplay() string {
	if t.LastDurationMs <= 0 {
		return AbsentTimeDisplay
	}
	return FormatDuration(time.Duration(t.LastDurationMs)*time.Millisecond, Cut)
}

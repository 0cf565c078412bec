package extrasync

// TaskStatus is the lifecycle state of a recurring maintenance task.
type TaskStatus string

const (
	TaskIdle    TaskStatus = "idle"
	TaskRunning TaskStatus = "running"
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
	// TaskUnknown is assigned to any wire value outside the closed set.
	TaskUnknown TaskStatus = "unknown"
)

var taskStatuses = map[TaskStatus]struct{}{
	TaskIdle:    {},
	TaskRunning: {},
	TaskSuccess: {},
	TaskFailed:  {},
}

// ParseTaskStatus maps a wire string onto the closed TaskStatus set.
// Unrecognized values become TaskUnknown, never a silently mis-rendered state.
func ParseTaskStatus(s string) TaskStatus {
	if _, ok := taskStatuses[TaskStatus(s)]; ok {
		return TaskStatus(s)
	}
	return TaskUnknown
}

// QueueStatus is the lifecycle state of a queued background job.
type QueueStatus string

const (
	QueueQueued  QueueStatus = "queued"
	QueueRunning QueueStatus = "running"
	QueueSuccess QueueStatus = "success"
	QueueFailed  QueueStatus = "failed"
	QueueUnknown QueueStatus = "unknown"
)

var queueStatuses = map[QueueStatus]struct{}{
	QueueQueued:  {},
	QueueRunning: {},
	QueueSuccess: {},
	QueueFailed:  {},
}

// ParseQueueStatus maps a wire string onto the closed QueueStatus set.
func ParseQueueStatus(s string) QueueStatus {
	if _, ok := queueStatuses[QueueStatus(s)]; ok {
		return QueueStatus(s)
	}
	return QueueUnknown
}

// Glyph returns the single-rune marker rendered next to a queue item.
func (s QueueStatus) Glyph() string {
	switch s {
	case QueueQueued:
		return "⧖"
	case QueueRunning:
		return "●"
	case QueueSuccess:
		return "✔"
	case QueueFailed:
		return "✘"
	default:
		return "?"
	}
}

// ExtraStatus is the lifecycle state of a per-item media-extra download job.
type ExtraStatus string

const (
	ExtraNone        ExtraStatus = "none"
	ExtraQueued      ExtraStatus = "queued"
	ExtraDownloading ExtraStatus = "downloading"
	ExtraDownloaded  ExtraStatus = "downloaded"
	ExtraFailed      ExtraStatus = "failed"
	ExtraRejected    ExtraStatus = "rejected"
	ExtraExists      ExtraStatus = "exists"
	ExtraDeleting    ExtraStatus = "deleting"
	ExtraMissing     ExtraStatus = "missing"
	ExtraUnknown     ExtraStatus = "unknown"
)

var extraStatuses = map[ExtraStatus]struct{}{
	ExtraNone:        {},
	ExtraQueued:      {},
	ExtraDownloading: {},
	ExtraDownloaded:  {},
	ExtraFailed:      {},
	ExtraRejected:    {},
	ExtraExists:      {},
	ExtraDeleting:    {},
	ExtraMissing:     {},
}

// ParseExtraStatus maps a wire string onto the closed ExtraStatus set.
func ParseExtraStatus(s string) ExtraStatus {
	if _, ok := extraStatuses[ExtraStatus(s)]; ok {
		return ExtraStatus(s)
	}
	return ExtraUnknown
}

// IsFailure reports whether the status is a terminal failure state.
func (s ExtraStatus) IsFailure() bool {
	return s == ExtraFailed || s == ExtraRejected
}

// BlocksDownload reports whether a download action is a no-op for this status.
func (s ExtraStatus) BlocksDownload() bool {
	switch s {
	case ExtraDownloaded, ExtraDownloading, ExtraExists:
		return true
	}
	return false
}

// extraTransitions is the set of locally-initiated transitions. Snapshot
// reconciliation may apply any server-reported status, including regressions;
// this table only constrains optimistic mutations.
var extraTransitions = map[ExtraStatus][]ExtraStatus{
	ExtraNone:        {ExtraQueued, ExtraDeleting},
	ExtraQueued:      {ExtraDeleting},
	ExtraFailed:      {ExtraQueued, ExtraDeleting},
	ExtraRejected:    {ExtraQueued, ExtraDeleting},
	ExtraMissing:     {ExtraQueued},
	ExtraDownloaded:  {ExtraDeleting},
	ExtraDownloading: {},
	ExtraExists:      {ExtraDeleting},
	ExtraDeleting:    {ExtraMissing},
	ExtraUnknown:     {ExtraQueued, ExtraDeleting},
}

// CanTransition reports whether an optimistic mutation may move from s to next.
func (s ExtraStatus) CanTransition(next ExtraStatus) bool {
	for _, t := range extraTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Glyph returns the single-rune marker rendered next to an extra.
func (s ExtraStatus) Glyph() string {
	switch s {
	case ExtraNone, ExtraMissing:
		return "·"
	case ExtraQueued:
		return "⧖"
	case ExtraDownloading, ExtraDeleting:
		return "●"
	case ExtraDownloaded, ExtraExists:
		return "✔"
	case ExtraFailed, ExtraRejected:
		return "✘"
	default:
		return "?"
	}
}

package extrasync

import (
	"encoding/json"
	"time"
)

// QueueItem is one entry of the background job queue listing.
// Duration arrives in whichever shape the reporting side produced: a
// fractional-seconds number, a duration string, or raw nanoseconds.
type QueueItem struct {
	JobId       string          `json:"job_id"`
	DisplayName string          `json:"display_name"`
	// ExternalId links the job to the external video it downloads, matching
	// the externalId of push status updates. Maintenance jobs leave it empty.
	ExternalId  string          `json:"external_id,omitempty"`
	Status      QueueStatus     `json:"status"`
	QueuedAt    time.Time       `json:"queued_at"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     time.Time       `json:"ended_at"`
	Duration    json.RawMessage `json:"duration,omitempty"`
}

// QueueKey identifies a queue entry across snapshots. Items re-run under the
// same job id differ in their timestamps, so the key is the composite of all
// four fields; missing timestamps contribute their zero value.
type QueueKey struct {
	JobId     string
	QueuedAt  time.Time
	StartedAt time.Time
	EndedAt   time.Time
}

// Key returns the composite snapshot key of the item.
func (q *QueueItem) Key() QueueKey {
	return QueueKey{
		JobId:     q.JobId,
		QueuedAt:  q.QueuedAt,
		StartedAt: q.StartedAt,
		EndedAt:   q.EndedAt,
	}
}

// DurationDisplay renders the item duration. Elapsed time truncates rather
// than rounding up, so a job never appears to have run longer than it did.
func (q *QueueItem) DurationDisplay() string {
	d, ok := NormalizeDuration(q.Duration)
	if !ok {
		return AbsentTimeDisplay
	}
	return FormatDuration(d, Cut)
}

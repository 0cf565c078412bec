package common

import "github.com/extrarr/extrarr/pkg/extrasync"

// TaskListResult is the full scheduled-task snapshot, returned by task.list
// and pushed as task.update; it replaces prior task state entirely.
type TaskListResult struct {
	Tasks []extrasync.ScheduledTask `json:"tasks"`
}

// ForceExecuteParams is the input for task.force, a one-shot fire-and-forget
// execution request by task id.
type ForceExecuteParams struct {
	TaskId string `json:"task_id"`
}

// QueueListResult is the queue listing snapshot.
type QueueListResult struct {
	Items []extrasync.QueueItem `json:"items"`
}

// MediaRef identifies the media item owning a set of extras.
type MediaRef struct {
	MediaType string `json:"media_type"`
	MediaId   int64  `json:"media_id"`
}

// ExtrasListParams is the input for extras.list.
type ExtrasListParams struct {
	MediaRef
	// Blacklist selects the blacklist-shaped listing instead of the
	// media-extras-shaped one.
	Blacklist bool `json:"blacklist,omitempty"`
}

// ExtrasListResult is the per-media extras listing.
type ExtrasListResult struct {
	Extras []extrasync.ExtraRecord `json:"extras"`
}

// ExtraActionParams carries the full composite identity of one extra job,
// used by extras.download, extras.delete and extras.unban.
type ExtraActionParams struct {
	MediaRef
	ExtraType  string `json:"extra_type,omitempty"`
	ExtraTitle string `json:"extra_title,omitempty"`
	VideoId    string `json:"video_id"`
}

// Key returns the composite key of the addressed job.
func (p *ExtraActionParams) Key() extrasync.ExtraKey {
	return extrasync.ExtraKey{
		MediaType:  p.MediaType,
		MediaId:    p.MediaId,
		ExtraType:  p.ExtraType,
		ExtraTitle: p.ExtraTitle,
		VideoId:    p.VideoId,
	}
}

// SearchParams is the input for extras.search. Results stream back as
// individual search.result notifications until search.done.
type SearchParams struct {
	MediaRef
	Query string `json:"query"`
}

// FeedSubscribeParams selects which push feed a channel connection receives.
type FeedSubscribeParams struct {
	Feed string `json:"feed"`
}

// QueueUpdateEvent is the queue.update push payload.
type QueueUpdateEvent struct {
	Type  string                   `json:"type"`
	Queue []extrasync.StatusUpdate `json:"queue"`
}

// SearchResultEvent is one incremental search.result record.
type SearchResultEvent struct {
	Record extrasync.ExtraRecord `json:"record"`
}

// SearchDoneEvent terminates a search stream.
type SearchDoneEvent struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

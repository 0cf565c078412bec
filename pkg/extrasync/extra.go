package extrasync

import (
	"fmt"
	"time"
)

// ExtraKey is the composite identity of one media-extra download job.
// It uniquely identifies an ExtraRecord within its owning list.
type ExtraKey struct {
	MediaType  string
	MediaId    int64
	ExtraType  string
	ExtraTitle string
	VideoId    string
}

func (k ExtraKey) String() string {
	return fmt.Sprintf("%s/%d/%s/%s/%s", k.MediaType, k.MediaId, k.ExtraType, k.ExtraTitle, k.VideoId)
}

// ExtraRecord is one media-extra entry: either a backend-confirmed job, a
// not-yet-confirmed manual search result, or a blacklist entry. The shape is
// distinguished by which optional fields are populated.
type ExtraRecord struct {
	MediaType  string      `json:"media_type"`
	MediaId    int64       `json:"media_id"`
	ExtraType  string      `json:"extra_type,omitempty"`
	ExtraTitle string      `json:"extra_title,omitempty"`
	VideoId    string      `json:"video_id"`
	Status     ExtraStatus `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	Thumb      string      `json:"thumb,omitempty"`
	// BannedAt is only set on blacklist-shaped records.
	BannedAt time.Time `json:"banned_at,omitempty"`
	// Confirmed marks records the backend has acknowledged, as opposed to
	// manual search results awaiting confirmation.
	Confirmed bool `json:"confirmed,omitempty"`
}

// Key returns the composite identity of the record.
func (e *ExtraRecord) Key() ExtraKey {
	return ExtraKey{
		MediaType:  e.MediaType,
		MediaId:    e.MediaId,
		ExtraType:  e.ExtraType,
		ExtraTitle: e.ExtraTitle,
		VideoId:    e.VideoId,
	}
}

// BlacklistShaped reports whether the record came from a blacklist view.
// Removing a ban deletes blacklist-shaped entries outright, while
// extras-shaped entries only have their status fields cleared.
func (e *ExtraRecord) BlacklistShaped() bool {
	return !e.BannedAt.IsZero()
}

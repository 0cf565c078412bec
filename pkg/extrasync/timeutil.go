package extrasync

import (
	"time"

	"github.com/dustin/go-humanize"
)

// AbsentTimeDisplay is rendered wherever a timestamp is unset.
const AbsentTimeDisplay = "—"

// IsAbsentTime reports whether t is the sentinel zero-time. Any timestamp
// whose year equals the runtime zero-date year ("0001-01-01T00:00:00Z")
// counts as absent and must never be parsed as a real instant.
func IsAbsentTime(t time.Time) bool {
	return t.IsZero() || t.Year() == 1
}

// TimeAgo renders t as a humanized relative time, or AbsentTimeDisplay when
// t is the sentinel zero-time.
func TimeAgo(t time.Time) string {
	if IsAbsentTime(t) {
		return AbsentTimeDisplay
	}
	return humanize.Time(t)
}

// Countdown renders the time remaining until t, rounded up so a live
// countdown never reads zero early. Sentinel and elapsed instants render
// as AbsentTimeDisplay and "now" respectively.
func Countdown(t time.Time, now time.Time) string {
	if IsAbsentTime(t) {
		return AbsentTimeDisplay
	}
	left := t.Sub(now)
	if left <= 0 {
		return "now"
	}
	return FormatDuration(left, Ceil)
}

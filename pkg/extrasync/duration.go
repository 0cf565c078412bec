package extrasync

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Rounding selects how a duration value is rounded before display.
type Rounding int

const (
	// Ceil rounds up and is the default, used for countdowns so a timer
	// never reads zero while time remains.
	Ceil Rounding = iota
	// Cut truncates toward zero, used for elapsed time.
	Cut
	// Round rounds half away from zero.
	Round
)

// nsHeuristicFloor is the magnitude above which a bare integer duration is
// assumed to be nanoseconds rather than seconds.
const nsHeuristicFloor = 1e6

// NormalizeDuration converts a raw wire duration into a time.Duration.
// Accepted shapes: a fractional-seconds number, a Go duration string
// (e.g. "1m30s"), or a large integer assumed to be nanoseconds when its
// magnitude exceeds 1e6. The second return is false when the value is
// absent or unparseable.
func NormalizeDuration(raw json.RawMessage) (time.Duration, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return 0, false
		}
		return d, true
	}
	// Integer magnitudes above the heuristic floor are nanosecond counts.
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if math.Abs(float64(i)) > nsHeuristicFloor {
			return time.Duration(i), true
		}
		return time.Duration(i) * time.Second, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(f * float64(time.Second)), true
}

// unit is one display unit for FormatDuration.
type unit struct {
	span     time.Duration
	singular string
}

var displayUnits = []unit{
	{24 * time.Hour, "day"},
	{time.Hour, "hour"},
	{time.Minute, "minute"},
	{time.Second, "second"},
}

// FormatDuration renders d using the largest nonzero unit among day, hour,
// minute and second, applying the given rounding to the unit count.
// Sub-second durations render in milliseconds with two decimals.
func FormatDuration(d time.Duration, r Rounding) string {
	if d < 0 {
		d = -d
	}
	for _, u := range displayUnits {
		if d < u.span {
			continue
		}
		n := applyRounding(float64(d)/float64(u.span), r)
		// The raw duration picks the unit, so Ceil at a boundary renders
		// the full count ("24 hours"), never carrying into the next unit.
		return formatCount(n, u.singular)
	}
	ms := float64(d) / float64(time.Millisecond)
	return fmt.Sprintf("%.2f ms", ms)
}

func applyRounding(v float64, r Rounding) int64 {
	switch r {
	case Cut:
		return int64(v)
	case Round:
		return int64(math.Round(v))
	default:
		return int64(math.Ceil(v))
	}
}

func formatCount(n int64, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

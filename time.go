package epicmix

import (
	"fmt"
	"time"
)

// DateLayout is the layout expected by [Client.LiftHistory].
const DateLayout = "2006-01-02T00:00:00"

// localLayout is the zone-less layout some endpoints use for UTC timestamps.
const localLayout = "2006-01-02T15:04:05"

// ParseTimestamp parses a timestamp returned by the EpicMix API.
// Timestamps without a zone are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(localLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}

	return t, nil
}

// FormatDate formats the calendar day of t for [Client.LiftHistory].
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

package timecalc

import (
	"fmt"
	"time"
)

// entryIDLayout is sortable and safe to use as a directory name.
const entryIDLayout = "20060102T150405.000000000Z"

// Now returns the current instant in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// EntryID formats an entry timestamp as its storage identifier, e.g.
// "20260227T083210.123456789Z".
func EntryID(t time.Time) string {
	return t.UTC().Format(entryIDLayout)
}

// FormatStamp formats an entry timestamp for documents and terminal output.
func FormatStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatISO formats t as the ISO-8601 string stored in records.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseISO parses a record timestamp. Timestamps written without a zone
// suffix (for example Python's isoformat of a naive UTC time) are read as UTC.
func ParseISO(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

// FormatElapsed formats a duration like "1h 2m 3s", "2m 3s" or "3s".
func FormatElapsed(d time.Duration) string {
	seconds := int64(d.Seconds())
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

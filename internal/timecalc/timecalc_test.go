package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/labb/internal/timecalc"
)

func TestEntryID(t *testing.T) {
	ts := time.Date(2026, 2, 27, 8, 32, 10, 123456789, time.FixedZone("CET", 3600))
	id := timecalc.EntryID(ts)
	if id != "20260227T073210.123456789Z" {
		t.Errorf("EntryID = %q, want %q", id, "20260227T073210.123456789Z")
	}
}

func TestEntryIDSortsChronologically(t *testing.T) {
	a := time.Date(2026, 2, 27, 8, 32, 10, 5, time.UTC)
	b := a.Add(time.Nanosecond)
	if timecalc.EntryID(a) >= timecalc.EntryID(b) {
		t.Errorf("EntryID(%v) should sort before EntryID(%v)", a, b)
	}
}

func TestEntryIDConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 2, 27, 9, 0, 0, 0, loc)
	if got := timecalc.EntryID(ts); got != "20260227T080000.000000000Z" {
		t.Errorf("EntryID = %q", got)
	}
}

func TestParseISO(t *testing.T) {
	want := time.Date(2026, 2, 27, 8, 32, 10, 500000000, time.UTC)
	tests := []string{
		"2026-02-27T08:32:10.5Z",
		"2026-02-27T09:32:10.5+01:00",
		"2026-02-27T08:32:10.500000",
	}
	for _, in := range tests {
		got, err := timecalc.ParseISO(in)
		if err != nil {
			t.Errorf("ParseISO(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseISO(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := timecalc.ParseISO("yesterday"); err == nil {
		t.Error("ParseISO(\"yesterday\") should fail")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3600, "1h 0m 0s"},
		{3661, "1h 1m 1s"},
	}
	for _, tt := range tests {
		got := timecalc.FormatElapsed(time.Duration(tt.seconds) * time.Second)
		if got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatStamp(t *testing.T) {
	ts := time.Date(2026, 2, 27, 8, 32, 10, 999, time.UTC)
	if got := timecalc.FormatStamp(ts); got != "2026-02-27 08:32:10 UTC" {
		t.Errorf("FormatStamp = %q", got)
	}
}

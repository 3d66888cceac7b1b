package timeutil

import (
	"testing"
	"time"
)

func TestParseTimestamp_OffsetLessValuesAreUTC(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("2025-05-01T08:00:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseTimestamp_KeepsOffset(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("2025-05-01T08:00:00+05:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.UTC().Hour() != 2 || got.UTC().Minute() != 30 {
		t.Fatalf("unexpected utc time: %v", got.UTC())
	}
}

func TestParseTimestamp_EmptyAndInvalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "null", "  "} {
		got, err := ParseTimestamp(raw)
		if err != nil || got != nil {
			t.Fatalf("expected nil for %q, got %v err %v", raw, got, err)
		}
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error for invalid timestamp")
	}
}

func TestClock(t *testing.T) {
	t.Parallel()

	if got := Clock(nil, time.UTC); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	value := time.Date(2025, 5, 1, 8, 5, 0, 0, time.UTC)
	if got := Clock(&value, time.UTC); got != "08:05" {
		t.Fatalf("expected 08:05, got %q", got)
	}
	zone := time.FixedZone("IST", 5*3600+1800)
	if got := Clock(&value, zone); got != "13:35" {
		t.Fatalf("expected 13:35, got %q", got)
	}
}

package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is shown wherever a time value is absent.
const Placeholder = "-"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses API timestamps. Values without an offset are taken as
// UTC. Empty and null values return nil without error.
func ParseTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("parse timestamp %q: unsupported format", raw)
}

// Clock formats value as HH:MM in loc, or Placeholder when value is nil.
func Clock(value *time.Time, loc *time.Location) string {
	if value == nil {
		return Placeholder
	}
	if loc == nil {
		loc = time.UTC
	}
	return value.In(loc).Format("15:04")
}

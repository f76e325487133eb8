package models

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted when reading timestamps. Values without a zone are UTC.
// Fractional seconds are optional in every layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses RFC 3339 as well as zone-less ISO 8601 values such
// as "2024-05-01T10:00:00.123456". An empty string is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseTimestampPtr(s *string) (time.Time, error) {
	if s == nil {
		return time.Time{}, nil
	}
	return ParseTimestamp(*s)
}

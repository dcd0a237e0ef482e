package dq

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing raw timestamp cells.
// The generator and most source systems emit "2006-01-02 15:04:05+00:00";
// the rest cover common ISO variants.
var timestampLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp attempts to parse a raw cell value as a timestamp.
// An empty or whitespace-only value does not parse.
func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

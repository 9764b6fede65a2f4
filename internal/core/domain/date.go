package domain

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when a published date has to be interpreted.
// UK returns are day-first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-2006",
	"2006/01/02",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
}

// ParseDate interprets a published date string.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Year extracts a four digit year from a published date.
// Dates that parse with a known layout win; otherwise the slash and dash
// heuristics accept day-first and year-first forms.
func Year(date string) (string, bool) {
	if t, ok := ParseDate(date); ok {
		return t.Format("2006"), true
	}

	date = strings.TrimSpace(date)
	switch {
	case strings.Contains(date, "/"):
		parts := strings.Split(date, "/")
		if len(parts) == 3 {
			if isYear(parts[2]) {
				return parts[2], true
			}
			if isYear(parts[0]) {
				return parts[0], true
			}
		}
	case strings.Contains(date, "-") && len(date) >= 4:
		if isYear(date[:4]) {
			return date[:4], true
		}
	}
	return "", false
}

// DateSortKey returns an ISO date usable for newest-first ordering.
// Unparsable dates sort last.
func DateSortKey(date string) string {
	if t, ok := ParseDate(date); ok {
		return t.Format("2006-01-02")
	}
	return UndatedSortKey
}

// UndatedSortKey is the sort key of an unparsable date.
const UndatedSortKey = "0000-00-00"

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

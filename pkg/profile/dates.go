package profile

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01",
	"01/2006",
	"1/2006",
	"01.2006",
	"Jan 2006",
	"January 2006",
	"Jan. 2006",
	"Jan, 2006",
	"January, 2006",
	"2006",
	time.RFC3339,
}

var ongoingMarkers = map[string]struct{}{
	"present": {},
	"current": {},
	"now":     {},
	"ongoing": {},
	"today":   {},
	"null":    {},
}

// IsOngoing reports whether an end date string means "still there".
func IsOngoing(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	_, ok := ongoingMarkers[s]
	return ok
}

// ParseDate parses the loose date strings resumes contain. Missing day or
// month resolve to the first of the period. Unparseable input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || IsOngoing(s) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// Dates resolves the record's start/end strings. A blank or "Present" end
// date is stored as NULL and marks the experience as current.
func (r ExperienceRecord) Dates() (start, end *time.Time, current bool) {
	start = ParseDate(r.StartDate)
	if IsOngoing(r.EndDate) {
		return start, nil, true
	}
	return start, ParseDate(r.EndDate), false
}

package weather

import (
	"strings"
	"time"
)

const (
	sunEventLayout  = "03:04 PM"
	localTimeLayout = "2006-01-02 15:04"
)

// ParseLocalTime parses the location's "local now" as reported by the API,
// e.g. "2024-01-10 5:00", in the given zone (UTC when nil).
func ParseLocalTime(localNow string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(localTimeLayout, strings.TrimSpace(localNow), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ResolveSunEvent turns a 12-hour "hh:mm AM" event time into an absolute
// timestamp on the date of localNow. The zero time is returned when either
// input cannot be parsed.
func ResolveSunEvent(event, localNow string, loc *time.Location) time.Time {
	event = strings.TrimSpace(event)
	if event == "" {
		return time.Time{}
	}
	clock, err := time.Parse(sunEventLayout, event)
	if err != nil {
		return time.Time{}
	}

	now, ok := ParseLocalTime(localNow, loc)
	if !ok {
		return time.Time{}
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())

	// Both markers roll over the same way. Whether PM events were meant to be
	// handled differently is unknown, so the branches are kept separate.
	if candidate.Before(now) && strings.HasSuffix(strings.ToUpper(event), "AM") {
		candidate = candidate.AddDate(0, 0, 1)
	} else if candidate.Before(now) && strings.HasSuffix(strings.ToUpper(event), "PM") {
		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate
}

package hours

import (
	"fmt"
	"regexp"
	"time"
)

var spanPattern = regexp.MustCompile(`^([0-2]\d):([0-5]\d)-([0-2]\d):([0-5]\d)$`)

// Window is an optional same-day business-hours span in a fixed timezone.
// The zero value (no span configured) means the business is always open.
type Window struct {
	start    int // minutes since midnight
	end      int
	location *time.Location
	enabled  bool
}

// New parses a "HH:MM-HH:MM" span in the given IANA timezone. An empty span
// disables the feature; a malformed span or unknown timezone is an error so
// a typo does not silently disable after-hours routing.
func New(span, timezone string) (Window, error) {
	if span == "" {
		return Window{}, nil
	}
	m := spanPattern.FindStringSubmatch(span)
	if m == nil {
		return Window{}, fmt.Errorf("invalid business hours span %q", span)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Window{
		start:    atoi2(m[1])*60 + atoi2(m[2]),
		end:      atoi2(m[3])*60 + atoi2(m[4]),
		location: loc,
		enabled:  true,
	}, nil
}

// ClosedAt reports whether the business is closed at the given instant.
// Supports same-day spans only (09:00-17:00).
func (w Window) ClosedAt(t time.Time) bool {
	if !w.enabled {
		return false
	}
	local := t.In(w.location)
	mins := local.Hour()*60 + local.Minute()
	return !(mins >= w.start && mins <= w.end)
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

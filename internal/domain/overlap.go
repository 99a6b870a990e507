package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// minutesOfDay parses "HH:MM" (seconds tolerated and ignored) into minutes
// since midnight.
func minutesOfDay(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// TimesOverlap is the half-open interval test: strict inequality means
// back-to-back slots (one ending 18:00, the next starting 18:00) do not
// conflict. Unparseable times never overlap.
func TimesOverlap(start1, end1, start2, end2 string) bool {
	s1, err := minutesOfDay(start1)
	if err != nil {
		return false
	}
	e1, err := minutesOfDay(end1)
	if err != nil {
		return false
	}
	s2, err := minutesOfDay(start2)
	if err != nil {
		return false
	}
	e2, err := minutesOfDay(end2)
	if err != nil {
		return false
	}
	return s1 < e2 && s2 < e1
}

// FilterConflicting narrows prefetched candidates to those whose time range
// overlaps the probe window, dropping the excluded event if given. The
// candidates are expected to already be date-filtered and planned.
func FilterConflicting(candidates []*Event, timeStart, timeEnd string, excludeEventID *int64) []*Event {
	out := make([]*Event, 0, len(candidates))
	for _, ev := range candidates {
		if excludeEventID != nil && ev.ID == *excludeEventID {
			continue
		}
		if !ev.InConflictPool() {
			continue
		}
		if TimesOverlap(timeStart, timeEnd, ev.TimeStart, ev.TimeEnd) {
			out = append(out, ev)
		}
	}
	return out
}

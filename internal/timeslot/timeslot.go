// Package timeslot holds the clock-string arithmetic shared by the scenario
// generator and the availability oracle. Times are "HH:MM" in 24-hour form
// and are converted to a linear minute-of-day count for comparisons.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Minutes converts "HH:MM" to a minute-of-day count in [0, 1440).
func Minutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: bad hour", clock)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: bad minute", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", clock)
	}
	return hour*60 + minute, nil
}

// Clock is the inverse of Minutes. Values outside one day wrap modulo 1440,
// so adding past midnight stays total.
func Clock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts a clock string forward (or back, for negative delta),
// wrapping modulo one day.
func AddMinutes(clock string, delta int) (string, error) {
	m, err := Minutes(clock)
	if err != nil {
		return "", err
	}
	return Clock(m + delta), nil
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// share at least one instant.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// Span returns the [start, end) minute interval of a booking that begins at
// the given clock time and runs for the given number of minutes. End is kept
// linear (it may exceed 1440) so same-day overlap checks stay monotonic.
func Span(clock string, duration int) (int, int, error) {
	start, err := Minutes(clock)
	if err != nil {
		return 0, 0, err
	}
	return start, start + duration, nil
}

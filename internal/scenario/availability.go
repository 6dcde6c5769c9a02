package scenario

import (
	"tablelab/internal/models"
	"tablelab/internal/timeslot"
)

// IsAvailable reports whether a table is free for a full service starting at
// the given clock time. It is pure: the verdict depends only on its inputs.
// A table with no bookings, or a table id absent from the booking set, is
// available. The only error condition is a malformed time string, which is a
// caller contract violation.
func IsAvailable(tableID int, clock string, bookings []models.BookingSlot) (bool, error) {
	candStart, candEnd, err := timeslot.Span(clock, models.ServiceDurationMinutes)
	if err != nil {
		return false, err
	}

	for _, b := range bookings {
		if b.TableID != tableID {
			continue
		}
		start, end, err := bookingSpan(b)
		if err != nil {
			return false, err
		}
		if timeslot.Overlaps(candStart, candEnd, start, end) {
			return false, nil
		}
	}
	return true, nil
}

// bookingSpan converts a stored slot to linear minutes. An end at or before
// the start means the interval wrapped past midnight; unwrap it so half-open
// comparisons stay monotonic.
func bookingSpan(b models.BookingSlot) (int, int, error) {
	start, err := timeslot.Minutes(b.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeslot.Minutes(b.End)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		end += 24 * 60
	}
	return start, end, nil
}

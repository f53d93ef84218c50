// README: Ride counting for one-time and recurring bookings.
package schedule

import "time"

const week = 7 * 24 * time.Hour

// CountRides returns how many rides a booking consumes. A recurring booking
// runs every selected day for each started week of its date range.
func CountRides(b Booking) int {
	switch b.Type {
	case BookingOneTime:
		return len(b.Routes)
	case BookingRecurring:
		if b.StartDate == nil || b.EndDate == nil {
			return 0
		}
		return len(b.Days) * weeksBetween(*b.StartDate, *b.EndDate) * len(b.Routes)
	default:
		return 0
	}
}

// weeksBetween is ceil((end-start) / 7 days), never negative.
func weeksBetween(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	n := int(d / week)
	if d%week != 0 {
		n++
	}
	return n
}

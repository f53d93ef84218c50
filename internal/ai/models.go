package ai

import (
	"strings"

	"ridepass/internal/modules/schedule"
)

const (
	IntentBooking       = "booking"
	IntentClarification = "clarification"
	IntentChat          = "chat"
)

// Hints is the per-request context injected into the prompt.
type Hints struct {
	CurrentTime string
	Locations   []string
}

// BookingIntent is the structured output of the model.
type BookingIntent struct {
	// Intent is "booking" only when pickup, drop-off and time are all known.
	Intent string `json:"intent"`

	// RideType is "one-time" or "recurring".
	RideType string `json:"ride_type"`

	PickupName  string `json:"pickup_name,omitempty"`
	DropoffName string `json:"dropoff_name,omitempty"`

	// PickupTime uses the picker format, e.g. "오전 7:30".
	PickupTime string `json:"pickup_time,omitempty"`

	// Date is YYYY-MM-DD for one-time rides.
	Date string `json:"date,omitempty"`

	// Days holds Korean weekday letters for recurring rides.
	Days []string `json:"days,omitempty"`

	Reply string `json:"reply"`
}

// Normalize coerces model output into values the booking form accepts. A
// booking intent whose time cannot be read is downgraded to clarification.
func (b *BookingIntent) Normalize() {
	b.PickupName = strings.TrimSpace(b.PickupName)
	b.DropoffName = strings.TrimSpace(b.DropoffName)

	switch schedule.BookingType(b.RideType) {
	case schedule.BookingOneTime, schedule.BookingRecurring:
	default:
		if len(b.Days) > 0 {
			b.RideType = string(schedule.BookingRecurring)
		} else {
			b.RideType = string(schedule.BookingOneTime)
		}
	}

	days := b.Days[:0]
	seen := map[string]bool{}
	for _, d := range b.Days {
		d = strings.TrimSpace(d)
		if schedule.Weekday(d).Valid() && !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	b.Days = days

	if b.PickupTime != "" {
		if c, err := schedule.ParseClock(b.PickupTime); err == nil {
			b.PickupTime = c.String()
		} else {
			b.PickupTime = ""
		}
	}

	if b.Intent == IntentBooking && (b.PickupName == "" || b.DropoffName == "" || b.PickupTime == "") {
		b.Intent = IntentClarification
	}
	if b.Intent != IntentBooking && b.Intent != IntentClarification {
		b.Intent = IntentChat
	}
}

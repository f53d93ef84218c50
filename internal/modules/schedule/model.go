// README: Booking aggregate, route legs and recurring-day definitions.
package schedule

import (
	"time"

	"ridepass/internal/modules/pricing"
	"ridepass/internal/types"
)

type BookingType string

const (
	BookingOneTime   BookingType = "one-time"
	BookingRecurring BookingType = "recurring"
)

type Status string

const (
	StatusNone           Status = "none"
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
)

// Weekday uses the single-character Korean day names shown in the picker.
type Weekday string

var weekdays = map[Weekday]time.Weekday{
	"월": time.Monday,
	"화": time.Tuesday,
	"수": time.Wednesday,
	"목": time.Thursday,
	"금": time.Friday,
	"토": time.Saturday,
	"일": time.Sunday,
}

// DefaultDays is the weekday selection a new recurring booking starts with.
var DefaultDays = []Weekday{"월", "화", "수", "목", "금"}

func (d Weekday) Valid() bool {
	_, ok := weekdays[d]
	return ok
}

// Route is one pickup to drop-off leg. Addresses are optional and only feed
// the travel estimate; names are what the user picked.
type Route struct {
	Name           string `json:"name"`
	Pickup         string `json:"pickup"`
	Dropoff        string `json:"dropoff"`
	PickupAddress  string `json:"pickup_address,omitempty"`
	DropoffAddress string `json:"dropoff_address,omitempty"`
	PickupTime     string `json:"pickup_time"`
	DropoffTime    string `json:"dropoff_time"`
}

func (r Route) Window() RouteTimeWindow {
	return RouteTimeWindow{Pickup: r.PickupTime, Dropoff: r.DropoffTime}
}

type Booking struct {
	ID            types.ID
	UserID        types.ID
	Type          BookingType
	Date          *time.Time
	StartDate     *time.Time
	EndDate       *time.Time
	Days          []Weekday
	Routes        []Route
	RideCount     int
	Quote         pricing.Quote
	Status        Status
	StatusVersion int
	CreatedAt     time.Time
}

// Draft is an in-progress booking form kept between page visits.
type Draft struct {
	Type      BookingType `json:"ride_type"`
	Date      string      `json:"selected_date,omitempty"`
	StartDate string      `json:"start_date,omitempty"`
	EndDate   string      `json:"end_date,omitempty"`
	Days      []Weekday   `json:"selected_days"`
	Routes    []Route     `json:"routes"`
	SavedAt   time.Time   `json:"saved_at"`
}

// AllowedTransitions represents the booking state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

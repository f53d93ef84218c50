// README: Booking planner; turns an assistant intent into a prefilled booking draft.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ridepass/internal/ai"
	"ridepass/internal/modules/location"
	"ridepass/internal/modules/schedule"
	"ridepass/internal/types"
	"ridepass/internal/utils"
)

const dateLayout = "2006-01-02"

// seoul is fixed so planning does not depend on the host's tz database.
var seoul = time.FixedZone("KST", 9*60*60)

// LocationLister is the slice of the location service the planner needs.
type LocationLister interface {
	List(ctx context.Context, userID types.ID) ([]location.Location, error)
}

// RouteFiller derives a drop-off time for a route; *schedule.Service is one.
type RouteFiller interface {
	FillDropoff(ctx context.Context, r schedule.Route) schedule.Route
}

// Plan is the assistant's answer: the parsed intent and, for a complete
// booking intent, a draft the booking form can open with.
type Plan struct {
	Intent *ai.BookingIntent `json:"intent"`
	Draft  *schedule.Draft   `json:"draft,omitempty"`
}

// BookingPlanner orchestrates intent parsing, saved-place resolution and
// drop-off derivation.
type BookingPlanner struct {
	parser    ai.IntentParser
	locations LocationLister
	routes    RouteFiller
	now       func() time.Time
}

func NewBookingPlanner(parser ai.IntentParser, locations LocationLister, routes RouteFiller) *BookingPlanner {
	return &BookingPlanner{parser: parser, locations: locations, routes: routes, now: time.Now}
}

// Plan parses message for userID. Saved place names are passed to the model
// as hints and resolved back to addresses for the travel estimate.
func (p *BookingPlanner) Plan(ctx context.Context, userID types.ID, message string) (*Plan, error) {
	now := p.now().In(seoul)

	var saved []location.Location
	if p.locations != nil {
		locs, err := p.locations.List(ctx, userID)
		if err != nil {
			utils.LogEvent("planner", "locations", "uid=%s err=%v", userID, err)
		}
		saved = locs
	}

	hints := ai.Hints{CurrentTime: now.Format("2006-01-02 15:04 Monday")}
	for _, l := range saved {
		hints.Locations = append(hints.Locations, l.Name)
	}

	intent, err := p.parser.ParseBookingIntent(ctx, message, hints)
	if err != nil {
		return nil, fmt.Errorf("parse intent: %w", err)
	}
	intent.Normalize()

	if intent.Intent != ai.IntentBooking {
		return &Plan{Intent: intent}, nil
	}

	// A one-time date already in the past is dropped so the form asks again.
	if intent.RideType == string(schedule.BookingOneTime) && intent.Date != "" {
		d, err := time.ParseInLocation(dateLayout, intent.Date, seoul)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, seoul)
		if err != nil || d.Before(today) {
			intent.Date = ""
		}
	}

	route := schedule.Route{
		Name:           "경로 1",
		Pickup:         intent.PickupName,
		Dropoff:        intent.DropoffName,
		PickupAddress:  addressOf(saved, intent.PickupName),
		DropoffAddress: addressOf(saved, intent.DropoffName),
		PickupTime:     intent.PickupTime,
	}
	if p.routes != nil {
		route = p.routes.FillDropoff(ctx, route)
	} else {
		route.DropoffTime = schedule.DefaultDropoffTime(route.PickupTime)
	}

	draft := &schedule.Draft{
		Type:   schedule.BookingType(intent.RideType),
		Routes: []schedule.Route{route},
	}
	if draft.Type == schedule.BookingRecurring {
		for _, d := range intent.Days {
			draft.Days = append(draft.Days, schedule.Weekday(d))
		}
		if len(draft.Days) == 0 {
			draft.Days = append([]schedule.Weekday(nil), schedule.DefaultDays...)
		}
	} else {
		draft.Date = intent.Date
	}

	utils.LogEvent("planner", "plan", "uid=%s type=%s pickup=%q dropoff=%q time=%s",
		userID, draft.Type, route.Pickup, route.Dropoff, route.PickupTime)
	return &Plan{Intent: intent, Draft: draft}, nil
}

// addressOf finds a saved place by name, ignoring case and surrounding space.
func addressOf(saved []location.Location, name string) string {
	name = strings.TrimSpace(name)
	for _, l := range saved {
		if strings.EqualFold(strings.TrimSpace(l.Name), name) {
			return l.Address
		}
	}
	return ""
}

// README: Pickup/drop-off time-window validation and drop-off derivation.
package schedule

import (
	"errors"
	"fmt"
)

// MaxWindowMinutes is the longest allowed pickup to drop-off gap.
const MaxWindowMinutes = 60

var (
	ErrMalformedTime     = errors.New("malformed time of day")
	ErrNonPositiveWindow = errors.New("drop-off must be after pickup")
	ErrWindowTooLong     = errors.New("drop-off must be within 60 minutes of pickup")
)

// RouteTimeWindow is the pickup to drop-off interval of one route leg.
type RouteTimeWindow struct {
	Pickup  string `json:"pickup_time"`
	Dropoff string `json:"dropoff_time"`
}

// Valid reports the fail-open check; see IsTimeWindowValid.
func (w RouteTimeWindow) Valid() bool {
	return IsTimeWindowValid(w.Pickup, w.Dropoff)
}

// Validate is the strict check; see ValidateTimeWindow.
func (w RouteTimeWindow) Validate() error {
	return ValidateTimeWindow(w.Pickup, w.Dropoff)
}

// IsTimeWindowValid reports whether 0 < dropoff-pickup <= 60 minutes.
// Empty or unparsable times are treated as valid; callers that must not
// accept malformed input use ValidateTimeWindow.
func IsTimeWindowValid(pickup, dropoff string) bool {
	p, err := ParseClock(pickup)
	if err != nil {
		return true
	}
	d, err := ParseClock(dropoff)
	if err != nil {
		return true
	}
	return checkGap(p, d) == nil
}

// ValidateTimeWindow is the fail-closed variant used when a booking is
// submitted.
func ValidateTimeWindow(pickup, dropoff string) error {
	p, err := ParseClock(pickup)
	if err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	d, err := ParseClock(dropoff)
	if err != nil {
		return fmt.Errorf("dropoff: %w", err)
	}
	return checkGap(p, d)
}

func checkGap(pickup, dropoff Clock) error {
	diff := dropoff.MinuteOfDay() - pickup.MinuteOfDay()
	switch {
	case diff <= 0:
		return ErrNonPositiveWindow
	case diff > MaxWindowMinutes:
		return ErrWindowTooLong
	}
	return nil
}

// DeriveDropoffTime adds a travel duration (floored to whole minutes) to a
// pickup time. It returns "" when the pickup time cannot be parsed.
func DeriveDropoffTime(pickup string, durationSeconds int) string {
	p, err := ParseClock(pickup)
	if err != nil {
		return ""
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return p.AddMinutes(durationSeconds / 60).String()
}

// DefaultDropoffTime is pickup + 1h, used when no travel estimate exists.
func DefaultDropoffTime(pickup string) string {
	return DeriveDropoffTime(pickup, MaxWindowMinutes*60)
}

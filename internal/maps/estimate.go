// README: Travel estimates between two addresses (placeholder and Google-backed).
package maps

import (
	"context"
	"unicode/utf8"

	"ridepass/internal/utils"
)

const (
	minDistanceMeters = 3000
	maxDistanceMeters = 15000
	// 40 km/h expressed in metres per second.
	averageSpeedMPS = 11.11
)

// Estimate is a driving distance and duration.
type Estimate struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

// Estimator returns a travel estimate between two addresses.
type Estimator interface {
	Estimate(ctx context.Context, origin, destination string) (Estimate, error)
}

// PlaceholderEstimator derives a distance from the address lengths only. It
// stands in for a routing service and never fails.
type PlaceholderEstimator struct{}

func (PlaceholderEstimator) Estimate(_ context.Context, origin, destination string) (Estimate, error) {
	combined := utf8.RuneCountInString(origin) + utf8.RuneCountInString(destination)
	distance := minDistanceMeters + combined*100
	if distance < minDistanceMeters {
		distance = minDistanceMeters
	}
	if distance > maxDistanceMeters {
		distance = maxDistanceMeters
	}
	return Estimate{
		DistanceMeters:  distance,
		DurationSeconds: int(float64(distance) / averageSpeedMPS),
	}, nil
}

// FallbackEstimator asks Primary first and uses Secondary when it fails.
type FallbackEstimator struct {
	Primary   Estimator
	Secondary Estimator
}

func (f FallbackEstimator) Estimate(ctx context.Context, origin, destination string) (Estimate, error) {
	if f.Primary != nil {
		est, err := f.Primary.Estimate(ctx, origin, destination)
		if err == nil {
			return est, nil
		}
		utils.LogEvent("maps", "estimate", "primary failed, using fallback: %v", err)
	}
	return f.Secondary.Estimate(ctx, origin, destination)
}

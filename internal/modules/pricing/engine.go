// README: Greedy ticket-bundle decomposition and quote arithmetic.
package pricing

import (
	"errors"
	"fmt"
)

// MaxRides bounds a single quote. With bundle prices capped at MaxBundlePrice
// every total stays far inside int64.
const MaxRides = 10_000

var (
	ErrInvalidRideCount = fmt.Errorf("requested rides must be between 1 and %d", MaxRides)
	ErrInvalidCatalog   = errors.New("invalid ticket catalog")
)

// ComputeQuote covers requestedRides with bundles from the catalog.
//
// Packs are taken greedily by base rides, largest first; bonus rides never
// change how many packs are bought. The remainder is bought as single rides
// unless the packs' bonus rides already cover all of it.
func ComputeQuote(requestedRides int, catalog Catalog) (Quote, error) {
	if requestedRides <= 0 || requestedRides > MaxRides {
		return Quote{}, ErrInvalidRideCount
	}
	single, ok := catalog.Single()
	if !ok {
		return Quote{}, ErrInvalidCatalog
	}

	q := Quote{RequestedRides: requestedRides, Currency: catalog.Currency}
	remaining := requestedRides
	bonus := 0
	for _, b := range catalog.packs {
		n := remaining / b.BaseRides
		if n == 0 {
			continue
		}
		remaining %= b.BaseRides
		bonus += n * b.BonusRides
		q.add(b, n)
	}
	if remaining > bonus {
		q.add(single, remaining)
	}

	if q.GrantedRides > 0 {
		q.PricePerRide = roundDiv(q.TotalPrice, int64(q.GrantedRides))
	}
	if d := int64(requestedRides)*single.Price - q.TotalPrice; d > 0 {
		q.DiscountAmount = d
	}
	return q, nil
}

func (q *Quote) add(b TicketBundle, n int) {
	sub := int64(n) * b.Price
	q.Selection = append(q.Selection, Selection{
		Kind:       b.Kind,
		Label:      b.Label(),
		Count:      n,
		BaseRides:  b.BaseRides,
		BonusRides: b.BonusRides,
		UnitPrice:  b.Price,
		Subtotal:   sub,
	})
	q.TotalPrice += sub
	q.GrantedRides += n * b.GrantedRides()
}

// roundDiv rounds a/b half away from zero for non-negative a and positive b.
func roundDiv(a, b int64) int64 {
	return (2*a + b) / (2 * b)
}

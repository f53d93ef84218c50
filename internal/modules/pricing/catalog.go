// README: Ticket catalog defaults and normalisation of upstream catalog payloads.
package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	defaultSinglePrice = 18000
)

// DefaultCatalog is the built-in price table used when no catalog is
// configured or the configured one cannot be loaded.
func DefaultCatalog() Catalog {
	c, err := NewCatalog("KRW",
		TicketBundle{Kind: KindSingle, BaseRides: 1, BonusRides: 0, Price: defaultSinglePrice},
		TicketBundle{Kind: KindTenPack, BaseRides: 10, BonusRides: 1, Price: 10 * defaultSinglePrice},
		TicketBundle{Kind: KindThirtyPack, BaseRides: 30, BonusRides: 4, Price: 30 * defaultSinglePrice},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// catalogEntry is the wire shape of one upstream ticket product. Prices are
// quoted per ride, so a bundle costs ticket_price * ticket_count.
type catalogEntry struct {
	TicketCount      *int   `json:"ticket_count"`
	BonusTicketCount *int   `json:"bonus_ticket_count"`
	TicketPrice      *int64 `json:"ticket_price"`
}

type catalogEnvelope struct {
	Tickets []catalogEntry `json:"tickets"`
}

// DecodeCatalog normalises an upstream catalog payload. The upstream has
// returned a bare array, a single object, and an object wrapping a
// "tickets" array; all three are accepted. Anything else is rejected.
func DecodeCatalog(raw []byte, currency string) (Catalog, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Catalog{}, fmt.Errorf("%w: empty payload", ErrInvalidCatalog)
	}

	var entries []catalogEntry
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &entries); err != nil {
			return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	case '{':
		var env catalogEnvelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Tickets != nil {
			entries = env.Tickets
			break
		}
		var one catalogEntry
		if err := json.Unmarshal(raw, &one); err != nil {
			return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		entries = []catalogEntry{one}
	default:
		return Catalog{}, fmt.Errorf("%w: unexpected payload shape", ErrInvalidCatalog)
	}

	bundles := make([]TicketBundle, 0, len(entries))
	for i, e := range entries {
		if e.TicketCount == nil || e.TicketPrice == nil {
			return Catalog{}, fmt.Errorf("%w: entry %d missing ticket_count or ticket_price", ErrInvalidCatalog, i)
		}
		if n := int64(*e.TicketCount); n > 0 && *e.TicketPrice > MaxBundlePrice/n {
			return Catalog{}, fmt.Errorf("%w: entry %d price too large", ErrInvalidCatalog, i)
		}
		bonus := 0
		if e.BonusTicketCount != nil {
			bonus = *e.BonusTicketCount
		}
		bundles = append(bundles, TicketBundle{
			Kind:       KindFor(*e.TicketCount),
			BaseRides:  *e.TicketCount,
			BonusRides: bonus,
			Price:      *e.TicketPrice * int64(*e.TicketCount),
		})
	}
	return NewCatalog(currency, bundles...)
}

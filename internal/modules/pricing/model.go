// README: Ticket bundle catalog and quote value objects.
package pricing

import (
	"fmt"
	"sort"
	"strings"

	"ridepass/internal/types"
)

type Kind string

const (
	KindSingle     Kind = "single"
	KindTenPack    Kind = "ten-pack"
	KindThirtyPack Kind = "thirty-pack"
)

// KindFor names a bundle by its base ride count.
func KindFor(baseRides int) Kind {
	switch baseRides {
	case 1:
		return KindSingle
	case 10:
		return KindTenPack
	case 30:
		return KindThirtyPack
	default:
		return Kind(fmt.Sprintf("%d-pack", baseRides))
	}
}

// TicketBundle is a purchasable unit: BaseRides + BonusRides rides for Price.
type TicketBundle struct {
	Kind       Kind  `json:"kind"`
	BaseRides  int   `json:"base_rides"`
	BonusRides int   `json:"bonus_rides"`
	Price      int64 `json:"price"`
}

func (b TicketBundle) GrantedRides() int {
	return b.BaseRides + b.BonusRides
}

// PerRidePrice is the price of one base ride, rounded half up.
func (b TicketBundle) PerRidePrice() int64 {
	if b.BaseRides <= 0 {
		return 0
	}
	return roundDiv(b.Price, int64(b.BaseRides))
}

// MaxBundlePrice caps a bundle price in minor units.
const MaxBundlePrice int64 = 1_000_000_000_000

// Label is the display name used on receipts and summaries ("10회권").
func (b TicketBundle) Label() string {
	return fmt.Sprintf("%d회권", b.BaseRides)
}

func (b TicketBundle) validate() error {
	if b.BaseRides <= 0 || b.BaseRides > MaxRides || b.BonusRides < 0 || b.BonusRides > MaxRides ||
		b.Price <= 0 || b.Price > MaxBundlePrice {
		return fmt.Errorf("%w: bundle %q (base=%d bonus=%d price=%d)",
			ErrInvalidCatalog, b.Kind, b.BaseRides, b.BonusRides, b.Price)
	}
	return nil
}

// Catalog is an immutable, validated set of bundles. Packs are kept in
// decomposition order: largest base first, then cheaper per granted ride,
// then larger bonus.
type Catalog struct {
	Currency  string
	single    TicketBundle
	packs     []TicketBundle
	hasSingle bool
}

func NewCatalog(currency string, bundles ...TicketBundle) (Catalog, error) {
	if currency == "" {
		currency = types.DefaultCurrency
	}
	c := Catalog{Currency: currency}
	seen := make(map[Kind]bool, len(bundles))
	for _, b := range bundles {
		if b.Kind == "" {
			b.Kind = KindFor(b.BaseRides)
		}
		if err := b.validate(); err != nil {
			return Catalog{}, err
		}
		if seen[b.Kind] {
			return Catalog{}, fmt.Errorf("%w: duplicate bundle %q", ErrInvalidCatalog, b.Kind)
		}
		seen[b.Kind] = true
		if b.BaseRides == 1 {
			if c.hasSingle {
				return Catalog{}, fmt.Errorf("%w: more than one single-ride bundle", ErrInvalidCatalog)
			}
			c.single = b
			c.hasSingle = true
			continue
		}
		c.packs = append(c.packs, b)
	}
	if !c.hasSingle {
		return Catalog{}, fmt.Errorf("%w: single-ride bundle is required", ErrInvalidCatalog)
	}
	sort.SliceStable(c.packs, func(i, j int) bool {
		a, b := c.packs[i], c.packs[j]
		if a.BaseRides != b.BaseRides {
			return a.BaseRides > b.BaseRides
		}
		// a.Price/a.Granted < b.Price/b.Granted without floats
		lhs := a.Price * int64(b.GrantedRides())
		rhs := b.Price * int64(a.GrantedRides())
		if lhs != rhs {
			return lhs < rhs
		}
		return a.BonusRides > b.BonusRides
	})
	return c, nil
}

// Single returns the single-ride bundle.
func (c Catalog) Single() (TicketBundle, bool) {
	return c.single, c.hasSingle
}

// Bundles lists every bundle, largest first and the single ride last.
func (c Catalog) Bundles() []TicketBundle {
	out := make([]TicketBundle, 0, len(c.packs)+1)
	out = append(out, c.packs...)
	if c.hasSingle {
		out = append(out, c.single)
	}
	return out
}

// Selection is one line of a quote: Count bundles of one kind.
type Selection struct {
	Kind       Kind   `json:"kind"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	BaseRides  int    `json:"base_rides"`
	BonusRides int    `json:"bonus_rides"`
	UnitPrice  int64  `json:"unit_price"`
	Subtotal   int64  `json:"subtotal"`
}

// Quote is the cheapest covering bundle combination for a requested ride
// volume under the greedy policy. It is built fresh per request.
type Quote struct {
	RequestedRides int         `json:"requested_rides"`
	Selection      []Selection `json:"bundle_selection"`
	TotalPrice     int64       `json:"total_price"`
	GrantedRides   int         `json:"granted_rides"`
	PricePerRide   int64       `json:"price_per_ride"`
	DiscountAmount int64       `json:"discount_amount"`
	Currency       string      `json:"currency"`
}

func (q Quote) Total() types.Money {
	return types.Money{Amount: q.TotalPrice, Currency: q.Currency}
}

// Count returns how many bundles of kind k the quote selects.
func (q Quote) Count(k Kind) int {
	for _, s := range q.Selection {
		if s.Kind == k {
			return s.Count
		}
	}
	return 0
}

// Summary renders the selection the way the checkout screen shows it,
// e.g. "10회권 x 2개 + 1회권 x 5개".
func (q Quote) Summary() string {
	parts := make([]string, 0, len(q.Selection))
	for _, s := range q.Selection {
		parts = append(parts, fmt.Sprintf("%s x %d개", s.Label, s.Count))
	}
	return strings.Join(parts, " + ")
}

// README: Ticket purchases and the per-user ride wallet.
package ticket

import (
	"fmt"
	"math/rand/v2"
	"time"

	"ridepass/internal/modules/pricing"
	"ridepass/internal/types"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Purchase is one checkout of a quote. BookingID is set when the purchase
// pays for a submitted booking rather than a plain recharge.
type Purchase struct {
	ID         types.ID      `json:"id"`
	OrderID    string        `json:"order_id"`
	UserID     types.ID      `json:"-"`
	BookingID  *types.ID     `json:"booking_id,omitempty"`
	Rides      int           `json:"rides"`
	Quote      pricing.Quote `json:"quote"`
	Amount     types.Money   `json:"amount"`
	Status     Status        `json:"status"`
	PaymentKey string        `json:"payment_key,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
}

// Wallet is the number of rides a user can still book.
type Wallet struct {
	UserID    types.ID  `json:"-"`
	Rides     int       `json:"rides"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrderID builds "RIDE-<unix ms>-<0..999>" for booking payments and
// "TICKET-..." for plain recharges.
func NewOrderID(now time.Time, forBooking bool) string {
	prefix := "TICKET"
	if forBooking {
		prefix = "RIDE"
	}
	return fmt.Sprintf("%s-%d-%d", prefix, now.UnixMilli(), rand.IntN(1000))
}

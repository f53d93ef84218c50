// README: Payment gateway abstraction and the simulated gateway used in dev.
package ticket

import (
	"context"

	"ridepass/internal/types"
)

// Gateway approves a payment and returns the provider's payment key.
type Gateway interface {
	Approve(ctx context.Context, orderID string, amount types.Money) (string, error)
}

const simulatedPaymentKey = "SIMULATED_PAYMENT_KEY"

// SimulatedGateway approves every positive amount.
type SimulatedGateway struct{}

func (SimulatedGateway) Approve(ctx context.Context, orderID string, amount types.Money) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if orderID == "" || amount.Amount <= 0 {
		return "", ErrPaymentDeclined
	}
	return simulatedPaymentKey, nil
}

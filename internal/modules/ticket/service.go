// README: Ticket service runs checkout, payment confirmation and the wallet.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/schedule"
	"ridepass/internal/types"
	"ridepass/internal/utils"
)

type Pricing interface {
	Quote(ctx context.Context, requestedRides int) (pricing.Quote, error)
}

// Bookings is the slice of the schedule service a purchase needs.
type Bookings interface {
	Get(ctx context.Context, userID, id types.ID) (*schedule.Booking, error)
	Confirm(ctx context.Context, id types.ID) error
}

// Repository is implemented by *Store. MarkPaid flips a pending purchase to
// paid and credits the wallet atomically; false means it was not pending.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	Get(ctx context.Context, orderID string) (*Purchase, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Purchase, error)
	MarkPaid(ctx context.Context, orderID, paymentKey string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, orderID string) (bool, error)
	OpenForBooking(ctx context.Context, bookingID types.ID) (*Purchase, error)
	Wallet(ctx context.Context, userID types.ID) (Wallet, error)
}

type Service struct {
	repo     Repository
	pricing  Pricing
	bookings Bookings
	gateway  Gateway
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, pricing Pricing, bookings Bookings, gateway Gateway, notifier Notifier) *Service {
	if gateway == nil {
		gateway = SimulatedGateway{}
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{
		repo:     repo,
		pricing:  pricing,
		bookings: bookings,
		gateway:  gateway,
		notifier: notifier,
		now:      time.Now,
	}
}

var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("purchase not found")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrNotPaid         = errors.New("purchase is not paid")
	ErrInvalidState    = errors.New("purchase cannot be confirmed")
	ErrConflict        = errors.New("purchase state conflict")
	ErrBookingNotOpen  = errors.New("booking is not awaiting payment")
)

type CheckoutCommand struct {
	UserID    types.ID
	Rides     int
	BookingID *types.ID
}

type ConfirmCommand struct {
	UserID  types.ID
	OrderID string
}

// Checkout quotes the requested rides (or the booking's rides) and stores a
// pending purchase. A booking keeps the quote it was submitted with and has
// at most one open purchase: a second checkout returns the pending one.
func (s *Service) Checkout(ctx context.Context, cmd CheckoutCommand) (*Purchase, error) {
	if cmd.UserID == "" {
		return nil, ErrBadRequest
	}
	var q pricing.Quote
	if cmd.BookingID != nil {
		b, err := s.bookings.Get(ctx, cmd.UserID, *cmd.BookingID)
		if err != nil {
			return nil, err
		}
		if b.Status != schedule.StatusPendingPayment {
			return nil, ErrBookingNotOpen
		}
		open, err := s.repo.OpenForBooking(ctx, b.ID)
		switch {
		case err == nil && open.Status == StatusPending:
			return open, nil
		case err == nil:
			return nil, ErrBookingNotOpen
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		q = b.Quote
	} else {
		if cmd.Rides <= 0 {
			return nil, pricing.ErrInvalidRideCount
		}
		var err error
		if q, err = s.pricing.Quote(ctx, cmd.Rides); err != nil {
			return nil, err
		}
	}

	now := s.now()
	p := &Purchase{
		ID:        types.ID(uuid.NewString()),
		OrderID:   NewOrderID(now, cmd.BookingID != nil),
		UserID:    cmd.UserID,
		BookingID: cmd.BookingID,
		Rides:     q.RequestedRides,
		Quote:     q,
		Amount:    q.Total(),
		Status:    StatusPending,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	utils.LogEvent("ticket", "checkout", "order=%s rides=%d amount=%d", p.OrderID, p.Rides, p.Amount.Amount)
	return p, nil
}

// Confirm charges the purchase through the gateway. On success the wallet is
// credited with the granted rides and a linked booking is confirmed.
func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) (*Purchase, error) {
	p, err := s.get(ctx, cmd.UserID, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case StatusPaid:
		return p, nil
	case StatusFailed:
		return nil, ErrInvalidState
	}
	if p.BookingID != nil {
		if err := s.checkBookingOpen(ctx, p); err != nil {
			return nil, err
		}
	}

	key, err := s.gateway.Approve(ctx, p.OrderID, p.Amount)
	if err != nil {
		if _, markErr := s.repo.MarkFailed(ctx, p.OrderID); markErr != nil {
			utils.LogEvent("ticket", "confirm", "order=%s mark failed: %v", p.OrderID, markErr)
		}
		utils.LogEvent("ticket", "confirm", "order=%s declined: %v", p.OrderID, err)
		if errors.Is(err, ErrPaymentDeclined) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}

	paidAt := s.now()
	ok, err := s.repo.MarkPaid(ctx, p.OrderID, key, paidAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	p.Status, p.PaymentKey, p.PaidAt = StatusPaid, key, &paidAt
	utils.LogEvent("ticket", "confirm", "order=%s paid granted=%d", p.OrderID, p.Quote.GrantedRides)

	if p.BookingID != nil {
		if err := s.bookings.Confirm(ctx, *p.BookingID); err != nil {
			utils.LogEvent("ticket", "confirm", "order=%s booking=%s confirm failed: %v", p.OrderID, *p.BookingID, err)
		}
	}
	if err := s.notifier.PurchaseConfirmed(ctx, p); err != nil {
		utils.LogEvent("ticket", "notify", "order=%s failed: %v", p.OrderID, err)
	}
	return p, nil
}

// checkBookingOpen fails the purchase when its booking stopped waiting for
// payment, so a cancelled or already paid booking is never charged.
func (s *Service) checkBookingOpen(ctx context.Context, p *Purchase) error {
	b, err := s.bookings.Get(ctx, p.UserID, *p.BookingID)
	if err != nil && !errors.Is(err, schedule.ErrNotFound) {
		return err
	}
	if err == nil && b.Status == schedule.StatusPendingPayment {
		return nil
	}
	if _, markErr := s.repo.MarkFailed(ctx, p.OrderID); markErr != nil {
		utils.LogEvent("ticket", "confirm", "order=%s mark failed: %v", p.OrderID, markErr)
	}
	utils.LogEvent("ticket", "confirm", "order=%s booking=%s not awaiting payment", p.OrderID, *p.BookingID)
	return ErrBookingNotOpen
}

func (s *Service) Get(ctx context.Context, userID types.ID, orderID string) (*Purchase, error) {
	return s.get(ctx, userID, orderID)
}

func (s *Service) List(ctx context.Context, userID types.ID) ([]Purchase, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Balance(ctx context.Context, userID types.ID) (Wallet, error) {
	if userID == "" {
		return Wallet{}, ErrBadRequest
	}
	return s.repo.Wallet(ctx, userID)
}

// Receipt renders the PDF receipt of a paid purchase.
func (s *Service) Receipt(ctx context.Context, userID types.ID, orderID string) ([]byte, string, error) {
	p, err := s.get(ctx, userID, orderID)
	if err != nil {
		return nil, "", err
	}
	if p.Status != StatusPaid {
		return nil, "", ErrNotPaid
	}
	return renderReceipt(p)
}

func (s *Service) get(ctx context.Context, userID types.ID, orderID string) (*Purchase, error) {
	if userID == "" || orderID == "" {
		return nil, ErrBadRequest
	}
	p, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}

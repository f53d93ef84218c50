// README: Schedule service validates bookings, prices them and keeps drafts.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ridepass/internal/maps"
	"ridepass/internal/modules/pricing"
	"ridepass/internal/types"
	"ridepass/internal/utils"
)

type Pricing interface {
	Quote(ctx context.Context, requestedRides int) (pricing.Quote, error)
}

// Repository persists submitted bookings; *Store is the Postgres one.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Booking, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
}

// Drafts keeps one in-progress form per user; *DraftStore is the Redis one.
type Drafts interface {
	Save(ctx context.Context, userID types.ID, d Draft, ttl time.Duration) error
	Load(ctx context.Context, userID types.ID) (Draft, error)
	Delete(ctx context.Context, userID types.ID) error
}

type Service struct {
	repo      Repository
	drafts    Drafts
	pricing   Pricing
	estimator maps.Estimator
	draftTTL  time.Duration
	now       func() time.Time
}

func NewService(repo Repository, drafts Drafts, pricing Pricing, estimator maps.Estimator, draftTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		drafts:    drafts,
		pricing:   pricing,
		estimator: estimator,
		draftTTL:  draftTTL,
		now:       time.Now,
	}
}

var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("booking not found")
	ErrConflict         = errors.New("booking state conflict")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrNoRoutes         = errors.New("at least one route is required")
	ErrIncompleteRoute  = errors.New("route needs pickup, dropoff and pickup time")
	ErrMissingDate      = errors.New("one-time booking needs a date")
	ErrInvalidDateRange = errors.New("recurring booking needs start date before end date")
	ErrNoDays           = errors.New("recurring booking needs at least one weekday")
	ErrInvalidWeekday   = errors.New("invalid weekday")
	ErrNoRides          = errors.New("booking produces no rides")
	ErrDraftNotFound    = errors.New("draft not found")
)

type SubmitCommand struct {
	UserID    types.ID
	Type      BookingType
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
	Days      []Weekday
	Routes    []Route
}

type CancelCommand struct {
	UserID    types.ID
	BookingID types.ID
}

// FillDropoff derives an empty drop-off time from the pickup time and the
// travel estimate, falling back to pickup + 1h.
func (s *Service) FillDropoff(ctx context.Context, r Route) Route {
	if strings.TrimSpace(r.DropoffTime) != "" || strings.TrimSpace(r.PickupTime) == "" {
		return r
	}
	if s.estimator != nil {
		origin, dest := firstNonEmpty(r.PickupAddress, r.Pickup), firstNonEmpty(r.DropoffAddress, r.Dropoff)
		if est, err := s.estimator.Estimate(ctx, origin, dest); err == nil {
			if d := DeriveDropoffTime(r.PickupTime, est.DurationSeconds); d != "" {
				r.DropoffTime = d
				return r
			}
		}
	}
	r.DropoffTime = DefaultDropoffTime(r.PickupTime)
	return r
}

// Submit validates and prices a booking and stores it awaiting payment.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*Booking, error) {
	if cmd.UserID == "" {
		return nil, ErrBadRequest
	}
	routes, err := s.prepareRoutes(ctx, cmd.Routes)
	if err != nil {
		return nil, err
	}
	b := &Booking{
		ID:        newID(),
		UserID:    cmd.UserID,
		Type:      cmd.Type,
		Routes:    routes,
		Status:    StatusPendingPayment,
		CreatedAt: s.now(),
	}
	switch cmd.Type {
	case BookingOneTime:
		if cmd.Date == nil || cmd.Date.IsZero() {
			return nil, ErrMissingDate
		}
		b.Date = cmd.Date
	case BookingRecurring:
		if cmd.StartDate == nil || cmd.EndDate == nil || !cmd.StartDate.Before(*cmd.EndDate) {
			return nil, ErrInvalidDateRange
		}
		days, err := normalizeDays(cmd.Days)
		if err != nil {
			return nil, err
		}
		b.StartDate, b.EndDate, b.Days = cmd.StartDate, cmd.EndDate, days
	default:
		return nil, ErrBadRequest
	}

	b.RideCount = CountRides(*b)
	if b.RideCount <= 0 {
		return nil, ErrNoRides
	}
	q, err := s.pricing.Quote(ctx, b.RideCount)
	if err != nil {
		return nil, err
	}
	b.Quote = q

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	utils.LogEvent("schedule", "submit", "booking=%s type=%s rides=%d total=%d", b.ID, b.Type, b.RideCount, q.TotalPrice)
	return b, nil
}

func (s *Service) prepareRoutes(ctx context.Context, in []Route) ([]Route, error) {
	if len(in) == 0 {
		return nil, ErrNoRoutes
	}
	out := make([]Route, 0, len(in))
	for i, r := range in {
		r.Pickup = strings.TrimSpace(r.Pickup)
		r.Dropoff = strings.TrimSpace(r.Dropoff)
		if r.Pickup == "" || r.Dropoff == "" || strings.TrimSpace(r.PickupTime) == "" {
			return nil, fmt.Errorf("route %d: %w", i+1, ErrIncompleteRoute)
		}
		r = s.FillDropoff(ctx, r)
		if err := r.Window().Validate(); err != nil {
			return nil, fmt.Errorf("route %d: %w", i+1, err)
		}
		if r.Name == "" {
			r.Name = fmt.Sprintf("경로 %d", i+1)
		}
		out = append(out, r)
	}
	return out, nil
}

func normalizeDays(in []Weekday) ([]Weekday, error) {
	if len(in) == 0 {
		return nil, ErrNoDays
	}
	seen := make(map[Weekday]bool, len(in))
	out := make([]Weekday, 0, len(in))
	for _, d := range in {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID, id types.ID) (*Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, userID types.ID) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Confirm marks a booking paid. It is called by the ticket module after a
// successful payment.
func (s *Service) Confirm(ctx context.Context, id types.ID) error {
	return s.transition(ctx, id, StatusConfirmed)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	if _, err := s.Get(ctx, cmd.UserID, cmd.BookingID); err != nil {
		return err
	}
	return s.transition(ctx, cmd.BookingID, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(b.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.repo.UpdateStatus(ctx, b.ID, b.Status, to, b.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	utils.LogEvent("schedule", "transition", "booking=%s from=%s to=%s", b.ID, b.Status, to)
	return nil
}

func (s *Service) SaveDraft(ctx context.Context, userID types.ID, d Draft) error {
	if userID == "" {
		return ErrBadRequest
	}
	if d.Type == "" {
		d.Type = BookingOneTime
	}
	if d.Days == nil {
		d.Days = append([]Weekday(nil), DefaultDays...)
	}
	d.SavedAt = s.now()
	return s.drafts.Save(ctx, userID, d, s.draftTTL)
}

func (s *Service) LoadDraft(ctx context.Context, userID types.ID) (Draft, error) {
	return s.drafts.Load(ctx, userID)
}

func (s *Service) ClearDraft(ctx context.Context, userID types.ID) error {
	return s.drafts.Delete(ctx, userID)
}

func newID() types.ID {
	return types.ID(uuid.NewString())
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// README: Assistant usage service meters booking-assistant requests.
package aiusage

import (
	"context"
	"errors"
	"time"

	"ridepass/internal/types"
)

// Repository is implemented by *Store.
type Repository interface {
	UseToken(ctx context.Context, uid types.ID, month string) error
	EnsureUser(ctx context.Context, uid types.ID, month string) error
	Remaining(ctx context.Context, uid types.ID, month string) (int, error)
}

// Service orchestrates assistant token-usage logic.
type Service struct {
	store Repository
	now   func() time.Time
}

// NewService creates a Service backed by the given store.
func NewService(store Repository) *Service {
	return &Service{store: store, now: time.Now}
}

// UseToken deducts one request from the user's monthly allowance.
// A missing row is initialised and the token is consumed right away.
func (s *Service) UseToken(ctx context.Context, uid types.ID) error {
	month := s.now().Format(monthLayout)
	err := s.store.UseToken(ctx, uid, month)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid, month); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid, month)
}

func (s *Service) Remaining(ctx context.Context, uid types.ID) (int, error) {
	return s.store.Remaining(ctx, uid, s.now().Format(monthLayout))
}

// README: Location service seeds defaults and manages a user's saved places.
package location

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"ridepass/internal/types"
	"ridepass/internal/utils"
)

// Repository is implemented by *Store.
type Repository interface {
	List(ctx context.Context, userID types.ID) ([]Location, error)
	Get(ctx context.Context, userID, id types.ID) (*Location, error)
	Create(ctx context.Context, locs ...Location) error
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, userID, id types.ID) (bool, error)
	Seed(ctx context.Context, userID types.ID, rows ...Location) (bool, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var (
	ErrBadRequest   = errors.New("name and address are required")
	ErrNotFound     = errors.New("location not found")
	ErrLimitReached = fmt.Errorf("at most %d locations can be saved", MaxLocations)
)

type AddCommand struct {
	UserID  types.ID
	Name    string
	Address string
}

// Patch carries the fields to change; nil fields are left alone.
type Patch struct {
	Name    *string
	Address *string
}

// List returns the user's places. The defaults are seeded on the first
// visit only; a user who removed them all gets an empty list.
func (s *Service) List(ctx context.Context, userID types.ID) ([]Location, error) {
	locs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(locs) > 0 {
		return locs, nil
	}
	seed := Defaults()
	for i := range seed {
		seed[i].UserID = userID
		seed[i].CreatedAt = s.now()
	}
	seeded, err := s.repo.Seed(ctx, userID, seed...)
	if err != nil {
		return nil, err
	}
	if !seeded {
		return locs, nil
	}
	utils.LogEvent("location", "seed", "user=%s count=%d", userID, len(seed))
	return seed, nil
}

func (s *Service) Add(ctx context.Context, cmd AddCommand) (*Location, error) {
	name, addr := strings.TrimSpace(cmd.Name), strings.TrimSpace(cmd.Address)
	if cmd.UserID == "" || name == "" || addr == "" {
		return nil, ErrBadRequest
	}
	existing, err := s.List(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxLocations {
		return nil, ErrLimitReached
	}
	loc := Location{
		ID:        types.ID(uuid.NewString()),
		UserID:    cmd.UserID,
		Name:      name,
		Address:   addr,
		Thumbnail: thumbnailURL(),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *Service) Update(ctx context.Context, userID, id types.ID, p Patch) (*Location, error) {
	loc, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		loc.Name = strings.TrimSpace(*p.Name)
	}
	if p.Address != nil {
		loc.Address = strings.TrimSpace(*p.Address)
	}
	if loc.Name == "" || loc.Address == "" {
		return nil, ErrBadRequest
	}
	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *Service) Delete(ctx context.Context, userID, id types.ID) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func thumbnailURL() string {
	return fmt.Sprintf("https://images.unsplash.com/photo-%d?w=200&q=80", rand.IntN(1_000_000_000))
}

// README: Child service validates profiles and enforces the per-user limit.
package child

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ridepass/internal/types"
	"ridepass/internal/utils"
)

type Repository interface {
	List(ctx context.Context, userID types.ID) ([]Child, error)
	Get(ctx context.Context, userID, id types.ID) (*Child, error)
	Create(ctx context.Context, children ...Child) error
	Update(ctx context.Context, c *Child) error
	Delete(ctx context.Context, userID, id types.ID) (bool, error)
	Seed(ctx context.Context, userID types.ID, rows ...Child) (bool, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var (
	ErrBadRequest       = errors.New("name and birthdate are required")
	ErrInvalidBirthdate = errors.New("birthdate must be a past YYYY-MM-DD date")
	ErrInvalidGender    = errors.New("gender must be male or female")
	ErrNotFound         = errors.New("child not found")
	ErrLimitReached     = fmt.Errorf("at most %d children can be registered", MaxChildren)
)

type AddCommand struct {
	UserID    types.ID
	Name      string
	Birthdate string
	Gender    Gender
	Notes     string
}

type Patch struct {
	Name      *string
	Birthdate *string
	Gender    *Gender
	Notes     *string
}

// List returns the user's children. The sample profiles are seeded on the
// first visit only.
func (s *Service) List(ctx context.Context, userID types.ID) ([]Child, error) {
	kids, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(kids) > 0 {
		return kids, nil
	}
	seed := defaults()
	for i := range seed {
		seed[i].UserID = userID
		seed[i].CreatedAt = s.now()
	}
	seeded, err := s.repo.Seed(ctx, userID, seed...)
	if err != nil {
		return nil, err
	}
	if !seeded {
		return kids, nil
	}
	utils.LogEvent("child", "seed", "user=%s count=%d", userID, len(seed))
	return seed, nil
}

func (s *Service) Add(ctx context.Context, cmd AddCommand) (*Child, error) {
	name := strings.TrimSpace(cmd.Name)
	if cmd.UserID == "" || name == "" || strings.TrimSpace(cmd.Birthdate) == "" {
		return nil, ErrBadRequest
	}
	birth, err := s.parseBirthdate(cmd.Birthdate)
	if err != nil {
		return nil, err
	}
	if !cmd.Gender.Valid() {
		return nil, ErrInvalidGender
	}
	existing, err := s.List(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxChildren {
		return nil, ErrLimitReached
	}
	c := Child{
		ID:        types.ID(uuid.NewString()),
		UserID:    cmd.UserID,
		Name:      name,
		Birthdate: birth,
		Gender:    cmd.Gender,
		Notes:     strings.TrimSpace(cmd.Notes),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Update(ctx context.Context, userID, id types.ID, p Patch) (*Child, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		if c.Name = strings.TrimSpace(*p.Name); c.Name == "" {
			return nil, ErrBadRequest
		}
	}
	if p.Birthdate != nil {
		if c.Birthdate, err = s.parseBirthdate(*p.Birthdate); err != nil {
			return nil, err
		}
	}
	if p.Gender != nil {
		if !p.Gender.Valid() {
			return nil, ErrInvalidGender
		}
		c.Gender = *p.Gender
	}
	if p.Notes != nil {
		c.Notes = strings.TrimSpace(*p.Notes)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
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

// Now is the clock used for ages in responses.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) parseBirthdate(raw string) (time.Time, error) {
	t, err := time.Parse(birthdateLayout, strings.TrimSpace(raw))
	if err != nil || t.After(s.now()) {
		return time.Time{}, ErrInvalidBirthdate
	}
	return t, nil
}

package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepass/internal/types"
)

type memRepo struct {
	rows   []Location
	seeded map[types.ID]bool
}

func (m *memRepo) List(_ context.Context, userID types.ID) ([]Location, error) {
	var out []Location
	for _, l := range m.rows {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, userID, id types.ID) (*Location, error) {
	for _, l := range m.rows {
		if l.UserID == userID && l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Create(_ context.Context, locs ...Location) error {
	m.rows = append(m.rows, locs...)
	return nil
}

func (m *memRepo) Seed(_ context.Context, userID types.ID, rows ...Location) (bool, error) {
	if m.seeded[userID] {
		return false, nil
	}
	if m.seeded == nil {
		m.seeded = map[types.ID]bool{}
	}
	m.seeded[userID] = true
	m.rows = append(m.rows, rows...)
	return true, nil
}

func (m *memRepo) Update(_ context.Context, loc *Location) error {
	for i, l := range m.rows {
		if l.UserID == loc.UserID && l.ID == loc.ID {
			m.rows[i] = *loc
			return nil
		}
	}
	return ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, userID, id types.ID) (bool, error) {
	for i, l := range m.rows {
		if l.UserID == userID && l.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestList_SeedsDefaultsOnce(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	locs, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, locs, 4)
	assert.Equal(t, "집", locs[0].Name)
	assert.Equal(t, types.ID("loc4"), locs[3].ID)

	again, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, again, 4)
	assert.Len(t, repo.rows, 4)
}

func TestList_StaysEmptyAfterDeletingEverything(t *testing.T) {
	svc := NewService(&memRepo{})
	ctx := context.Background()

	locs, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	for _, l := range locs {
		require.NoError(t, svc.Delete(ctx, "u1", l.ID))
	}

	after, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, after)

	added, err := svc.Add(ctx, AddCommand{UserID: "u1", Name: "도서관", Address: "서울시 강남구 삼성로 10"})
	require.NoError(t, err)
	after, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, added.ID, after[0].ID)
}

func TestAdd(t *testing.T) {
	svc := NewService(&memRepo{})
	ctx := context.Background()

	loc, err := svc.Add(ctx, AddCommand{UserID: "u1", Name: " 학원 ", Address: "서울시 강남구 도곡로 1"})
	require.NoError(t, err)
	assert.Equal(t, "학원", loc.Name)
	assert.NotEmpty(t, loc.ID)
	assert.True(t, strings.HasPrefix(loc.Thumbnail, "https://images.unsplash.com/photo-"))

	_, err = svc.Add(ctx, AddCommand{UserID: "u1", Name: "빈 주소"})
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestAdd_Limit(t *testing.T) {
	svc := NewService(&memRepo{})
	ctx := context.Background()

	// four defaults plus four more fill the list
	for i := 0; i < MaxLocations-4; i++ {
		_, err := svc.Add(ctx, AddCommand{UserID: "u1", Name: fmt.Sprintf("곳 %d", i), Address: "주소"})
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, AddCommand{UserID: "u1", Name: "하나 더", Address: "주소"})
	assert.True(t, errors.Is(err, ErrLimitReached))
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(&memRepo{})
	ctx := context.Background()
	_, err := svc.List(ctx, "u1")
	require.NoError(t, err)

	name := "우리 집"
	loc, err := svc.Update(ctx, "u1", "loc1", Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "우리 집", loc.Name)
	assert.Equal(t, "서울시 강남구 테헤란로 123", loc.Address)

	empty := ""
	_, err = svc.Update(ctx, "u1", "loc1", Patch{Address: &empty})
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = svc.Update(ctx, "u2", "loc1", Patch{Name: &name})
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, svc.Delete(ctx, "u1", "loc2"))
	assert.True(t, errors.Is(svc.Delete(ctx, "u1", "loc2"), ErrNotFound))
}

package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepass/internal/maps"
	"ridepass/internal/modules/pricing"
	"ridepass/internal/types"
)

type memRepo struct {
	bookings map[types.ID]*Booking
	stale    bool
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[types.ID]*Booking{}}
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) Get(_ context.Context, id types.ID) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID types.ID) ([]Booking, error) {
	var out []Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int) (bool, error) {
	b, ok := r.bookings[id]
	if !ok || r.stale || b.Status != from || b.StatusVersion != version {
		return false, nil
	}
	b.Status = to
	b.StatusVersion++
	return true, nil
}

type memDrafts struct {
	drafts map[types.ID]Draft
	ttl    time.Duration
}

func (m *memDrafts) Save(_ context.Context, userID types.ID, d Draft, ttl time.Duration) error {
	m.drafts[userID] = d
	m.ttl = ttl
	return nil
}

func (m *memDrafts) Load(_ context.Context, userID types.ID) (Draft, error) {
	d, ok := m.drafts[userID]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	return d, nil
}

func (m *memDrafts) Delete(_ context.Context, userID types.ID) error {
	delete(m.drafts, userID)
	return nil
}

type fixedEstimator struct {
	seconds int
	err     error
}

func (f fixedEstimator) Estimate(context.Context, string, string) (maps.Estimate, error) {
	if f.err != nil {
		return maps.Estimate{}, f.err
	}
	return maps.Estimate{DistanceMeters: 5000, DurationSeconds: f.seconds}, nil
}

func newTestService(est maps.Estimator) (*Service, *memRepo, *memDrafts) {
	repo := newMemRepo()
	drafts := &memDrafts{drafts: map[types.ID]Draft{}}
	svc := NewService(repo, drafts, pricing.NewService(nil), est, 30*time.Minute)
	return svc, repo, drafts
}

func schoolRun() Route {
	return Route{Pickup: "집", Dropoff: "학교", PickupTime: "오전 7:30"}
}

func TestSubmit_OneTimeFillsDropoffAndPrices(t *testing.T) {
	svc, repo, _ := newTestService(fixedEstimator{seconds: 2700})

	b, err := svc.Submit(context.Background(), SubmitCommand{
		UserID: "u1",
		Type:   BookingOneTime,
		Date:   day(2026, 5, 4),
		Routes: []Route{schoolRun()},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, b.Status)
	assert.Equal(t, 1, b.RideCount)
	assert.Equal(t, "오전 8:15", b.Routes[0].DropoffTime)
	assert.Equal(t, "경로 1", b.Routes[0].Name)
	assert.Equal(t, int64(18000), b.Quote.TotalPrice)
	assert.Contains(t, repo.bookings, b.ID)
}

func TestSubmit_DefaultDropoffWhenEstimateFails(t *testing.T) {
	svc, _, _ := newTestService(fixedEstimator{err: errors.New("quota")})

	b, err := svc.Submit(context.Background(), SubmitCommand{
		UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4),
		Routes: []Route{schoolRun()},
	})
	require.NoError(t, err)
	assert.Equal(t, "오전 8:30", b.Routes[0].DropoffTime)
}

func TestSubmit_RecurringUsesTenPack(t *testing.T) {
	svc, _, _ := newTestService(nil)

	b, err := svc.Submit(context.Background(), SubmitCommand{
		UserID:    "u1",
		Type:      BookingRecurring,
		StartDate: day(2026, 5, 4),
		EndDate:   day(2026, 5, 18),
		Days:      []Weekday{"월", "화", "수", "목", "금", "월"},
		Routes:    []Route{schoolRun()},
	})
	require.NoError(t, err)
	assert.Len(t, b.Days, 5)
	assert.Equal(t, 10, b.RideCount)
	assert.Equal(t, 1, b.Quote.Count(pricing.KindTenPack))
	assert.Equal(t, 0, b.Quote.Count(pricing.KindSingle))
	assert.Equal(t, 11, b.Quote.GrantedRides)
}

func TestSubmit_Rejections(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  SubmitCommand
		want error
	}{
		{"no user", SubmitCommand{Type: BookingOneTime, Date: day(2026, 5, 4), Routes: []Route{schoolRun()}}, ErrBadRequest},
		{"no routes", SubmitCommand{UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4)}, ErrNoRoutes},
		{"missing date", SubmitCommand{UserID: "u1", Type: BookingOneTime, Routes: []Route{schoolRun()}}, ErrMissingDate},
		{"reversed range", SubmitCommand{UserID: "u1", Type: BookingRecurring, StartDate: day(2026, 5, 18), EndDate: day(2026, 5, 4), Days: DefaultDays, Routes: []Route{schoolRun()}}, ErrInvalidDateRange},
		{"no days", SubmitCommand{UserID: "u1", Type: BookingRecurring, StartDate: day(2026, 5, 4), EndDate: day(2026, 5, 18), Routes: []Route{schoolRun()}}, ErrNoDays},
		{"bad day", SubmitCommand{UserID: "u1", Type: BookingRecurring, StartDate: day(2026, 5, 4), EndDate: day(2026, 5, 18), Days: []Weekday{"Mon"}, Routes: []Route{schoolRun()}}, ErrInvalidWeekday},
		{"unknown type", SubmitCommand{UserID: "u1", Type: "weekly", Routes: []Route{schoolRun()}}, ErrBadRequest},
		{"incomplete route", SubmitCommand{UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4), Routes: []Route{{Pickup: "집", PickupTime: "오전 7:30"}}}, ErrIncompleteRoute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.cmd)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestSubmit_RejectsLongWindowWithRouteIndex(t *testing.T) {
	svc, _, _ := newTestService(nil)
	second := schoolRun()
	second.DropoffTime = "오전 8:31"

	_, err := svc.Submit(context.Background(), SubmitCommand{
		UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4),
		Routes: []Route{schoolRun(), second},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWindowTooLong))
	assert.Contains(t, err.Error(), "route 2")
}

func TestSubmit_RejectsMalformedDropoff(t *testing.T) {
	svc, _, _ := newTestService(nil)
	r := schoolRun()
	r.DropoffTime = "later"

	_, err := svc.Submit(context.Background(), SubmitCommand{
		UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4), Routes: []Route{r},
	})
	assert.True(t, errors.Is(err, ErrMalformedTime))
}

func TestFillDropoff_KeepsExistingValue(t *testing.T) {
	svc, _, _ := newTestService(fixedEstimator{seconds: 600})
	r := schoolRun()
	r.DropoffTime = "오전 7:50"
	assert.Equal(t, "오전 7:50", svc.FillDropoff(context.Background(), r).DropoffTime)

	r.DropoffTime = ""
	assert.Equal(t, "오전 7:40", svc.FillDropoff(context.Background(), r).DropoffTime)
}

func TestConfirmAndCancel(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	ctx := context.Background()
	b, err := svc.Submit(ctx, SubmitCommand{UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4), Routes: []Route{schoolRun()}})
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(ctx, b.ID))
	assert.Equal(t, StatusConfirmed, repo.bookings[b.ID].Status)
	assert.True(t, errors.Is(svc.Confirm(ctx, b.ID), ErrInvalidState))

	assert.True(t, errors.Is(svc.Cancel(ctx, CancelCommand{UserID: "someone-else", BookingID: b.ID}), ErrNotFound))
	require.NoError(t, svc.Cancel(ctx, CancelCommand{UserID: "u1", BookingID: b.ID}))
	assert.Equal(t, StatusCancelled, repo.bookings[b.ID].Status)
}

func TestConfirm_StaleVersionConflicts(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	ctx := context.Background()
	b, err := svc.Submit(ctx, SubmitCommand{UserID: "u1", Type: BookingOneTime, Date: day(2026, 5, 4), Routes: []Route{schoolRun()}})
	require.NoError(t, err)

	repo.stale = true
	assert.True(t, errors.Is(svc.Confirm(ctx, b.ID), ErrConflict))
}

func TestDrafts(t *testing.T) {
	svc, _, store := newTestService(nil)
	ctx := context.Background()

	_, err := svc.LoadDraft(ctx, "u1")
	assert.True(t, errors.Is(err, ErrDraftNotFound))

	require.NoError(t, svc.SaveDraft(ctx, "u1", Draft{Routes: []Route{schoolRun()}}))
	assert.Equal(t, 30*time.Minute, store.ttl)

	d, err := svc.LoadDraft(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, BookingOneTime, d.Type)
	assert.Equal(t, DefaultDays, d.Days)
	assert.False(t, d.SavedAt.IsZero())

	require.NoError(t, svc.ClearDraft(ctx, "u1"))
	_, err = svc.LoadDraft(ctx, "u1")
	assert.True(t, errors.Is(err, ErrDraftNotFound))

	assert.True(t, errors.Is(svc.SaveDraft(ctx, "", Draft{}), ErrBadRequest))
}

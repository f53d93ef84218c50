// README: Handler tests over a gin engine with stubbed auth and in-memory stores.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepass/internal/http/handlers"
	httpmiddleware "ridepass/internal/http/middleware"
	"ridepass/internal/infra"
	"ridepass/internal/maps"
	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/schedule"
	"ridepass/internal/modules/ticket"
	"ridepass/internal/types"
)

type stubTokenVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func userVerifier(uid string) *stubTokenVerifier {
	return &stubTokenVerifier{token: &infra.FirebaseToken{UID: uid, Claims: map[string]interface{}{}}}
}

// memPurchases is an in-memory ticket.Repository.
type memPurchases struct {
	mu      sync.Mutex
	byOrder map[string]*ticket.Purchase
	wallets map[types.ID]int
}

func newMemPurchases() *memPurchases {
	return &memPurchases{byOrder: map[string]*ticket.Purchase{}, wallets: map[types.ID]int{}}
}

func (m *memPurchases) Create(_ context.Context, p *ticket.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byOrder[p.OrderID] = &cp
	return nil
}

func (m *memPurchases) Get(_ context.Context, orderID string) (*ticket.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byOrder[orderID]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPurchases) ListByUser(_ context.Context, userID types.ID) ([]ticket.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ticket.Purchase
	for _, p := range m.byOrder {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPurchases) MarkPaid(_ context.Context, orderID, key string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byOrder[orderID]
	if !ok || p.Status != ticket.StatusPending {
		return false, nil
	}
	p.Status, p.PaymentKey, p.PaidAt = ticket.StatusPaid, key, &paidAt
	m.wallets[p.UserID] += p.Quote.GrantedRides
	return true, nil
}

func (m *memPurchases) MarkFailed(_ context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byOrder[orderID]
	if !ok || p.Status != ticket.StatusPending {
		return false, nil
	}
	p.Status = ticket.StatusFailed
	return true, nil
}

func (m *memPurchases) OpenForBooking(_ context.Context, bookingID types.ID) (*ticket.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byOrder {
		if p.BookingID != nil && *p.BookingID == bookingID && p.Status != ticket.StatusFailed {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ticket.ErrNotFound
}

func (m *memPurchases) Wallet(_ context.Context, userID types.ID) (ticket.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ticket.Wallet{UserID: userID, Rides: m.wallets[userID]}, nil
}

type noBookings struct{}

func (noBookings) Get(context.Context, types.ID, types.ID) (*schedule.Booking, error) {
	return nil, schedule.ErrNotFound
}

func (noBookings) Confirm(context.Context, types.ID) error { return nil }

type silentNotifier struct{}

func (silentNotifier) PurchaseConfirmed(context.Context, *ticket.Purchase) error { return nil }

func buildTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)

	pricingSvc := pricing.NewService(nil)
	// Only the pure endpoints and the validation that runs before any store
	// call are exercised, so the schedule service has no repository.
	scheduleSvc := schedule.NewService(nil, nil, pricingSvc, maps.PlaceholderEstimator{}, time.Hour)
	ticketSvc := ticket.NewService(newMemPurchases(), pricingSvc, noBookings{}, nil, silentNotifier{})

	th := handlers.NewTicketHandler(pricingSvc, ticketSvc)
	sh := handlers.NewScheduleHandler(scheduleSvc)
	lh := handlers.NewLocationHandler(nil, nil, nil)

	r := gin.New()
	r.GET("/api/tickets/catalog", th.Catalog)
	r.POST("/api/tickets/quote", th.Quote)

	api := r.Group("/api", httpmiddleware.Auth(verifier))
	api.POST("/tickets/checkout", th.Checkout)
	api.GET("/tickets/purchases", th.List)
	api.GET("/tickets/purchases/:order_id", th.Get)
	api.POST("/tickets/purchases/:order_id/confirm", th.Confirm)
	api.GET("/tickets/purchases/:order_id/receipt", th.Receipt)
	api.GET("/tickets/balance", th.Balance)

	api.GET("/schedules/time-options", sh.TimeOptions)
	api.POST("/schedules/validate-window", sh.ValidateWindow)
	api.POST("/schedules/derive-dropoff", sh.DeriveDropoff)
	api.POST("/schedules", sh.Create)
	api.GET("/schedules/:id", sh.Get)

	api.GET("/locations/search", lh.Search)
	api.POST("/locations/estimate", lh.Estimate)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCatalog_Public(t *testing.T) {
	r := buildTestRouter(&stubTokenVerifier{err: errors.New("unused")})
	w := doRequest(r, http.MethodGet, "/api/tickets/catalog", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "KRW", body["currency"])
	tickets, ok := body["tickets"].([]any)
	require.True(t, ok)
	require.Len(t, tickets, 3)
	first := tickets[0].(map[string]any)
	assert.Equal(t, "thirty-pack", first["kind"])
	assert.EqualValues(t, 18000, first["ticket_price"])
}

func TestQuote_MixedBundles(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))
	w := doRequest(r, http.MethodPost, "/api/tickets/quote", map[string]any{"rides": 25}, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.EqualValues(t, 450000, body["total_price"])
	assert.EqualValues(t, 27, body["granted_rides"])
	assert.Equal(t, "10회권 x 2개 + 1회권 x 5개", body["summary"])
}

func TestQuote_RejectsOutOfRange(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))
	for _, rides := range []int64{0, -3, pricing.MaxRides + 1, 600_000_000_000_000} {
		w := doRequest(r, http.MethodPost, "/api/tickets/quote", map[string]any{"rides": rides}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "rides=%d", rides)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	r := buildTestRouter(&stubTokenVerifier{err: errors.New("bad token")})

	w := doRequest(r, http.MethodGet, "/api/tickets/balance", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/tickets/balance", nil, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTicketPurchaseFlow(t *testing.T) {
	r := buildTestRouter(userVerifier("parent-1"))
	auth := "Bearer ok"

	w := doRequest(r, http.MethodPost, "/api/tickets/checkout", map[string]any{"rides": 11}, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	orderID, _ := created["order_id"].(string)
	require.NotEmpty(t, orderID)
	assert.Regexp(t, `^TICKET-\d+-\d{1,3}$`, orderID)
	assert.Equal(t, "pending", created["status"])

	w = doRequest(r, http.MethodGet, "/api/tickets/purchases/"+orderID+"/receipt", nil, auth)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodPost, "/api/tickets/purchases/"+orderID+"/confirm", nil, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode(t, w)
	assert.Equal(t, "paid", paid["status"])
	assert.Equal(t, "SIMULATED_PAYMENT_KEY", paid["payment_key"])

	// confirming twice returns the paid purchase without crediting again
	w = doRequest(r, http.MethodPost, "/api/tickets/purchases/"+orderID+"/confirm", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/tickets/balance", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 11, decode(t, w)["rides"])

	w = doRequest(r, http.MethodGet, "/api/tickets/purchases/"+orderID+"/receipt", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = doRequest(r, http.MethodGet, "/api/tickets/purchases", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["purchases"], 1)
}

func TestTicketPurchase_OtherUserSeesNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pricingSvc := pricing.NewService(nil)
	repo := newMemPurchases()
	ticketSvc := ticket.NewService(repo, pricingSvc, noBookings{}, nil, silentNotifier{})
	p, err := ticketSvc.Checkout(context.Background(), ticket.CheckoutCommand{UserID: "owner", Rides: 3})
	require.NoError(t, err)

	th := handlers.NewTicketHandler(pricingSvc, ticketSvc)
	r := gin.New()
	r.GET("/api/tickets/purchases/:order_id", httpmiddleware.Auth(userVerifier("intruder")), th.Get)

	w := doRequest(r, http.MethodGet, "/api/tickets/purchases/"+p.OrderID, nil, "Bearer ok")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_UnknownBooking(t *testing.T) {
	r := buildTestRouter(userVerifier("parent-1"))
	w := doRequest(r, http.MethodPost, "/api/tickets/checkout", map[string]any{"booking_id": "missing-booking"}, "Bearer ok")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimeOptions(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))
	w := doRequest(r, http.MethodGet, "/api/schedules/time-options", nil, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)
	opts := decode(t, w)["options"].([]any)
	require.Len(t, opts, 34)
	assert.Equal(t, "오전 6:00", opts[0])
	assert.Equal(t, "오후 10:30", opts[len(opts)-1])
}

func TestValidateWindow(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))
	cases := []struct {
		name      string
		pickup    string
		dropoff   string
		wantValid bool
		wantError bool
	}{
		{"within an hour", "오전 7:30", "오전 8:15", true, false},
		{"exactly an hour", "오전 7:30", "오전 8:30", true, false},
		{"too long", "오전 7:30", "오전 8:31", false, true},
		{"dropoff before pickup", "오후 3:00", "오후 2:30", false, true},
		{"malformed is lenient but strict rejects", "soon", "오전 8:00", true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/schedules/validate-window",
				map[string]string{"pickup_time": tc.pickup, "dropoff_time": tc.dropoff}, "Bearer ok")
			require.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.wantValid, body["valid"])
			_, hasErr := body["error"]
			assert.Equal(t, tc.wantError, hasErr)
		})
	}
}

func TestDeriveDropoff(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))

	w := doRequest(r, http.MethodPost, "/api/schedules/derive-dropoff",
		map[string]any{"pickup_time": "오후 11:50", "duration_seconds": 1799}, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "오전 12:19", decode(t, w)["dropoff_time"])

	w = doRequest(r, http.MethodPost, "/api/schedules/derive-dropoff",
		map[string]any{"pickup_time": "later"}, "Bearer ok")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeriveDropoff_UsesEstimator(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))
	w := doRequest(r, http.MethodPost, "/api/schedules/derive-dropoff",
		map[string]any{"pickup_time": "오전 8:00", "pickup": "집", "dropoff": "학교"}, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)

	est, _ := maps.PlaceholderEstimator{}.Estimate(context.Background(), "집", "학교")
	want := schedule.DeriveDropoffTime("오전 8:00", est.DurationSeconds)
	assert.Equal(t, want, decode(t, w)["dropoff_time"])
}

func TestCreateSchedule_Validation(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))

	w := doRequest(r, http.MethodPost, "/api/schedules", map[string]any{
		"ride_type":     "one-time",
		"selected_date": "2025/01/01",
	}, "Bearer ok")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/schedules", map[string]any{
		"ride_type":     "one-time",
		"selected_date": "2025-01-01",
		"routes":        []any{},
	}, "Bearer ok")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "route")
}

func TestGetSchedule_InvalidID(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))
	w := doRequest(r, http.MethodGet, "/api/schedules/bad$id", nil, "Bearer ok")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationSearchAndEstimate(t *testing.T) {
	r := buildTestRouter(userVerifier("u1"))

	w := doRequest(r, http.MethodGet, "/api/locations/search?q=", nil, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["results"])

	w = doRequest(r, http.MethodPost, "/api/locations/estimate",
		map[string]string{"origin": "서울시 강남구", "destination": "서울시 서초구"}, "Bearer ok")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Greater(t, body["distance_meters"], float64(0))
	assert.Greater(t, body["duration_seconds"], float64(0))

	w = doRequest(r, http.MethodPost, "/api/locations/estimate", map[string]string{"origin": "집"}, "Bearer ok")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

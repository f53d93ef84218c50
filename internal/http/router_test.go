package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepass/internal/http/handlers"
	"ridepass/internal/infra"
	"ridepass/internal/maps"
	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/schedule"
	"ridepass/internal/modules/ticket"
)

type rejectAll struct{}

func (rejectAll) VerifyIDToken(context.Context, string) (*infra.FirebaseToken, error) {
	return nil, errors.New("rejected")
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	pricingSvc := pricing.NewService(nil)
	scheduleSvc := schedule.NewService(nil, nil, pricingSvc, maps.PlaceholderEstimator{}, time.Hour)
	return NewRouter(Deps{
		Verifier:    rejectAll{},
		CORSOrigins: []string{"http://localhost:5173"},
		MaxInflight: 10,
		Tickets:     handlers.NewTicketHandler(pricingSvc, ticket.NewService(nil, pricingSvc, nil, nil, nil)),
		Schedules:   handlers.NewScheduleHandler(scheduleSvc),
		Locations:   handlers.NewLocationHandler(nil, nil, nil),
		Children:    handlers.NewChildHandler(nil),
	})
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_PublicCatalog(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tickets/catalog", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedGroups(t *testing.T) {
	r := testRouter()
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/schedules"},
		{http.MethodGet, "/api/schedules/draft"},
		{http.MethodGet, "/api/locations"},
		{http.MethodGet, "/api/children"},
		{http.MethodGet, "/api/tickets/balance"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer x")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)
	}
}

func TestRouter_AssistantOptional(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/assistant/parse", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

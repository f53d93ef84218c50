// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepass/internal/http/middleware"
	"ridepass/internal/modules/aiusage"
	"ridepass/internal/modules/child"
	"ridepass/internal/modules/location"
	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/schedule"
	"ridepass/internal/modules/ticket"
	"ridepass/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the generated uuids and the seeded short ids ("loc1").
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func caller(c *gin.Context) types.ID {
	return types.ID(middleware.CallerUID(c))
}

// pathID reads and validates a path parameter, writing 400 when it is bad.
func pathID(c *gin.Context, name string) (types.ID, bool) {
	v := c.Param(name)
	if !isValidID(v) {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return types.ID(v), true
}

func writeScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schedule.ErrNotFound), errors.Is(err, schedule.ErrDraftNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrInvalidState), errors.Is(err, schedule.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrBadRequest),
		errors.Is(err, schedule.ErrNoRoutes),
		errors.Is(err, schedule.ErrIncompleteRoute),
		errors.Is(err, schedule.ErrMissingDate),
		errors.Is(err, schedule.ErrInvalidDateRange),
		errors.Is(err, schedule.ErrNoDays),
		errors.Is(err, schedule.ErrInvalidWeekday),
		errors.Is(err, schedule.ErrNoRides),
		errors.Is(err, schedule.ErrMalformedTime):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, schedule.ErrNonPositiveWindow), errors.Is(err, schedule.ErrWindowTooLong):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, pricing.ErrInvalidRideCount):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeTicketError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ticket.ErrBadRequest), errors.Is(err, pricing.ErrInvalidRideCount):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ticket.ErrNotFound), errors.Is(err, schedule.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ticket.ErrPaymentDeclined):
		writeError(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, ticket.ErrNotPaid),
		errors.Is(err, ticket.ErrInvalidState),
		errors.Is(err, ticket.ErrConflict),
		errors.Is(err, ticket.ErrBookingNotOpen):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeLocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, location.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, location.ErrLimitReached):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeChildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, child.ErrBadRequest), errors.Is(err, child.ErrInvalidBirthdate), errors.Is(err, child.ErrInvalidGender):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, child.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, child.ErrLimitReached):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeAssistantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		writeError(c, http.StatusTooManyRequests, err.Error())
	default:
		writeError(c, http.StatusBadGateway, "assistant unavailable")
	}
}

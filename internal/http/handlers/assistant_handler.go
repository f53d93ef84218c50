// README: Booking assistant handler (free text to a prefilled booking draft).
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ridepass/internal/modules/aiusage"
	"ridepass/internal/service"
	"ridepass/internal/types"
	"ridepass/internal/utils"
)

const assistantTimeout = 10 * time.Second

// Planner is implemented by *service.BookingPlanner.
type Planner interface {
	Plan(ctx context.Context, userID types.ID, message string) (*service.Plan, error)
}

type AssistantHandler struct {
	planner Planner
	usage   *aiusage.Service
}

func NewAssistantHandler(planner Planner, usage *aiusage.Service) *AssistantHandler {
	return &AssistantHandler{planner: planner, usage: usage}
}

type assistantReq struct {
	Message string `json:"message"`
}

// Parse handles POST /api/assistant/parse. Each call spends one token of the
// caller's monthly allowance before the model is asked.
func (h *AssistantHandler) Parse(c *gin.Context) {
	var req assistantReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "message is required")
		return
	}
	uid := caller(c)

	if h.usage != nil {
		if err := h.usage.UseToken(c.Request.Context(), uid); err != nil {
			writeAssistantError(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), assistantTimeout)
	defer cancel()

	plan, err := h.planner.Plan(ctx, uid, req.Message)
	if err != nil {
		utils.LogEvent("assistant", "parse", "uid=%s err=%v", uid, err)
		writeAssistantError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, plan)
}

// Usage handles GET /api/assistant/usage.
func (h *AssistantHandler) Usage(c *gin.Context) {
	if h.usage == nil {
		writeJSON(c, http.StatusOK, gin.H{"remaining": aiusage.DefaultTokens})
		return
	}
	n, err := h.usage.Remaining(c.Request.Context(), caller(c))
	if err != nil {
		writeAssistantError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"remaining": n})
}

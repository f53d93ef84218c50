// README: Schedule handlers for booking submission, time windows and drafts.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/schedule"
)

const dateLayout = "2006-01-02"

type ScheduleHandler struct {
	svc *schedule.Service
}

func NewScheduleHandler(svc *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

type bookingResp struct {
	ID        string               `json:"id"`
	Type      schedule.BookingType `json:"ride_type"`
	Date      string               `json:"selected_date,omitempty"`
	StartDate string               `json:"start_date,omitempty"`
	EndDate   string               `json:"end_date,omitempty"`
	Days      []schedule.Weekday   `json:"selected_days,omitempty"`
	Routes    []schedule.Route     `json:"routes"`
	RideCount int                  `json:"ride_count"`
	Quote     pricing.Quote        `json:"quote"`
	Summary   string               `json:"summary"`
	Status    schedule.Status      `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toBookingResp(b *schedule.Booking) bookingResp {
	return bookingResp{
		ID:        string(b.ID),
		Type:      b.Type,
		Date:      formatDate(b.Date),
		StartDate: formatDate(b.StartDate),
		EndDate:   formatDate(b.EndDate),
		Days:      b.Days,
		Routes:    b.Routes,
		RideCount: b.RideCount,
		Quote:     b.Quote,
		Summary:   b.Quote.Summary(),
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

// TimeOptions handles GET /api/schedules/time-options.
func (h *ScheduleHandler) TimeOptions(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"options": schedule.TimeOptions()})
}

type windowReq struct {
	PickupTime  string `json:"pickup_time"`
	DropoffTime string `json:"dropoff_time"`
}

// ValidateWindow handles POST /api/schedules/validate-window. "valid" is the
// lenient form check; "error" reports what a submission would reject.
func (h *ScheduleHandler) ValidateWindow(c *gin.Context) {
	var req windowReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	resp := gin.H{"valid": schedule.IsTimeWindowValid(req.PickupTime, req.DropoffTime)}
	if err := schedule.ValidateTimeWindow(req.PickupTime, req.DropoffTime); err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(c, http.StatusOK, resp)
}

type dropoffReq struct {
	PickupTime      string `json:"pickup_time"`
	DurationSeconds *int   `json:"duration_seconds"`
	Pickup          string `json:"pickup"`
	Dropoff         string `json:"dropoff"`
}

// DeriveDropoff handles POST /api/schedules/derive-dropoff. With an explicit
// duration the derivation is pure; otherwise the travel estimate is used.
func (h *ScheduleHandler) DeriveDropoff(c *gin.Context) {
	var req dropoffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := schedule.ParseClock(req.PickupTime); err != nil {
		writeScheduleError(c, err)
		return
	}
	var dropoff string
	if req.DurationSeconds != nil {
		dropoff = schedule.DeriveDropoffTime(req.PickupTime, *req.DurationSeconds)
	} else {
		r := h.svc.FillDropoff(c.Request.Context(), schedule.Route{
			Pickup:     req.Pickup,
			Dropoff:    req.Dropoff,
			PickupTime: req.PickupTime,
		})
		dropoff = r.DropoffTime
	}
	writeJSON(c, http.StatusOK, gin.H{"pickup_time": req.PickupTime, "dropoff_time": dropoff})
}

type createBookingReq struct {
	Type      schedule.BookingType `json:"ride_type"`
	Date      string               `json:"selected_date"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Days      []schedule.Weekday   `json:"selected_days"`
	Routes    []schedule.Route     `json:"routes"`
}

func parseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// Create handles POST /api/schedules.
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := schedule.SubmitCommand{
		UserID: caller(c),
		Type:   req.Type,
		Days:   req.Days,
		Routes: req.Routes,
	}
	var ok bool
	if cmd.Date, ok = parseDate(req.Date); !ok {
		writeError(c, http.StatusBadRequest, "invalid selected_date")
		return
	}
	if cmd.StartDate, ok = parseDate(req.StartDate); !ok {
		writeError(c, http.StatusBadRequest, "invalid start_date")
		return
	}
	if cmd.EndDate, ok = parseDate(req.EndDate); !ok {
		writeError(c, http.StatusBadRequest, "invalid end_date")
		return
	}

	b, err := h.svc.Submit(c.Request.Context(), cmd)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toBookingResp(b))
}

// List handles GET /api/schedules.
func (h *ScheduleHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), caller(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	out := make([]bookingResp, 0, len(list))
	for i := range list {
		out = append(out, toBookingResp(&list[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"schedules": out})
}

// Get handles GET /api/schedules/:id.
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBookingResp(b))
}

// Cancel handles POST /api/schedules/:id/cancel.
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), schedule.CancelCommand{UserID: caller(c), BookingID: id}); err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "status": schedule.StatusCancelled})
}

// SaveDraft handles PUT /api/schedules/draft.
func (h *ScheduleHandler) SaveDraft(c *gin.Context) {
	var d schedule.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.SaveDraft(c.Request.Context(), caller(c), d); err != nil {
		writeScheduleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LoadDraft handles GET /api/schedules/draft.
func (h *ScheduleHandler) LoadDraft(c *gin.Context) {
	d, err := h.svc.LoadDraft(c.Request.Context(), caller(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

// ClearDraft handles DELETE /api/schedules/draft.
func (h *ScheduleHandler) ClearDraft(c *gin.Context) {
	if err := h.svc.ClearDraft(c.Request.Context(), caller(c)); err != nil {
		writeScheduleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

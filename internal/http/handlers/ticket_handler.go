// README: Ticket handlers for catalog, quotes, checkout, payment and wallet.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/ticket"
	"ridepass/internal/types"
)

type TicketHandler struct {
	pricing *pricing.Service
	tickets *ticket.Service
}

func NewTicketHandler(pricingSvc *pricing.Service, ticketSvc *ticket.Service) *TicketHandler {
	return &TicketHandler{pricing: pricingSvc, tickets: ticketSvc}
}

type catalogItem struct {
	Kind         pricing.Kind `json:"kind"`
	Label        string       `json:"label"`
	BaseRides    int          `json:"ticket_count"`
	BonusRides   int          `json:"bonus_ticket_count"`
	PricePerRide int64        `json:"ticket_price"`
	Price        int64        `json:"price"`
}

// Catalog handles GET /api/tickets/catalog.
func (h *TicketHandler) Catalog(c *gin.Context) {
	cat := h.pricing.Catalog(c.Request.Context())
	items := make([]catalogItem, 0, 3)
	for _, b := range cat.Bundles() {
		items = append(items, catalogItem{
			Kind:         b.Kind,
			Label:        b.Label(),
			BaseRides:    b.BaseRides,
			BonusRides:   b.BonusRides,
			PricePerRide: b.PerRidePrice(),
			Price:        b.Price,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"currency": cat.Currency, "tickets": items})
}

type quoteReq struct {
	Rides int `json:"rides"`
}

type quoteResp struct {
	pricing.Quote
	Summary string `json:"summary"`
}

// Quote handles POST /api/tickets/quote.
func (h *TicketHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.pricing.Quote(c.Request.Context(), req.Rides)
	if err != nil {
		writeTicketError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{Quote: q, Summary: q.Summary()})
}

type checkoutReq struct {
	Rides     int    `json:"rides"`
	BookingID string `json:"booking_id"`
}

// Checkout handles POST /api/tickets/checkout.
func (h *TicketHandler) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := ticket.CheckoutCommand{UserID: caller(c), Rides: req.Rides}
	if req.BookingID = strings.TrimSpace(req.BookingID); req.BookingID != "" {
		if !isValidID(req.BookingID) {
			writeError(c, http.StatusBadRequest, "invalid booking_id")
			return
		}
		id := types.ID(req.BookingID)
		cmd.BookingID = &id
	}
	p, err := h.tickets.Checkout(c.Request.Context(), cmd)
	if err != nil {
		writeTicketError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, p)
}

// Confirm handles POST /api/tickets/purchases/:order_id/confirm.
func (h *TicketHandler) Confirm(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	p, err := h.tickets.Confirm(c.Request.Context(), ticket.ConfirmCommand{UserID: caller(c), OrderID: string(orderID)})
	if err != nil {
		writeTicketError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// Get handles GET /api/tickets/purchases/:order_id.
func (h *TicketHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	p, err := h.tickets.Get(c.Request.Context(), caller(c), string(orderID))
	if err != nil {
		writeTicketError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// List handles GET /api/tickets/purchases.
func (h *TicketHandler) List(c *gin.Context) {
	list, err := h.tickets.List(c.Request.Context(), caller(c))
	if err != nil {
		writeTicketError(c, err)
		return
	}
	if list == nil {
		list = []ticket.Purchase{}
	}
	writeJSON(c, http.StatusOK, gin.H{"purchases": list})
}

// Receipt handles GET /api/tickets/purchases/:order_id/receipt.
func (h *TicketHandler) Receipt(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	pdf, filename, err := h.tickets.Receipt(c.Request.Context(), caller(c), string(orderID))
	if err != nil {
		writeTicketError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Balance handles GET /api/tickets/balance.
func (h *TicketHandler) Balance(c *gin.Context) {
	w, err := h.tickets.Balance(c.Request.Context(), caller(c))
	if err != nil {
		writeTicketError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, w)
}

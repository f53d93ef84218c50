// README: Location handlers for saved places, address search and estimates.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridepass/internal/maps"
	"ridepass/internal/modules/location"
	"ridepass/internal/utils"
)

type LocationHandler struct {
	svc       *location.Service
	searcher  maps.AddressSearcher
	estimator maps.Estimator
}

func NewLocationHandler(svc *location.Service, searcher maps.AddressSearcher, estimator maps.Estimator) *LocationHandler {
	if searcher == nil {
		searcher = maps.PlaceholderSearcher{}
	}
	if estimator == nil {
		estimator = maps.PlaceholderEstimator{}
	}
	return &LocationHandler{svc: svc, searcher: searcher, estimator: estimator}
}

// List handles GET /api/locations.
func (h *LocationHandler) List(c *gin.Context) {
	locs, err := h.svc.List(c.Request.Context(), caller(c))
	if err != nil {
		writeLocationError(c, err)
		return
	}
	if locs == nil {
		locs = []location.Location{}
	}
	writeJSON(c, http.StatusOK, gin.H{"locations": locs, "max": location.MaxLocations})
}

type locationReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Create handles POST /api/locations.
func (h *LocationHandler) Create(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	loc, err := h.svc.Add(c.Request.Context(), location.AddCommand{
		UserID:  caller(c),
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, loc)
}

type locationPatchReq struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// Update handles PATCH /api/locations/:id.
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req locationPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	loc, err := h.svc.Update(c.Request.Context(), caller(c), id, location.Patch{Name: req.Name, Address: req.Address})
	if err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, loc)
}

// Delete handles DELETE /api/locations/:id.
func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller(c), id); err != nil {
		writeLocationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles GET /api/locations/search?q=.
func (h *LocationHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		writeJSON(c, http.StatusOK, gin.H{"results": []maps.AddressResult{}})
		return
	}
	results, err := h.searcher.SearchAddress(c.Request.Context(), q)
	if err != nil {
		utils.LogEvent("location", "search", "q=%q err=%v", q, err)
		writeError(c, http.StatusBadGateway, "address search unavailable")
		return
	}
	if results == nil {
		results = []maps.AddressResult{}
	}
	writeJSON(c, http.StatusOK, gin.H{"results": results})
}

type estimateReq struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Estimate handles POST /api/locations/estimate.
func (h *LocationHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	est, err := h.estimator.Estimate(c.Request.Context(), req.Origin, req.Destination)
	if err != nil {
		utils.LogEvent("location", "estimate", "origin=%q destination=%q err=%v", req.Origin, req.Destination, err)
		writeError(c, http.StatusBadGateway, "route estimate unavailable")
		return
	}
	writeJSON(c, http.StatusOK, est)
}

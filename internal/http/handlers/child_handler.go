// README: Child profile handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepass/internal/modules/child"
)

type ChildHandler struct {
	svc *child.Service
}

func NewChildHandler(svc *child.Service) *ChildHandler {
	return &ChildHandler{svc: svc}
}

// List handles GET /api/children.
func (h *ChildHandler) List(c *gin.Context) {
	kids, err := h.svc.List(c.Request.Context(), caller(c))
	if err != nil {
		writeChildError(c, err)
		return
	}
	now := h.svc.Now()
	out := make([]child.View, 0, len(kids))
	for _, k := range kids {
		out = append(out, k.View(now))
	}
	writeJSON(c, http.StatusOK, gin.H{"children": out, "max": child.MaxChildren})
}

type childReq struct {
	Name      string       `json:"name"`
	Birthdate string       `json:"birthdate"`
	Gender    child.Gender `json:"gender"`
	Notes     string       `json:"notes"`
}

// Create handles POST /api/children.
func (h *ChildHandler) Create(c *gin.Context) {
	var req childReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	k, err := h.svc.Add(c.Request.Context(), child.AddCommand{
		UserID:    caller(c),
		Name:      req.Name,
		Birthdate: req.Birthdate,
		Gender:    req.Gender,
		Notes:     req.Notes,
	})
	if err != nil {
		writeChildError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, k.View(h.svc.Now()))
}

type childPatchReq struct {
	Name      *string       `json:"name"`
	Birthdate *string       `json:"birthdate"`
	Gender    *child.Gender `json:"gender"`
	Notes     *string       `json:"notes"`
}

// Update handles PATCH /api/children/:id.
func (h *ChildHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req childPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	k, err := h.svc.Update(c.Request.Context(), caller(c), id, child.Patch{
		Name:      req.Name,
		Birthdate: req.Birthdate,
		Gender:    req.Gender,
		Notes:     req.Notes,
	})
	if err != nil {
		writeChildError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, k.View(h.svc.Now()))
}

// Delete handles DELETE /api/children/:id.
func (h *ChildHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller(c), id); err != nil {
		writeChildError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package presence

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/shared/server/respond"
)

// Handler exposes beacon-style presence endpoints for clients that are not on
// a live sync connection (the heartbeat is otherwise driven by the session).
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches presence routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/presence", h.touch)
	rg.DELETE("/documents/:id/presence", h.leave)
}

func (h *Handler) touch(c *gin.Context) {
	user := documents.IdentityFromContext(c)

	if err := h.Svc.Touch(c.Request.Context(), c.Param("id"), user); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record presence", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"status": "active"})
}

func (h *Handler) leave(c *gin.Context) {
	user := documents.IdentityFromContext(c)

	if err := h.Svc.Leave(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear presence", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"status": "left"})
}

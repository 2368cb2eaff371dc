package exports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/export", h.export)
}

func (h *Handler) export(c *gin.Context) {
	user := documents.IdentityFromContext(c)

	result, err := h.Svc.Export(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", "You don't have permission to access this document. Please ask the owner to add you as a collaborator.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, result)
}

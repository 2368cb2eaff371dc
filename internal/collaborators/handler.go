package collaborators

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

// RegisterRoutes attaches collaborator routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/collaborators", h.add)
	rg.DELETE("/documents/:id/collaborators/:email", h.remove)
}

type addRequest struct {
	Email string `json:"email"`
}

func (h *Handler) add(c *gin.Context) {
	user := documents.IdentityFromContext(c)

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	notified, err := h.Svc.Add(c.Request.Context(), c.Param("id"), user, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "a valid email is required", nil)
		case errors.Is(err, ErrSelfCollaborator):
			respond.Error(c, http.StatusBadRequest, "self_collaborator", "You can't add yourself as a collaborator", nil)
		case errors.Is(err, ErrAlreadyCollaborator):
			respond.Error(c, http.StatusConflict, "already_collaborator", "This person is already a collaborator", nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", "You don't have permission to share this document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Error adding collaborator", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message":  "Collaborator added successfully",
		"notified": notified,
	})
}

func (h *Handler) remove(c *gin.Context) {
	user := documents.IdentityFromContext(c)

	err := h.Svc.Remove(c.Request.Context(), c.Param("id"), user, c.Param("email"))
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", "You don't have permission to share this document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to remove collaborator", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Collaborator removed"})
}

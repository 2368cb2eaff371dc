package documents

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/shared/server/middleware"
	"augenblick-backend/internal/shared/server/respond"
)

const accessDeniedMessage = "You don't have permission to access this document. Please ask the owner to add you as a collaborator."

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PUT("/documents/:id/content", h.saveContent)
	rg.PUT("/documents/:id/title", h.updateTitle)
}

// IdentityFromContext assembles the caller identity from the auth middleware
// context keys.
func IdentityFromContext(c *gin.Context) Identity {
	return Identity{
		ID:          middleware.UserIDFromContext(c),
		DisplayName: middleware.UserNameFromContext(c),
		Email:       middleware.UserEmailFromContext(c),
		PhotoURL:    middleware.UserPictureFromContext(c),
	}
}

func (h *Handler) list(c *gin.Context) {
	user := IdentityFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), user.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) get(c *gin.Context) {
	user := IdentityFromContext(c)

	doc, err := h.Svc.Load(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", accessDeniedMessage, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, doc)
}

type saveContentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) saveContent(c *gin.Context) {
	user := IdentityFromContext(c)

	var req saveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	savedAt, err := h.Svc.Save(c.Request.Context(), c.Param("id"), user, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", accessDeniedMessage, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"status":    "saved",
		"lastSaved": savedAt.Format(time.RFC3339),
	})
}

type updateTitleRequest struct {
	Title string `json:"title"`
}

func (h *Handler) updateTitle(c *gin.Context) {
	user := IdentityFromContext(c)

	var req updateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	err := h.Svc.UpdateTitle(c.Request.Context(), c.Param("id"), user, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", accessDeniedMessage, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update title", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Title updated"})
}

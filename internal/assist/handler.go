package assist

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/llm"
	"augenblick-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assist routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assist/rewrite", h.rewrite)
	rg.POST("/assist/grammar", h.grammar)
	rg.POST("/documents/:id/grammar/apply", h.applyCorrection)
}

type rewriteRequest struct {
	Content     string `json:"content"`
	Instruction string `json:"instruction"`
}

func (h *Handler) rewrite(c *gin.Context) {
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Rewrite(c.Request.Context(), req.Content, req.Instruction)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "instruction is required", nil)
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "AI assistance is not configured", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "llm_error", "Error processing your request", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"content": result})
}

type grammarRequest struct {
	Content string `json:"content"`
}

func (h *Handler) grammar(c *gin.Context) {
	var req grammarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	report, err := h.Svc.CheckGrammar(c.Request.Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "AI assistance is not configured", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "llm_error", "Error checking grammar", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, report)
}

type applyCorrectionRequest struct {
	Incorrect string `json:"incorrect"`
	Correct   string `json:"correct"`
}

func (h *Handler) applyCorrection(c *gin.Context) {
	user := documents.IdentityFromContext(c)

	var req applyCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	content, savedAt, err := h.Svc.ApplyCorrection(c.Request.Context(), c.Param("id"), user, req.Incorrect, req.Correct)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "incorrect is required", nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrAccessDenied):
			respond.Error(c, http.StatusForbidden, "access_denied", "You don't have permission to access this document. Please ask the owner to add you as a collaborator.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to apply correction", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"content":   content,
		"lastSaved": savedAt.Format(time.RFC3339),
	})
}

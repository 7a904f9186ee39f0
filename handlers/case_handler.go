package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"legalassist-backend/models"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CaseHandler handles HTTP requests for saved cases
type CaseHandler struct {
	caseService *service.CaseService
	logger      *zap.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService, logger *zap.Logger) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
		logger:      logger,
	}
}

// SaveCase handles POST /api/cases
func (h *CaseHandler) SaveCase(c *gin.Context) {
	var result models.ComparisonResult
	if err := c.ShouldBindJSON(&result); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", msgInvalidRequest)
		return
	}

	saved, err := h.caseService.SaveCase(c.Request.Context(), currentUserID(c), &result)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", msgSignInToSave)
			return
		}
		h.logger.Error("failed to save case", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "SAVE_FAILED", msgSaveFailed)
		return
	}

	respondOK(c, http.StatusCreated, saved, msgCaseSaved)
}

// DeleteCasesByTitle handles DELETE /api/cases?title=...
func (h *CaseHandler) DeleteCasesByTitle(c *gin.Context) {
	title, ok := c.GetQuery("title")
	if !ok {
		respondError(c, http.StatusBadRequest, "MISSING_TITLE", msgInvalidRequest)
		return
	}

	deleted, err := h.caseService.DeleteCaseByTitle(c.Request.Context(), currentUserID(c), title)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", msgSignInToDelete)
			return
		}
		h.logger.Error("failed to delete cases", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", msgDeleteFailed)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": deleted}, msgCaseDeleted)
}

// DeleteCase handles DELETE /api/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	id, ok := parseCaseID(c)
	if !ok {
		return
	}

	err := h.caseService.DeleteCase(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", msgSignInToDelete)
		case errors.Is(err, service.ErrCaseNotFound):
			respondError(c, http.StatusNotFound, "NOT_FOUND", msgCaseNotFound)
		default:
			h.logger.Error("failed to delete case", zap.String("case_id", id.String()), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "DELETE_FAILED", msgDeleteFailed)
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": 1}, msgCaseDeleted)
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	cases, err := h.caseService.ListCases(c.Request.Context(), currentUser(c).ID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list cases", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", msgLibraryFailed)
		return
	}

	respondOK(c, http.StatusOK, cases, "")
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := parseCaseID(c)
	if !ok {
		return
	}

	saved, err := h.caseService.GetCase(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", msgCaseNotFound)
			return
		}
		h.logger.Error("failed to get case", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", msgLibraryFailed)
		return
	}

	respondOK(c, http.StatusOK, saved, "")
}

// ExportCase handles GET /api/cases/:id/export
func (h *CaseHandler) ExportCase(c *gin.Context) {
	id, ok := parseCaseID(c)
	if !ok {
		return
	}

	saved, reader, err := h.caseService.ExportCase(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", msgCaseNotFound)
			return
		}
		h.logger.Error("failed to export case", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", msgExportFailed)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "application/json", reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=\"%s.json\"", saved.CaseID),
	})
}

func parseCaseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID format")
		return uuid.Nil, false
	}
	return id, true
}

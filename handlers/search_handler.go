package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"legalassist-backend/models"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchHandler handles HTTP requests for legal searches and history
type SearchHandler struct {
	searchService *service.SearchService
	logger        *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// SearchRequest represents the request body for a search
type SearchRequest struct {
	Query        string `json:"query"`
	Jurisdiction string `json:"jurisdiction"`
}

// Search handles POST /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", msgInvalidRequest)
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), service.SearchRequest{
		Query:        req.Query,
		Jurisdiction: models.ParseJurisdiction(req.Jurisdiction),
		UserID:       currentUserID(c),
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			respondError(c, http.StatusBadRequest, "EMPTY_QUERY", msgEmptyQuery)
			return
		}
		respondError(c, http.StatusBadGateway, "ANALYSIS_FAILED", msgAnalysisFailed)
		return
	}

	respondOK(c, http.StatusOK, result.Result, msgAnalysisComplete)
}

// ListHistory handles GET /api/history
func (h *SearchHandler) ListHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.searchService.ListHistory(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		h.logger.Error("list history failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", msgHistoryFailed)
		return
	}

	respondOK(c, http.StatusOK, entries, "")
}

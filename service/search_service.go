package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"legalassist-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

// SearchService runs legal queries against the analyzer and records history
type SearchService struct {
	analyzer     Analyzer
	historyStore HistoryStore
	timeout      time.Duration
	logger       *zap.Logger
}

// SearchServiceOption is a functional option for SearchService
type SearchServiceOption func(*SearchService)

// WithAnalyzer sets the analyzer
func WithAnalyzer(a Analyzer) SearchServiceOption {
	return func(s *SearchService) {
		s.analyzer = a
	}
}

// WithHistoryStore sets the search history store
func WithHistoryStore(store HistoryStore) SearchServiceOption {
	return func(s *SearchService) {
		s.historyStore = store
	}
}

// WithAnalysisTimeout bounds each analyzer call. Zero disables the bound.
func WithAnalysisTimeout(d time.Duration) SearchServiceOption {
	return func(s *SearchService) {
		s.timeout = d
	}
}

// WithSearchLogger sets the logger
func WithSearchLogger(logger *zap.Logger) SearchServiceOption {
	return func(s *SearchService) {
		s.logger = logger
	}
}

// NewSearchService creates a new search service
func NewSearchService(opts ...SearchServiceOption) *SearchService {
	s := &SearchService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchRequest represents a legal query submission
type SearchRequest struct {
	Query        string
	Jurisdiction models.Jurisdiction
	UserID       *uuid.UUID // nil for anonymous searches; no history is kept
}

// SearchResult wraps the analyzer's result
type SearchResult struct {
	Result *models.ComparisonResult
}

// Search validates the query, runs the analysis and records history
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	if s.analyzer == nil {
		return nil, errors.New("analyzer not set")
	}

	analyzeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		analyzeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.analyzer.Analyze(analyzeCtx, req.Jurisdiction.AnalysisQuery(req.Query))
	if err != nil {
		s.logger.Error("search failed",
			zap.String("jurisdiction", string(req.Jurisdiction)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	if req.UserID != nil {
		s.recordHistory(ctx, *req.UserID, req.Jurisdiction.HistoryQuery(req.Query), result.ResultsCount())
	}

	return &SearchResult{Result: result}, nil
}

// recordHistory is best effort; failures never reach the caller
func (s *SearchService) recordHistory(ctx context.Context, userID uuid.UUID, query string, count int) {
	if s.historyStore == nil {
		return
	}
	entry := &models.SearchHistory{
		UserID:       userID,
		Query:        query,
		ResultsCount: count,
	}
	if err := s.historyStore.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to save search history",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

// ListHistory returns the user's most recent searches
func (s *SearchService) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.SearchHistory, error) {
	if s.historyStore == nil {
		return nil, errors.New("history store not set")
	}
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	entries, err := s.historyStore.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list search history")
	}
	if entries == nil {
		entries = []*models.SearchHistory{}
	}
	return entries, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"legalassist-backend/models"
	"legalassist-backend/repository"
	"legalassist-backend/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultCaseLimit = 50
	maxCaseLimit     = 100
)

// CaseService saves and deletes comparison results as cases
type CaseService struct {
	caseStore CaseStore
	storage   storage.Storage
	now       func() time.Time
	logger    *zap.Logger
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// WithCaseStore sets the saved case store
func WithCaseStore(store CaseStore) CaseServiceOption {
	return func(s *CaseService) {
		s.caseStore = store
	}
}

// WithArchiveStorage sets where case JSON archives are written
func WithArchiveStorage(st storage.Storage) CaseServiceOption {
	return func(s *CaseService) {
		s.storage = st
	}
}

// WithCaseClock overrides the time source
func WithCaseClock(now func() time.Time) CaseServiceOption {
	return func(s *CaseService) {
		s.now = now
	}
}

// WithCaseLogger sets the logger
func WithCaseLogger(logger *zap.Logger) CaseServiceOption {
	return func(s *CaseService) {
		s.logger = logger
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveCase stores result as a new case owned by userID. Duplicate titles are allowed.
func (s *CaseService) SaveCase(ctx context.Context, userID *uuid.UUID, result *models.ComparisonResult) (*models.SavedCase, error) {
	if userID == nil {
		return nil, ErrUnauthenticated
	}
	if result == nil {
		return nil, ErrInvalidCase
	}
	if s.caseStore == nil {
		return nil, errors.New("case store not set")
	}

	notes, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "encode case notes")
	}

	now := s.now().UTC()
	c := &models.SavedCase{
		ID:           uuid.New(),
		CaseID:       fmt.Sprintf("case-%d", now.UnixMilli()),
		Title:        result.Query,
		CourtName:    models.CourtNameAIAnalysis,
		Notes:        string(notes),
		UserID:       *userID,
		DecisionDate: now,
	}

	if s.storage != nil {
		key := storage.CaseArchiveKey(c.UserID, c.ID)
		if err := s.storage.Put(ctx, key, "application/json", bytes.NewReader(notes)); err != nil {
			s.logger.Warn("failed to archive case", zap.String("case_id", c.ID.String()), zap.Error(err))
		} else {
			c.StoragePath = &key
		}
	}

	if err := s.caseStore.Create(ctx, c); err != nil {
		if c.StoragePath != nil {
			s.removeArchive(ctx, *c.StoragePath)
		}
		return nil, errors.Wrap(err, "save case")
	}

	s.logger.Info("case saved", zap.String("case_id", c.ID.String()), zap.String("user_id", c.UserID.String()))
	return c, nil
}

// DeleteCaseByTitle removes every case of the user with exactly this title
func (s *CaseService) DeleteCaseByTitle(ctx context.Context, userID *uuid.UUID, title string) (int, error) {
	if userID == nil {
		return 0, ErrUnauthenticated
	}
	if s.caseStore == nil {
		return 0, errors.New("case store not set")
	}

	deleted, err := s.caseStore.DeleteByTitle(ctx, *userID, title)
	if err != nil {
		return 0, errors.Wrap(err, "delete cases by title")
	}
	for _, c := range deleted {
		if c.StoragePath != nil {
			s.removeArchive(ctx, *c.StoragePath)
		}
	}
	return len(deleted), nil
}

// DeleteCase removes a single case by its identifier
func (s *CaseService) DeleteCase(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error {
	if userID == nil {
		return ErrUnauthenticated
	}
	if s.caseStore == nil {
		return errors.New("case store not set")
	}

	c, err := s.caseStore.DeleteByID(ctx, *userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCaseNotFound
		}
		return errors.Wrap(err, "delete case")
	}
	if c.StoragePath != nil {
		s.removeArchive(ctx, *c.StoragePath)
	}
	return nil
}

// ListCases returns the user's saved cases, newest first
func (s *CaseService) ListCases(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SavedCase, error) {
	if s.caseStore == nil {
		return nil, errors.New("case store not set")
	}
	if limit <= 0 || limit > maxCaseLimit {
		limit = defaultCaseLimit
	}
	if offset < 0 {
		offset = 0
	}
	cases, err := s.caseStore.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list cases")
	}
	if cases == nil {
		cases = []*models.SavedCase{}
	}
	return cases, nil
}

// GetCase returns one of the user's cases
func (s *CaseService) GetCase(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error) {
	if s.caseStore == nil {
		return nil, errors.New("case store not set")
	}
	c, err := s.caseStore.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, errors.Wrap(err, "get case")
	}
	return c, nil
}

// ExportCase opens the case's archived JSON, falling back to the stored notes
func (s *CaseService) ExportCase(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, io.ReadCloser, error) {
	c, err := s.GetCase(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	if c.StoragePath != nil && s.storage != nil {
		rc, err := s.storage.Get(ctx, *c.StoragePath)
		if err == nil {
			return c, rc, nil
		}
		s.logger.Warn("case archive unavailable, exporting notes",
			zap.String("case_id", c.ID.String()),
			zap.Error(err))
	}
	return c, io.NopCloser(bytes.NewReader([]byte(c.Notes))), nil
}

func (s *CaseService) removeArchive(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove case archive", zap.String("key", key), zap.Error(err))
	}
}

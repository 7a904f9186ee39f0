package service

import (
	"context"

	"legalassist-backend/models"

	"github.com/google/uuid"
)

// CaseStore persists saved cases. Implemented by repository.SavedCaseRepository.
type CaseStore interface {
	Create(ctx context.Context, c *models.SavedCase) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SavedCase, error)
	DeleteByTitle(ctx context.Context, userID uuid.UUID, title string) ([]*models.SavedCase, error)
	DeleteByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error)
}

// HistoryStore persists search history. Implemented by repository.SearchHistoryRepository.
type HistoryStore interface {
	Create(ctx context.Context, h *models.SearchHistory) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.SearchHistory, error)
}

// UserStore looks up users. Implemented by repository.UserRepository.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SessionStore persists sessions. Implemented by repository.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

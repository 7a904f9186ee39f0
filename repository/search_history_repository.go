package repository

import (
	"context"

	"legalassist-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchHistoryRepository handles database operations for search history
type SearchHistoryRepository struct {
	db *pgxpool.Pool
}

// NewSearchHistoryRepository creates a new search history repository
func NewSearchHistoryRepository(db *pgxpool.Pool) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Create records a search
func (r *SearchHistoryRepository) Create(ctx context.Context, h *models.SearchHistory) error {
	query := `
		INSERT INTO search_history (user_id, query, results_count)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, h.UserID, h.Query, h.ResultsCount).Scan(&h.ID, &h.CreatedAt)
}

// ListByUserID retrieves the user's most recent searches
func (r *SearchHistoryRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.SearchHistory, error) {
	query := `
		SELECT id, user_id, query, results_count, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.SearchHistory
	for rows.Next() {
		h := &models.SearchHistory{}
		if err := rows.Scan(&h.ID, &h.UserID, &h.Query, &h.ResultsCount, &h.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"legalassist-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const savedCaseColumns = `id, case_id, title, court_name, notes, user_id, decision_date, storage_path, created_at`

// SavedCaseRepository handles database operations for saved cases
type SavedCaseRepository struct {
	db *pgxpool.Pool
}

// NewSavedCaseRepository creates a new saved case repository
func NewSavedCaseRepository(db *pgxpool.Pool) *SavedCaseRepository {
	return &SavedCaseRepository{db: db}
}

// Create inserts a saved case. A zero ID is generated by the database.
func (r *SavedCaseRepository) Create(ctx context.Context, c *models.SavedCase) error {
	query := `
		INSERT INTO saved_cases (
			id, case_id, title, court_name, notes, user_id, decision_date, storage_path
		) VALUES (COALESCE($1, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	var id *uuid.UUID
	if c.ID != uuid.Nil {
		id = &c.ID
	}

	return r.db.QueryRow(
		ctx, query,
		id,
		c.CaseID,
		c.Title,
		c.CourtName,
		c.Notes,
		c.UserID,
		c.DecisionDate,
		c.StoragePath,
	).Scan(&c.ID, &c.CreatedAt)
}

// GetByID retrieves a case owned by userID
func (r *SavedCaseRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error) {
	query := `SELECT ` + savedCaseColumns + `
		FROM saved_cases
		WHERE id = $1 AND user_id = $2`

	c, err := scanSavedCase(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return c, nil
}

// ListByUserID retrieves a user's cases, newest first
func (r *SavedCaseRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SavedCase, error) {
	query := `SELECT ` + savedCaseColumns + `
		FROM saved_cases
		WHERE user_id = $1
		ORDER BY created_at DESC`

	args := []interface{}{userID}
	argIndex := 2
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSavedCases(rows)
}

// DeleteByTitle removes every case of the user with the given title and returns the removed rows
func (r *SavedCaseRepository) DeleteByTitle(ctx context.Context, userID uuid.UUID, title string) ([]*models.SavedCase, error) {
	query := `DELETE FROM saved_cases
		WHERE title = $1 AND user_id = $2
		RETURNING ` + savedCaseColumns

	rows, err := r.db.Query(ctx, query, title, userID)
	if err != nil {
		return nil, err
	}
	return collectSavedCases(rows)
}

// DeleteByID removes one case of the user and returns it
func (r *SavedCaseRepository) DeleteByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error) {
	query := `DELETE FROM saved_cases
		WHERE id = $1 AND user_id = $2
		RETURNING ` + savedCaseColumns

	c, err := scanSavedCase(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return c, nil
}

func scanSavedCase(row pgx.Row) (*models.SavedCase, error) {
	c := &models.SavedCase{}
	err := row.Scan(
		&c.ID,
		&c.CaseID,
		&c.Title,
		&c.CourtName,
		&c.Notes,
		&c.UserID,
		&c.DecisionDate,
		&c.StoragePath,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func collectSavedCases(rows pgx.Rows) ([]*models.SavedCase, error) {
	defer rows.Close()

	var cases []*models.SavedCase
	for rows.Next() {
		c, err := scanSavedCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

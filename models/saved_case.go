package models

import (
	"time"

	"github.com/google/uuid"
)

// CourtNameAIAnalysis is recorded on every case saved from an analysis result
const CourtNameAIAnalysis = "AI Analysis"

// SavedCase represents a user-owned copy of a comparison result
type SavedCase struct {
	ID           uuid.UUID `json:"id"`
	CaseID       string    `json:"case_id"`
	Title        string    `json:"title"`
	CourtName    string    `json:"court_name"`
	Notes        string    `json:"notes"` // ComparisonResult serialized as JSON
	UserID       uuid.UUID `json:"user_id"`
	DecisionDate time.Time `json:"decision_date"`
	StoragePath  *string   `json:"storage_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"legalassist-backend/models"
	"legalassist-backend/repository"
	"legalassist-backend/storage"

	"github.com/google/uuid"
)

type MockAnalyzer struct {
	Result    *models.ComparisonResult
	Err       error
	Calls     int
	LastQuery string
}

func (m *MockAnalyzer) Analyze(ctx context.Context, query string) (*models.ComparisonResult, error) {
	m.Calls++
	m.LastQuery = query
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

type MockGenerator struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	return m.Response, m.Err
}

type MockHistoryStore struct {
	Entries   []*models.SearchHistory
	CreateErr error
	ListErr   error
}

func (m *MockHistoryStore) Create(ctx context.Context, h *models.SearchHistory) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	h.ID = uuid.New()
	m.Entries = append(m.Entries, h)
	return nil
}

func (m *MockHistoryStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.SearchHistory, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*models.SearchHistory
	for i := len(m.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Entries[i].UserID == userID {
			out = append(out, m.Entries[i])
		}
	}
	return out, nil
}

type MockCaseStore struct {
	Cases     []*models.SavedCase
	CreateErr error
	DeleteErr error
	Calls     int

	LastLimit  int
	LastOffset int
}

func (m *MockCaseStore) Create(ctx context.Context, c *models.SavedCase) error {
	m.Calls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Cases = append(m.Cases, c)
	return nil
}

func (m *MockCaseStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error) {
	m.Calls++
	for _, c := range m.Cases {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCaseStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SavedCase, error) {
	m.Calls++
	m.LastLimit, m.LastOffset = limit, offset
	var out []*models.SavedCase
	for _, c := range m.Cases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCaseStore) DeleteByTitle(ctx context.Context, userID uuid.UUID, title string) ([]*models.SavedCase, error) {
	m.Calls++
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}
	var kept, deleted []*models.SavedCase
	for _, c := range m.Cases {
		if c.UserID == userID && c.Title == title {
			deleted = append(deleted, c)
		} else {
			kept = append(kept, c)
		}
	}
	m.Cases = kept
	return deleted, nil
}

func (m *MockCaseStore) DeleteByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error) {
	m.Calls++
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}
	for i, c := range m.Cases {
		if c.ID == id && c.UserID == userID {
			m.Cases = append(m.Cases[:i], m.Cases[i+1:]...)
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type MockStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutErr  error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Objects: make(map[string][]byte)}
}

func (m *MockStorage) Put(ctx context.Context, key, contentType string, data io.Reader) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = b
	return nil
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

type MockUserStore struct {
	Users []*models.User
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type MockSessionStore struct {
	Sessions map[string]*models.Session
	Purges   atomic.Int64
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{Sessions: make(map[string]*models.Session)}
}

func (m *MockSessionStore) Create(ctx context.Context, s *models.Session) error {
	m.Sessions[s.Token] = s
	return nil
}

func (m *MockSessionStore) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	s, ok := m.Sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	delete(m.Sessions, token)
	return nil
}

func (m *MockSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	m.Purges.Add(1)
	return 0, nil
}

func sampleComparison(query string) *models.ComparisonResult {
	return &models.ComparisonResult{
		Query: query,
		Comparison: models.Comparison{
			CommonLaw: &models.LawBranch{
				Principles:   []string{"Duty of care"},
				CaseExamples: []string{"Donoghue v Stevenson", "Caparo v Dickman"},
				Relevance:    "High relevance",
				Analysis:     "Negligence is established by a duty, breach and damage.",
			},
			ContractLaw: &models.LawBranch{
				Principles:   []string{"Privity"},
				CaseExamples: []string{"Tweddle v Atkinson"},
				Relevance:    "Low",
				Analysis:     "No contract exists between the parties.",
			},
		},
		Recommendation: "Pursue a claim in tort.",
	}
}

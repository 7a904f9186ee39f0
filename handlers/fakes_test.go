package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"legalassist-backend/config"
	"legalassist-backend/models"
	"legalassist-backend/repository"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testCookieName = "legalassist_session"

type MockAnalyzer struct {
	mu        sync.Mutex
	Result    *models.ComparisonResult
	Err       error
	Calls     int
	LastQuery string
}

func (m *MockAnalyzer) Analyze(ctx context.Context, query string) (*models.ComparisonResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastQuery = query
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

type MockHistoryStore struct {
	mu      sync.Mutex
	Entries []*models.SearchHistory
}

func (m *MockHistoryStore) Create(ctx context.Context, h *models.SearchHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = uuid.New()
	m.Entries = append(m.Entries, h)
	return nil
}

func (m *MockHistoryStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.SearchHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SearchHistory
	for _, h := range m.Entries {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

type MockCaseStore struct {
	mu        sync.Mutex
	Cases     []*models.SavedCase
	CreateErr error
	Calls     int
}

func (m *MockCaseStore) Create(ctx context.Context, c *models.SavedCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Cases = append(m.Cases, c)
	return nil
}

func (m *MockCaseStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.SavedCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, c := range m.Cases {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCaseStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.SavedCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	var out []*models.SavedCase
	for _, c := range m.Cases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCaseStore) DeleteByTitle(ctx context.Context, userID uuid.UUID, title string) ([]*models.SavedCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for i, c := range m.Cases {
		if c.ID == id && c.UserID == userID {
			m.Cases = append(m.Cases[:i], m.Cases[i+1:]...)
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
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
	mu       sync.Mutex
	Sessions map[string]*models.Session
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{Sessions: make(map[string]*models.Session)}
}

func (m *MockSessionStore) Create(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[s.Token] = s
	return nil
}

func (m *MockSessionStore) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, token)
	return nil
}

func (m *MockSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// testEnv is a router backed by in-memory stores
type testEnv struct {
	router   *gin.Engine
	auth     *service.AuthService
	analyzer *MockAnalyzer
	history  *MockHistoryStore
	cases    *MockCaseStore
	users    *MockUserStore
	sessions *MockSessionStore
	user     *models.User
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithAnalyzer(t, nil)
}

// newTestEnvWithAnalyzer searches through analyzer instead of the mock when it is non-nil
func newTestEnvWithAnalyzer(t *testing.T, analyzer service.Analyzer) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		analyzer: &MockAnalyzer{Result: sampleComparison("Is a verbal agreement binding?")},
		history:  &MockHistoryStore{},
		cases:    &MockCaseStore{},
		sessions: NewMockSessionStore(),
		user: &models.User{
			ID:    uuid.New(),
			Email: "counsel@example.com",
			Name:  "Counsel",
		},
		token: "test-session-token",
	}
	env.users = &MockUserStore{Users: []*models.User{env.user}}
	env.sessions.Sessions[env.token] = &models.Session{
		Token:     env.token,
		UserID:    env.user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	env.auth = service.NewAuthService(
		service.WithUserStore(env.users),
		service.WithSessionStore(env.sessions),
	)

	if analyzer == nil {
		analyzer = env.analyzer
	}
	router, err := NewRouter(RouterDeps{
		SearchService: service.NewSearchService(
			service.WithAnalyzer(analyzer),
			service.WithHistoryStore(env.history),
		),
		CaseService: service.NewCaseService(service.WithCaseStore(env.cases)),
		AuthService: env.auth,
		Auth: config.AuthConfig{
			SessionTTL: time.Hour,
			CookieName: testCookieName,
		},
	})
	require.NoError(t, err)
	env.router = router
	return env
}

// do serves one request; a non-empty token is sent as a bearer header
func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// form posts url-encoded values; a non-empty token is sent as the session cookie
func (e *testEnv) form(path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func sampleComparison(query string) *models.ComparisonResult {
	return &models.ComparisonResult{
		Query: query,
		Comparison: models.Comparison{
			CommonLaw: &models.LawBranch{
				Principles:   []string{"Offer and acceptance"},
				CaseExamples: []string{"Carlill v Carbolic Smoke Ball Co", "Entores v Miles Far East"},
				Relevance:    "High - formation turns on agreement",
				Analysis:     "Oral contracts are generally enforceable.",
			},
			ContractLaw: &models.LawBranch{
				Principles:   []string{"Statute of Frauds"},
				CaseExamples: []string{"Actionstrength v International Glass"},
				Statutes:     []string{"Law of Property (Miscellaneous Provisions) Act 1989 s.2"},
				Relevance:    "Medium",
				Analysis:     "Some contracts must be evidenced in writing.",
			},
		},
		Recommendation: "Document the agreement in writing where possible.",
	}
}

var errUpstream = errors.New("upstream unavailable")

// remoteComparisonJSON carries fields the model does not declare, an empty statutes list and no
// contract law principles, all of which must reach clients and storage as sent
const remoteComparisonJSON = `{
  "query": "Is a verbal agreement binding?",
  "comparison": {
    "commonLaw": {"principles": ["Offer and acceptance"], "caseExamples": ["Carlill v Carbolic Smoke Ball Co"], "statutes": [], "relevance": "High", "analysis": "Oral contracts bind."},
    "contractLaw": {"caseExamples": ["Actionstrength v International Glass"], "relevance": "Medium", "analysis": "Writing is sometimes required."}
  },
  "recommendation": "Put it in writing.",
  "confidence": 0.82,
  "sources": ["Chitty on Contracts"]
}`

// newRemoteAnalyzer serves remoteComparisonJSON from a test server through a FunctionAnalyzer
func newRemoteAnalyzer(t *testing.T) service.Analyzer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(remoteComparisonJSON))
	}))
	t.Cleanup(srv.Close)
	return service.NewFunctionAnalyzer(srv.URL)
}

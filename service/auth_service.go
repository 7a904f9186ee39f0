package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"legalassist-backend/models"
	"legalassist-backend/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionTTL = 24 * time.Hour

// AuthService signs users in and out and resolves sessions
type AuthService struct {
	userStore    UserStore
	sessionStore SessionStore
	events       *AuthEventHub
	sessionTTL   time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// WithUserStore sets the user store
func WithUserStore(store UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.userStore = store
	}
}

// WithSessionStore sets the session store
func WithSessionStore(store SessionStore) AuthServiceOption {
	return func(s *AuthService) {
		s.sessionStore = store
	}
}

// WithAuthEvents sets the hub that receives sign-in/sign-out events
func WithAuthEvents(hub *AuthEventHub) AuthServiceOption {
	return func(s *AuthService) {
		s.events = hub
	}
}

// WithSessionTTL sets how long new sessions live
func WithSessionTTL(ttl time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		s.sessionTTL = ttl
	}
}

// WithAuthClock overrides the time source
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// WithAuthLogger sets the logger
func WithAuthLogger(logger *zap.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		events:     NewAuthEventHub(),
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the hub auth transitions are published on
func (s *AuthService) Events() *AuthEventHub {
	return s.events
}

// SignIn checks credentials and opens a session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	user, err := s.userStore.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, errors.Wrap(err, "lookup user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, nil, errors.Wrap(err, "create session")
	}

	s.events.Publish(AuthEvent{Type: AuthSignedIn, UserID: user.ID, At: now})
	s.logger.Info("user signed in", zap.String("user_id", user.ID.String()))
	return session, user, nil
}

// GetSession resolves a token to its live session and user
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.Session, *models.User, error) {
	if token == "" {
		return nil, nil, ErrNoSession
	}

	session, err := s.sessionStore.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoSession
		}
		return nil, nil, errors.Wrap(err, "lookup session")
	}
	if session.Expired(s.now()) {
		if err := s.sessionStore.Delete(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, nil, ErrNoSession
	}

	user, err := s.userStore.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoSession
		}
		return nil, nil, errors.Wrap(err, "lookup session user")
	}
	return session, user, nil
}

// SignOut ends the session. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	session, err := s.sessionStore.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "lookup session")
	}
	if err := s.sessionStore.Delete(ctx, token); err != nil {
		return errors.Wrap(err, "delete session")
	}

	s.events.Publish(AuthEvent{Type: AuthSignedOut, UserID: session.UserID, At: s.now()})
	s.logger.Info("user signed out", zap.String("user_id", session.UserID.String()))
	return nil
}

// PurgeExpiredSessions removes expired sessions from the store
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessionStore.DeleteExpired(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "purge sessions")
	}
	return n, nil
}

// RunSessionJanitor purges expired sessions every interval until ctx is done
func (s *AuthService) RunSessionJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpiredSessions(ctx)
			if err != nil {
				s.logger.Warn("session purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate session token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

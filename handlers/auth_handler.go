package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"legalassist-backend/config"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const eventsKeepAlive = 30 * time.Second

// AuthHandler handles HTTP requests for sign-in, sign-out and auth state
type AuthHandler struct {
	authService *service.AuthService
	cookie      config.AuthConfig
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, cookie config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// SignInRequest represents the request body for signing in
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn handles POST /api/auth/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	session, user, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", msgInvalidLogin)
			return
		}
		h.logger.Error("sign in failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "AUTH_ERROR", msgAuthError)
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	respondOK(c, http.StatusOK, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       user,
	}, "")
}

// SignOut handles POST /api/auth/sign-out
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.signOut(c); err != nil {
		respondError(c, http.StatusInternalServerError, "SIGN_OUT_FAILED", msgLogoutFailed)
		return
	}
	respondOK(c, http.StatusOK, nil, msgLoggedOut)
}

// GetSession handles GET /api/auth/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	session := currentSession(c)
	user := currentUser(c)
	if session == nil || user == nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", msgUnauthenticated)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"expires_at": session.ExpiresAt,
		"user":       user,
	}, "")
}

// Events handles GET /api/auth/events, streaming the caller's auth state changes as SSE.
// The stream ends after a SIGNED_OUT event, which carries the login route to redirect to.
func (h *AuthHandler) Events(c *gin.Context) {
	user := currentUser(c)
	events, unsubscribe := h.authService.Events().Subscribe(user.ID)
	defer unsubscribe()

	keepAlive := time.NewTicker(eventsKeepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case ev, ok := <-events:
			if !ok {
				return false
			}
			payload := gin.H{
				"event":   ev.Type,
				"user_id": ev.UserID,
				"at":      ev.At,
			}
			if ev.Type == service.AuthSignedOut {
				payload["redirect"] = "/login"
				c.SSEvent("auth", payload)
				return false
			}
			c.SSEvent("auth", payload)
			return true
		}
	})
}

func (h *AuthHandler) signOut(c *gin.Context) error {
	token := sessionToken(c, h.cookie.CookieName)
	if token != "" {
		if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
			h.logger.Error("sign out failed", zap.Error(err))
			return err
		}
	}
	h.clearSessionCookie(c)
	return nil
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, token, maxAge, "/", "", h.cookie.CookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", "", h.cookie.CookieSecure, true)
}

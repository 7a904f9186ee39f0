package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"legalassist-backend/models"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxKeyUser    = "user"
	ctxKeySession = "session"
)

// SessionMiddleware resolves the caller's session from a bearer token or cookie.
// It never aborts; handlers decide whether a session is required.
func SessionMiddleware(auth *service.AuthService, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		session, user, err := auth.GetSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrNoSession) {
				logger.Error("session lookup failed", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(ctxKeySession, session)
		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

// RequireSession aborts with 401 and message when no session was resolved
func RequireSession(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger writes one access log line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user := currentUser(c); user != nil {
			fields = append(fields, zap.String("user_id", user.ID.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func currentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}

// currentUserID returns nil for anonymous callers
func currentUserID(c *gin.Context) *uuid.UUID {
	user := currentUser(c)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

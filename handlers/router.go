package handlers

import (
	"net/http"
	"time"

	"legalassist-backend/config"
	"legalassist-backend/service"
	"legalassist-backend/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps holds the services the HTTP layer is built on
type RouterDeps struct {
	SearchService *service.SearchService
	CaseService   *service.CaseService
	AuthService   *service.AuthService
	Auth          config.AuthConfig
	Logger        *zap.Logger
}

// NewRouter wires every page and API route onto a new gin engine
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := views.Templates()
	if err != nil {
		return nil, err
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Auth, logger)
	searchHandler := NewSearchHandler(deps.SearchService, logger)
	caseHandler := NewCaseHandler(deps.CaseService, logger)
	pageHandler := NewPageHandler(authHandler, deps.SearchService, deps.CaseService, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(SessionMiddleware(deps.AuthService, deps.Auth.CookieName, logger))
	r.SetHTMLTemplate(tmpl)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Pages
	r.GET("/", pageHandler.Index)
	r.GET("/login", pageHandler.LoginPage)
	r.POST("/login", pageHandler.Login)
	r.POST("/logout", pageHandler.Logout)
	r.GET("/research", pageHandler.ResearchPage)
	r.POST("/research", pageHandler.Research)
	r.POST("/research/save", pageHandler.SaveResult)
	r.POST("/research/delete", pageHandler.DeleteResult)
	r.GET("/library", pageHandler.Library)
	r.POST("/library/delete", pageHandler.LibraryDelete)

	// API routes
	api := r.Group("/api")
	{
		// Auth endpoints
		api.POST("/auth/sign-in", authHandler.SignIn)
		api.POST("/auth/sign-out", authHandler.SignOut)
		api.GET("/auth/session", authHandler.GetSession)
		api.GET("/auth/events", RequireSession(msgUnauthenticated), authHandler.Events)

		// Search endpoints
		api.POST("/search", searchHandler.Search)
		api.GET("/history", RequireSession(msgUnauthenticated), searchHandler.ListHistory)

		// Case endpoints
		api.POST("/cases", RequireSession(msgSignInToSave), caseHandler.SaveCase)
		api.DELETE("/cases", RequireSession(msgSignInToDelete), caseHandler.DeleteCasesByTitle)
		api.DELETE("/cases/:id", RequireSession(msgSignInToDelete), caseHandler.DeleteCase)
		api.GET("/cases", RequireSession(msgSignInToView), caseHandler.ListCases)
		api.GET("/cases/:id", RequireSession(msgSignInToView), caseHandler.GetCase)
		api.GET("/cases/:id/export", RequireSession(msgSignInToView), caseHandler.ExportCase)
	}

	return r, nil
}

// NewHTTPServer serves handler on addr. Shutdown closes events so open auth streams end
// instead of holding the server until its shutdown deadline.
func NewHTTPServer(addr string, handler http.Handler, events *service.AuthEventHub) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if events != nil {
		srv.RegisterOnShutdown(events.Close)
	}
	return srv
}

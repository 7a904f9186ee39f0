package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"legalassist-backend/models"
	"legalassist-backend/service"
	"legalassist-backend/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const libraryPageSize = 50

// PageHandler serves the server-rendered login, research and library pages
type PageHandler struct {
	auth          *AuthHandler
	searchService *service.SearchService
	caseService   *service.CaseService
	logger        *zap.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(auth *AuthHandler, searchService *service.SearchService, caseService *service.CaseService, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		auth:          auth,
		searchService: searchService,
		caseService:   caseService,
		logger:        logger,
	}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/research")
}

// LoginPage handles GET /login
func (h *PageHandler) LoginPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/research")
		return
	}
	c.HTML(http.StatusOK, "login.html", views.LoginPage{
		Toast:      c.Query("toast"),
		ToastError: c.Query("error") != "",
	})
}

// Login handles POST /login
func (h *PageHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	session, _, err := h.auth.authService.SignIn(c.Request.Context(), email, password)
	if err != nil {
		message := msgAuthError
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidCredentials) {
			message = msgInvalidLogin
			status = http.StatusUnauthorized
		} else {
			h.logger.Error("form sign in failed", zap.Error(err))
		}
		c.HTML(status, "login.html", views.LoginPage{
			Email:      email,
			Toast:      message,
			ToastError: true,
		})
		return
	}

	h.auth.setSessionCookie(c, session.Token, session.ExpiresAt)
	c.Redirect(http.StatusFound, "/research")
}

// Logout handles POST /logout
func (h *PageHandler) Logout(c *gin.Context) {
	if err := h.auth.signOut(c); err != nil {
		redirectWithToast(c, "/research", msgLogoutFailed, true)
		return
	}
	redirectWithToast(c, "/login", msgLoggedOut, false)
}

// ResearchPage handles GET /research. A q parameter runs an initial search.
func (h *PageHandler) ResearchPage(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		redirectWithToast(c, "/login", msgSignInToResearch, true)
		return
	}

	page := views.ResearchPage{
		UserName:     user.Name,
		Jurisdiction: string(models.JurisdictionGeneral),
		Toast:        c.Query("toast"),
		ToastError:   c.Query("error") != "",
	}
	if q := c.Query("q"); strings.TrimSpace(q) != "" {
		page.Query = q
		page.Jurisdiction = string(models.ParseJurisdiction(c.Query("jurisdiction")))
		h.runSearch(c, &page)
	}
	c.HTML(http.StatusOK, "research.html", page)
}

// Research handles POST /research
func (h *PageHandler) Research(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		redirectWithToast(c, "/login", msgSignInToResearch, true)
		return
	}

	page := views.ResearchPage{
		UserName:     user.Name,
		Query:        c.PostForm("query"),
		Jurisdiction: string(models.ParseJurisdiction(c.PostForm("jurisdiction"))),
	}
	h.runSearch(c, &page)
	c.HTML(http.StatusOK, "research.html", page)
}

func (h *PageHandler) runSearch(c *gin.Context, page *views.ResearchPage) {
	result, err := h.searchService.Search(c.Request.Context(), service.SearchRequest{
		Query:        page.Query,
		Jurisdiction: models.Jurisdiction(page.Jurisdiction),
		UserID:       currentUserID(c),
	})
	if err != nil {
		page.ToastError = true
		page.Toast = msgAnalysisFailed
		if errors.Is(err, service.ErrEmptyQuery) {
			page.Toast = msgEmptyQuery
		}
		return
	}

	page.Toast = msgAnalysisComplete
	page.ToastError = false
	page.Results = views.BuildResultsView(result.Result)
}

// SaveResult handles POST /research/save from the results card
func (h *PageHandler) SaveResult(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		redirectWithToast(c, "/login", msgSignInToSave, true)
		return
	}

	page, result, ok := resultPage(c, user)
	if !ok {
		c.HTML(http.StatusBadRequest, "research.html", page)
		return
	}

	if _, err := h.caseService.SaveCase(c.Request.Context(), currentUserID(c), result); err != nil {
		h.logger.Error("page save failed", zap.Error(err))
		page.Toast = msgSaveFailed
		page.ToastError = true
		c.HTML(http.StatusOK, "research.html", page)
		return
	}
	page.Toast = msgCaseSaved
	c.HTML(http.StatusOK, "research.html", page)
}

// DeleteResult handles POST /research/delete, removing saved cases titled like the shown result
func (h *PageHandler) DeleteResult(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		redirectWithToast(c, "/login", msgSignInToDelete, true)
		return
	}

	page := views.ResearchPage{
		UserName:     user.Name,
		Jurisdiction: string(models.JurisdictionGeneral),
	}
	if p, _, ok := resultPage(c, user); ok {
		page = p
	}

	title := c.PostForm("title")
	if title == "" {
		page.Toast = msgInvalidRequest
		page.ToastError = true
		c.HTML(http.StatusBadRequest, "research.html", page)
		return
	}

	if _, err := h.caseService.DeleteCaseByTitle(c.Request.Context(), currentUserID(c), title); err != nil {
		h.logger.Error("page delete failed", zap.Error(err))
		page.Toast = msgDeleteFailed
		page.ToastError = true
		c.HTML(http.StatusOK, "research.html", page)
		return
	}
	page.Toast = msgCaseDeleted
	page.ToastError = false
	c.HTML(http.StatusOK, "research.html", page)
}

// resultPage rebuilds the research page from the result posted back in the payload field
func resultPage(c *gin.Context, user *models.User) (views.ResearchPage, *models.ComparisonResult, bool) {
	page := views.ResearchPage{
		UserName:     user.Name,
		Jurisdiction: string(models.JurisdictionGeneral),
	}

	var result models.ComparisonResult
	if err := json.Unmarshal([]byte(c.PostForm("payload")), &result); err != nil || result.Validate() != nil {
		page.Toast = msgInvalidRequest
		page.ToastError = true
		return page, nil, false
	}

	page.Query = result.Query
	if result.IsZambianContext() {
		page.Jurisdiction = string(models.JurisdictionZambian)
	}
	page.Results = views.BuildResultsView(&result)
	return page, &result, true
}

// Library handles GET /library
func (h *PageHandler) Library(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		redirectWithToast(c, "/login", msgSignInToView, true)
		return
	}

	page := views.LibraryPage{
		UserName:   user.Name,
		Toast:      c.Query("toast"),
		ToastError: c.Query("error") != "",
	}
	cases, err := h.caseService.ListCases(c.Request.Context(), user.ID, libraryPageSize, 0)
	if err != nil {
		h.logger.Error("failed to load library", zap.Error(err))
		page.Toast = msgLibraryFailed
		page.ToastError = true
		c.HTML(http.StatusInternalServerError, "library.html", page)
		return
	}
	page.Cases = views.BuildLibrary(cases)
	c.HTML(http.StatusOK, "library.html", page)
}

// LibraryDelete handles POST /library/delete
func (h *PageHandler) LibraryDelete(c *gin.Context) {
	if currentUser(c) == nil {
		redirectWithToast(c, "/login", msgSignInToDelete, true)
		return
	}

	id, err := uuid.Parse(c.PostForm("id"))
	if err != nil {
		redirectWithToast(c, "/library", msgInvalidRequest, true)
		return
	}

	err = h.caseService.DeleteCase(c.Request.Context(), currentUserID(c), id)
	switch {
	case err == nil:
		redirectWithToast(c, "/library", msgCaseDeleted, false)
	case errors.Is(err, service.ErrCaseNotFound):
		redirectWithToast(c, "/library", msgCaseNotFound, true)
	default:
		h.logger.Error("library delete failed", zap.Error(err))
		redirectWithToast(c, "/library", msgDeleteFailed, true)
	}
}

func redirectWithToast(c *gin.Context, path, message string, isError bool) {
	q := url.Values{}
	q.Set("toast", message)
	if isError {
		q.Set("error", "1")
	}
	c.Redirect(http.StatusFound, path+"?"+q.Encode())
}

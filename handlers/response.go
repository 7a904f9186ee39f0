package handlers

import (
	"github.com/gin-gonic/gin"
)

// Toast messages shown to the user
const (
	msgEmptyQuery       = "Please enter a legal query to analyze."
	msgAnalysisFailed   = "Analysis failed. Please try again later."
	msgAnalysisComplete = "Analysis complete!"
	msgSignInToSave     = "Please sign in to save cases"
	msgSignInToDelete   = "Please sign in to delete cases"
	msgSignInToView     = "Please sign in to view your library"
	msgSignInToResearch = "Please sign in to access research tools"
	msgSaveFailed       = "Failed to save case. Please try again."
	msgDeleteFailed     = "Failed to delete case. Please try again."
	msgCaseSaved        = "Case saved successfully!"
	msgCaseDeleted      = "Case deleted successfully!"
	msgCaseNotFound     = "Case not found"
	msgLoggedOut        = "You have been logged out"
	msgLogoutFailed     = "Logout failed. Please try again."
	msgInvalidLogin     = "Invalid email or password"
	msgAuthError        = "Authentication error. Please try again."
	msgHistoryFailed    = "Failed to load search history."
	msgLibraryFailed    = "Failed to load your library."
	msgExportFailed     = "Failed to export case."
	msgInvalidRequest   = "Invalid request"
	msgUnauthenticated  = "Please sign in to continue"
)

// respondError writes the standard error envelope; message is the one-line toast
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondOK writes the standard success envelope with an optional toast
func respondOK(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

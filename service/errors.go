package service

import "github.com/pkg/errors"

var (
	ErrEmptyQuery         = errors.New("query must not be blank")
	ErrAnalysisFailed     = errors.New("legal analysis failed")
	ErrMalformedResult    = errors.New("analysis returned a malformed result")
	ErrUnauthenticated    = errors.New("no authenticated user")
	ErrInvalidCase        = errors.New("case has no result to save")
	ErrCaseNotFound       = errors.New("saved case not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
)

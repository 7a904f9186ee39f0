package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"legalassist-backend/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Analyzer produces a legal comparison for a query
type Analyzer interface {
	Analyze(ctx context.Context, query string) (*models.ComparisonResult, error)
}

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = time.Second
)

// FunctionAnalyzer invokes a remote analysis function over HTTP
type FunctionAnalyzer struct {
	url            string
	apiKey         string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	logger         *zap.Logger
}

// FunctionAnalyzerOption is a functional option for FunctionAnalyzer
type FunctionAnalyzerOption func(*FunctionAnalyzer)

// FunctionWithAPIKey sets the bearer token sent with each call
func FunctionWithAPIKey(key string) FunctionAnalyzerOption {
	return func(a *FunctionAnalyzer) {
		a.apiKey = key
	}
}

// FunctionWithHTTPClient replaces the HTTP client
func FunctionWithHTTPClient(client *http.Client) FunctionAnalyzerOption {
	return func(a *FunctionAnalyzer) {
		a.client = client
	}
}

// FunctionWithRetries sets the attempt count and first backoff delay
func FunctionWithRetries(maxRetries int, initialBackoff time.Duration) FunctionAnalyzerOption {
	return func(a *FunctionAnalyzer) {
		a.maxRetries = maxRetries
		a.initialBackoff = initialBackoff
	}
}

// FunctionWithLogger sets the logger
func FunctionWithLogger(logger *zap.Logger) FunctionAnalyzerOption {
	return func(a *FunctionAnalyzer) {
		a.logger = logger
	}
}

// NewFunctionAnalyzer creates an analyzer for the function at url
func NewFunctionAnalyzer(url string, opts ...FunctionAnalyzerOption) *FunctionAnalyzer {
	a := &FunctionAnalyzer{
		url:            url,
		client:         &http.Client{Timeout: 120 * time.Second},
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxRetries < 1 {
		a.maxRetries = 1
	}
	return a
}

type functionRequest struct {
	Query string `json:"query"`
}

// Analyze posts {"query": ...} and decodes the comparison result
func (a *FunctionAnalyzer) Analyze(ctx context.Context, query string) (*models.ComparisonResult, error) {
	jsonData, err := json.Marshal(functionRequest{Query: query})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	backoff := a.initialBackoff
	var lastErr error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "analysis cancelled")
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		result, retry, err := a.call(ctx, jsonData)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
		a.logger.Warn("analysis function call failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", a.maxRetries),
			zap.Error(err))
	}

	return nil, errors.Wrapf(lastErr, "analysis failed after %d attempts", a.maxRetries)
}

// call performs one request. The bool reports whether the failure is worth retrying.
func (a *FunctionAnalyzer) call(ctx context.Context, body []byte) (*models.ComparisonResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		// A cancelled or expired context will not recover on retry
		return nil, ctx.Err() == nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, fmt.Errorf("analysis function error: %d - %s", resp.StatusCode, truncate(string(bodyBytes), 300))
	}

	var result models.ComparisonResult
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, false, errors.Wrapf(ErrMalformedResult, "decode: %v", err)
	}
	if err := result.Validate(); err != nil {
		return nil, false, errors.Wrap(ErrMalformedResult, err.Error())
	}
	return &result, false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

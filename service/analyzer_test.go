package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"legalassist-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFunctionAnalyzer_Success(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sampleComparison("Zambian law: eviction"))
	}))
	defer srv.Close()

	a := NewFunctionAnalyzer(srv.URL, FunctionWithAPIKey("anon-key"))
	res, err := a.Analyze(context.Background(), "Zambian law: eviction")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"query": "Zambian law: eviction"}, gotBody)
	assert.Equal(t, "Bearer anon-key", gotAuth)
	assert.Equal(t, "Zambian law: eviction", res.Query)
	assert.Equal(t, 3, res.ResultsCount())
}

func TestFunctionAnalyzer_KeepsResponseBytes(t *testing.T) {
	const body = `{"query":"q","comparison":{"commonLaw":{"caseExamples":["A"],"statutes":[],"relevance":"High","analysis":"a"},` +
		`"contractLaw":{"principles":[],"caseExamples":["B"],"relevance":"Low","analysis":"b"}},` +
		`"recommendation":"r","confidence":0.9,"sources":["s1"]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	res, err := NewFunctionAnalyzer(srv.URL).Analyze(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 2, res.ResultsCount())
	assert.JSONEq(t, body, string(res.Raw()))
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
}

func TestFunctionAnalyzer_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(sampleComparison("q"))
	}))
	defer srv.Close()

	a := NewFunctionAnalyzer(srv.URL, FunctionWithRetries(3, time.Millisecond))
	_, err := a.Analyze(context.Background(), "q")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFunctionAnalyzer_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewFunctionAnalyzer(srv.URL, FunctionWithRetries(2, time.Millisecond))
	_, err := a.Analyze(context.Background(), "q")
	assert.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFunctionAnalyzer_NoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewFunctionAnalyzer(srv.URL, FunctionWithRetries(3, time.Millisecond))
	_, err := a.Analyze(context.Background(), "q")
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFunctionAnalyzer_MalformedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":"q","comparison":{"commonLaw":{"analysis":"x"}}}`))
	}))
	defer srv.Close()

	_, err := NewFunctionAnalyzer(srv.URL).Analyze(context.Background(), "q")
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestFunctionAnalyzer_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	a := NewFunctionAnalyzer(srv.URL, FunctionWithRetries(5, time.Hour))
	start := time.Now()
	_, err := a.Analyze(ctx, "q")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLLMAnalyzer_ParsesFencedJSON(t *testing.T) {
	result := sampleComparison("")
	payload, err := json.Marshal(result)
	require.NoError(t, err)

	gen := &MockGenerator{Response: "Here you go:\n```json\n" + string(payload) + "\n```"}
	res, err := NewLLMAnalyzer(gen).Analyze(context.Background(), "Zambian law: cyber fraud evidence")
	require.NoError(t, err)

	assert.Contains(t, gen.LastPrompt, "Query: Zambian law: cyber fraud evidence")
	assert.Equal(t, "Zambian law: cyber fraud evidence", res.Query)
	assert.Equal(t, result.Comparison, res.Comparison)
}

func TestLLMAnalyzer_KeepsModelQuery(t *testing.T) {
	payload, err := json.Marshal(sampleComparison("model echoed query"))
	require.NoError(t, err)

	res, err := NewLLMAnalyzer(&MockGenerator{Response: string(payload)}).Analyze(context.Background(), "sent query")
	require.NoError(t, err)
	assert.Equal(t, "model echoed query", res.Query)
}

type closingGenerator struct {
	MockGenerator
	closed int
}

func (g *closingGenerator) Close() error {
	g.closed++
	return nil
}

func TestLLMAnalyzer_Close(t *testing.T) {
	gen := &closingGenerator{}
	a := NewLLMAnalyzer(gen)

	require.NoError(t, a.Close())
	assert.Equal(t, 1, gen.closed)

	assert.NoError(t, NewLLMAnalyzer(&MockGenerator{}).Close())
}

func TestLLMAnalyzer_Malformed(t *testing.T) {
	for _, reply := range []string{"I cannot help with that.", `{"query": "q"}`, `{"query": `} {
		_, err := NewLLMAnalyzer(&MockGenerator{Response: reply}).Analyze(context.Background(), "q")
		assert.ErrorIs(t, err, ErrMalformedResult, reply)
	}
}

func TestNewAnalyzer(t *testing.T) {
	a, err := NewAnalyzer(context.Background(), config.AnalyzerConfig{Provider: "function", FunctionURL: "http://localhost"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &FunctionAnalyzer{}, a)

	a, err = NewAnalyzer(context.Background(), config.AnalyzerConfig{Provider: "openai", APIKey: "sk"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LLMAnalyzer{}, a)

	a, err = NewAnalyzer(context.Background(), config.AnalyzerConfig{Provider: "claude", APIKey: "sk"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LLMAnalyzer{}, a)

	_, err = NewAnalyzer(context.Background(), config.AnalyzerConfig{Provider: "ollama"}, zap.NewNop())
	assert.Error(t, err)
}

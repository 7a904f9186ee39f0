package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"legalassist-backend/models"

	"github.com/pkg/errors"
)

// TextGenerator is a single-prompt LLM completion
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMAnalyzer asks a language model for the comparison directly
type LLMAnalyzer struct {
	generator TextGenerator
}

// NewLLMAnalyzer creates an analyzer backed by generator
func NewLLMAnalyzer(generator TextGenerator) *LLMAnalyzer {
	return &LLMAnalyzer{generator: generator}
}

// Close closes the generator when it holds a connection
func (a *LLMAnalyzer) Close() error {
	if c, ok := a.generator.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

const comparisonPrompt = `You are a legal research assistant. Compare how common law and contract law treat the following query.
If the query names a jurisdiction, answer for that jurisdiction and cite its statutes where they exist.
If the query concerns digital or electronic evidence, also include a "technicalDetails" object describing
hash verification, chain of custody and integrity checks.

Query: %s

Respond with JSON only, no commentary, in exactly this shape:
{
  "query": "<the query>",
  "comparison": {
    "commonLaw":   {"principles": [], "caseExamples": [], "statutes": [], "relevance": "", "analysis": ""},
    "contractLaw": {"principles": [], "caseExamples": [], "statutes": [], "relevance": "", "analysis": ""}
  },
  "recommendation": ""
}
Begin each "relevance" value with one word rating: High, Medium or Low.`

// Analyze prompts the model and decodes its JSON reply
func (a *LLMAnalyzer) Analyze(ctx context.Context, query string) (*models.ComparisonResult, error) {
	text, err := a.generator.Generate(ctx, fmt.Sprintf(comparisonPrompt, query))
	if err != nil {
		return nil, errors.Wrap(err, "generation failed")
	}

	result, err := parseComparisonJSON(text)
	if err != nil {
		return nil, err
	}
	if result.Query == "" {
		if err := result.SetQuery(query); err != nil {
			return nil, errors.Wrap(ErrMalformedResult, err.Error())
		}
	}
	return result, nil
}

// parseComparisonJSON extracts the JSON object from a model reply, tolerating code fences and prose around it
func parseComparisonJSON(text string) (*models.ComparisonResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, errors.Wrap(ErrMalformedResult, "no JSON object in reply")
	}

	var result models.ComparisonResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, errors.Wrapf(ErrMalformedResult, "decode: %v", err)
	}
	if err := result.Validate(); err != nil {
		return nil, errors.Wrap(ErrMalformedResult, err.Error())
	}
	return &result, nil
}

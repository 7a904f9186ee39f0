package service

import (
	"context"
	"fmt"
	"strings"

	"legalassist-backend/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var defaultModels = map[string]string{
	"gemini": "gemini-1.5-pro",
	"openai": openai.GPT4oMini,
	"claude": "claude-3-5-sonnet-latest",
}

// NewAnalyzer builds the analyzer selected by cfg.Provider
func NewAnalyzer(ctx context.Context, cfg config.AnalyzerConfig, logger *zap.Logger) (Analyzer, error) {
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	switch provider {
	case "", "function":
		return NewFunctionAnalyzer(cfg.FunctionURL,
			FunctionWithAPIKey(cfg.APIKey),
			FunctionWithRetries(cfg.MaxRetries, cfg.InitialBackoff),
			FunctionWithLogger(logger),
		), nil

	case "gemini":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, err
		}
		return NewLLMAnalyzer(g), nil

	case "openai":
		return NewLLMAnalyzer(NewOpenAIGenerator(cfg.APIKey, model, cfg.BaseURL)), nil

	case "claude":
		return NewLLMAnalyzer(NewClaudeGenerator(cfg.APIKey, model, cfg.BaseURL)), nil

	default:
		return nil, fmt.Errorf("unsupported analyzer provider: %s", provider)
	}
}

// GeminiGenerator generates text with Google Gemini
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Close releases the underlying gRPC connection
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate runs one prompt and concatenates the text parts of the first candidate
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates or content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return sb.String(), nil
}

// OpenAIGenerator generates text with the OpenAI chat API or a compatible server
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI-backed generator
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate runs one chat completion in JSON mode
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ClaudeGenerator generates text with Anthropic Claude
type ClaudeGenerator struct {
	client *anthropic.Client
	model  string
}

// NewClaudeGenerator creates a Claude-backed generator
func NewClaudeGenerator(apiKey, model, baseURL string) *ClaudeGenerator {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeGenerator{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// Generate runs one message request
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(g.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response content")
}

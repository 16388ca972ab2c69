package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"staffrag/internal/domain"
	"staffrag/internal/port"
)

// OpenAIGenerator calls an OpenAI-compatible /chat/completions endpoint.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ port.Generator = (*OpenAIGenerator)(nil)

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIGenerator reads the API key from apiKeyEnv.
func NewOpenAIGenerator(apiKeyEnv, model, baseURL string, timeout time.Duration) (*OpenAIGenerator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", g.fail(domain.GenerationBackend, fmt.Errorf("failed to marshal request: %w", err))
	}

	data, err := postJSON(ctx, g.client, g.baseURL+"/chat/completions", body, g.apiKey)
	if err != nil {
		return "", g.fail(classify(err), err)
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", g.fail(domain.GenerationBackend, fmt.Errorf("failed to parse response: %w", err))
	}
	if resp.Error != nil {
		return "", g.fail(domain.GenerationBackend, errors.New(resp.Error.Message))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", g.fail(domain.GenerationEmpty, nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) ModelName() string {
	return g.model
}

func (g *OpenAIGenerator) fail(kind domain.GenerationErrorKind, err error) error {
	return &domain.GenerationError{Kind: kind, Model: g.model, Err: err}
}

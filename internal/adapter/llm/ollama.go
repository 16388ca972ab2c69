package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"staffrag/internal/domain"
	"staffrag/internal/port"
)

// OllamaGenerator calls the native Ollama chat API with streaming off.
type OllamaGenerator struct {
	model   string
	baseURL string
	client  *http.Client
}

var _ port.Generator = (*OllamaGenerator)(nil)

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewOllamaGenerator creates a generator for a local Ollama server.
// Defaults: model llama3 at http://localhost:11434.
func NewOllamaGenerator(model, baseURL string, timeout time.Duration) *OllamaGenerator {
	if model == "" {
		model = "llama3"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &OllamaGenerator{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    g.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options:  ollamaOptions{Temperature: temperature},
	})
	if err != nil {
		return "", g.fail(domain.GenerationBackend, fmt.Errorf("failed to marshal request: %w", err))
	}

	data, err := postJSON(ctx, g.client, g.baseURL+"/api/chat", body, "")
	if err != nil {
		return "", g.fail(classify(err), err)
	}

	var resp ollamaChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", g.fail(domain.GenerationBackend, fmt.Errorf("failed to parse response: %w", err))
	}
	if resp.Error != "" {
		return "", g.fail(domain.GenerationBackend, errors.New(resp.Error))
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", g.fail(domain.GenerationEmpty, nil)
	}

	return resp.Message.Content, nil
}

func (g *OllamaGenerator) ModelName() string {
	return g.model
}

func (g *OllamaGenerator) fail(kind domain.GenerationErrorKind, err error) error {
	return &domain.GenerationError{Kind: kind, Model: g.model, Err: err}
}

// statusError is a non-2xx reply from a model backend.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte, apiKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, &statusError{Status: resp.StatusCode, Body: preview}
	}
	return data, nil
}

// classify maps a transport error onto a generation error kind.
func classify(err error) domain.GenerationErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.GenerationTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.GenerationTimeout
	}
	var se *statusError
	if errors.As(err, &se) {
		return domain.GenerationBackend
	}
	return domain.GenerationUnreachable
}

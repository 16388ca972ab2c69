package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"staffrag/config"
	"staffrag/internal/app"
	"staffrag/internal/domain"
	"staffrag/internal/usecase"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(context.Context, string, float64) (string, error) {
	return g.reply, g.err
}

func (stubGenerator) ModelName() string { return "stub" }

const employeesJSON = `[
  {"name": "Alice", "experience_years": 5, "skills": ["Python", "ML"], "past_projects": ["Recsys"], "availability": "full-time"},
  {"name": "Bob", "experience_years": 8, "skills": ["Go", "Kubernetes"], "past_projects": ["Billing"], "availability": "part-time"},
  {"name": "Carol", "experience_years": 3, "skills": ["React"], "past_projects": ["Storefront"], "availability": "contract"}
]`

func newTestRouter(t *testing.T, data string, gen stubGenerator) http.Handler {
	t.Helper()
	dir := t.TempDir()
	if data != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "employees.json"), []byte(data), 0644))
	}

	deps, err := app.New(context.Background(), config.DefaultConfig(), zap.NewNop(), app.Options{
		RootDir:   dir,
		Generator: gen,
	})
	require.NoError(t, err)
	return NewRouter(deps)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChat(t *testing.T) {
	t.Run("recommendation", func(t *testing.T) {
		h := newTestRouter(t, employeesJSON, stubGenerator{reply: "Bob fits best."})

		w := do(h, http.MethodPost, "/chat", `{"query": "Go developer"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(usecase.OutcomeRecommendation), w.Header().Get(OutcomeHeader))

		var resp ChatResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Bob fits best.", resp.Response)
	})

	t.Run("no match on empty corpus", func(t *testing.T) {
		h := newTestRouter(t, "", stubGenerator{reply: "unused"})

		w := do(h, http.MethodPost, "/chat", `{"query": "anyone"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(usecase.OutcomeNoMatch), w.Header().Get(OutcomeHeader))

		var resp ChatResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, usecase.NoMatchMessage, resp.Response)
	})

	t.Run("generator down", func(t *testing.T) {
		h := newTestRouter(t, employeesJSON, stubGenerator{
			err: &domain.GenerationError{Kind: domain.GenerationUnreachable, Model: "stub", Err: errors.New("refused")},
		})

		w := do(h, http.MethodPost, "/chat", `{"query": "python"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(usecase.OutcomeGenerationError), w.Header().Get(OutcomeHeader))

		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, map[string]any{"response": usecase.UnavailableMessage}, resp)
	})

	t.Run("invalid json", func(t *testing.T) {
		h := newTestRouter(t, employeesJSON, stubGenerator{})

		w := do(h, http.MethodPost, "/chat", `{"query":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty query", func(t *testing.T) {
		h := newTestRouter(t, employeesJSON, stubGenerator{})

		w := do(h, http.MethodPost, "/chat", `{"query": ""}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "bad_request", resp.Error)
		assert.Contains(t, resp.Details, "query")
	})
}

func TestSearch(t *testing.T) {
	h := newTestRouter(t, employeesJSON, stubGenerator{})

	t.Run("filter", func(t *testing.T) {
		w := do(h, http.MethodGet, "/employees/search?q=kubernetes", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []domain.Employee
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "Bob", got[0].Name)
	})

	t.Run("empty q returns all", func(t *testing.T) {
		w := do(h, http.MethodGet, "/employees/search", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []domain.Employee
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got, 3)
	})

	t.Run("no match is an empty array", func(t *testing.T) {
		w := do(h, http.MethodGet, "/employees/search?q=cobol", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})
}

func TestRetrieve(t *testing.T) {
	h := newTestRouter(t, employeesJSON, stubGenerator{})

	t.Run("default k", func(t *testing.T) {
		w := do(h, http.MethodGet, "/employees/retrieve?q=react", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []domain.ScoredEmployee
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Len(t, got, 3)
		assert.Equal(t, "Carol", got[0].Employee.Name)
		assert.LessOrEqual(t, got[0].Distance, got[1].Distance)
	})

	t.Run("explicit k", func(t *testing.T) {
		w := do(h, http.MethodGet, "/employees/retrieve?q=react&k=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got []domain.ScoredEmployee
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got, 1)
	})

	for _, target := range []string{
		"/employees/retrieve?q=react&k=0",
		"/employees/retrieve?q=react&k=-2",
		"/employees/retrieve?q=react&k=three",
		"/employees/retrieve",
	} {
		t.Run("bad request "+target, func(t *testing.T) {
			w := do(h, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHealthAndReadiness(t *testing.T) {
	t.Run("healthz", func(t *testing.T) {
		h := newTestRouter(t, "", stubGenerator{})
		w := do(h, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("ready with index", func(t *testing.T) {
		h := newTestRouter(t, employeesJSON, stubGenerator{})
		w := do(h, http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "ready", resp["status"])
		assert.Equal(t, float64(3), resp["records"])
		assert.Equal(t, true, resp["index_available"])
		assert.Equal(t, "hash", resp["embedder"])
	})

	t.Run("degraded without index", func(t *testing.T) {
		h := newTestRouter(t, "", stubGenerator{})
		w := do(h, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMetricsAndNotFound(t *testing.T) {
	h := newTestRouter(t, employeesJSON, stubGenerator{reply: "ok"})
	do(h, http.MethodPost, "/chat", `{"query": "python"}`)

	w := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "staffrag_chat_outcomes_total")
	assert.Contains(t, w.Body.String(), `route="/chat"`)

	w = do(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = do(h, http.MethodDelete, "/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

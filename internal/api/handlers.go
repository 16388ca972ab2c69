package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"staffrag/internal/app"
	"staffrag/internal/domain"
)

// OutcomeHeader carries the chat outcome without changing the body schema.
const OutcomeHeader = "X-Chat-Outcome"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query string `json:"query" validate:"required"`
}

// ChatResponse is the body of a chat reply, whatever the outcome.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatHandler answers a staffing question with a single text.
func ChatHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body", nil)
			return
		}
		if details, err := validateStruct(&req); err != nil {
			writeBadRequest(w, "validation failed", details)
			return
		}

		answer := deps.Pipeline.ProcessQuery(r.Context(), req.Query)

		w.Header().Set(OutcomeHeader, string(answer.Outcome))
		writeJSON(w, http.StatusOK, ChatResponse{Response: answer.Text})
	}
}

// SearchHandler returns records whose rendered text contains q.
func SearchHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches := deps.Pipeline.Search(r.URL.Query().Get("q"))
		if matches == nil {
			matches = []domain.Employee{}
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

// RetrieveHandler returns the top-k nearest records with their distances.
func RetrieveHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeBadRequest(w, "validation failed", map[string]string{"q": "q is required"})
			return
		}

		k := deps.Config.Retrieve.SearchTopK
		if raw := r.URL.Query().Get("k"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeBadRequest(w, "validation failed", map[string]string{"k": "k must be an integer"})
				return
			}
			k = n
		}

		hits, err := deps.Pipeline.Retrieve(r.Context(), q, k)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidK) {
				writeBadRequest(w, "validation failed", map[string]string{"k": "k must be positive"})
				return
			}
			deps.Logger.Error("retrieval failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
				Error:   "retrieval_unavailable",
				Message: "retrieval is temporarily unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, hits)
	}
}

// HealthCheck reports that the process is up.
func HealthCheck(_ *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck reports whether retrieval can serve results. The process
// still answers chat without an index, so readiness is informational.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		code := http.StatusOK
		if !deps.Pipeline.IndexAvailable() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, map[string]any{
			"status":          status,
			"records":         deps.Pipeline.RecordCount(),
			"index_available": deps.Pipeline.IndexAvailable(),
			"embedder":        deps.Embedder.ModelName(),
			"generator":       deps.Generator.ModelName(),
		})
	}
}

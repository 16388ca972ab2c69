package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"staffrag/internal/adapter/encoder"
	"staffrag/internal/adapter/memstore"
	"staffrag/internal/domain"
	"staffrag/internal/observability"
	"staffrag/internal/port"
)

// Fixed user-facing replies for the non-recommendation outcomes.
const (
	NoMatchMessage     = "I couldn't find any employees that match your query. Could you please try rephrasing it?"
	UnavailableMessage = "Sorry, I'm having trouble connecting to my local AI model right now. Is the Ollama application running?"
)

// DefaultTemperature keeps recommendations close to the retrieved facts.
const DefaultTemperature = 0.2

// Outcome is the terminal state of a chat request.
type Outcome string

const (
	OutcomeRecommendation  Outcome = "recommendation"
	OutcomeNoMatch         Outcome = "no_match"
	OutcomeGenerationError Outcome = "generation_error"
	OutcomeRetrievalError  Outcome = "retrieval_error"
	OutcomeComposeError    Outcome = "compose_error"
)

// Answer is the single final text of a chat request and how it was reached.
type Answer struct {
	Text    string
	Outcome Outcome
}

// PipelineConfig holds the per-process pipeline settings.
type PipelineConfig struct {
	ChatTopK    int
	Temperature float64
}

// Pipeline wires retrieval, prompt composition and generation behind a
// single ProcessQuery entry point. It holds no per-request state.
type Pipeline struct {
	retriever *RetrieveUseCase
	composer  *PromptComposer
	generator port.Generator
	records   *memstore.RecordStore
	encoder   *encoder.Encoder
	cfg       PipelineConfig
	logger    *zap.Logger
}

// NewPipeline creates the query pipeline.
func NewPipeline(
	retriever *RetrieveUseCase,
	composer *PromptComposer,
	generator port.Generator,
	records *memstore.RecordStore,
	enc *encoder.Encoder,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	if cfg.ChatTopK <= 0 {
		cfg.ChatTopK = 3
	}
	return &Pipeline{
		retriever: retriever,
		composer:  composer,
		generator: generator,
		records:   records,
		encoder:   enc,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessQuery runs Retrieving, then either NoMatch or Composing and
// Generating, and always returns exactly one final text. Failures are
// logged and converted into fixed messages.
func (p *Pipeline) ProcessQuery(ctx context.Context, query string) Answer {
	log := p.logger.With(zap.String("query_id", uuid.NewString()))
	log.Info("processing query", zap.String("query", query))

	answer := p.process(ctx, query, log)
	observability.ChatOutcomesTotal.WithLabelValues(string(answer.Outcome)).Inc()

	log.Info("response generated", zap.String("outcome", string(answer.Outcome)))
	return answer
}

func (p *Pipeline) process(ctx context.Context, query string, log *zap.Logger) Answer {
	start := time.Now()
	records, err := p.retriever.Retrieve(ctx, query, p.cfg.ChatTopK)
	observability.RetrievalDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return Answer{Text: UnavailableMessage, Outcome: OutcomeRetrievalError}
	}
	log.Info("retrieved employees", zap.Int("count", len(records)))

	if len(records) == 0 {
		return Answer{Text: NoMatchMessage, Outcome: OutcomeNoMatch}
	}

	prompt, err := p.composer.Compose(query, records)
	if err != nil {
		log.Error("prompt composition failed", zap.Error(err))
		return Answer{Text: UnavailableMessage, Outcome: OutcomeComposeError}
	}

	start = time.Now()
	text, err := p.generator.Generate(ctx, prompt, p.cfg.Temperature)
	observability.GenerationDuration.WithLabelValues(p.generator.ModelName()).Observe(time.Since(start).Seconds())
	if err != nil {
		fields := []zap.Field{zap.Error(err), zap.String("model", p.generator.ModelName())}
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			fields = append(fields, zap.String("kind", string(genErr.Kind)))
		}
		log.Error("answer generation failed", fields...)
		return Answer{Text: UnavailableMessage, Outcome: OutcomeGenerationError}
	}

	return Answer{Text: text, Outcome: OutcomeRecommendation}
}

// Retrieve returns the top-k records with distances for a caller-chosen k.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredEmployee, error) {
	return p.retriever.RetrieveScored(ctx, query, k)
}

// Search returns every record whose rendered document contains filter,
// case-insensitively. An empty filter returns all records unchanged.
func (p *Pipeline) Search(filter string) []domain.Employee {
	all := p.records.All()
	if filter == "" {
		return all
	}

	needle := strings.ToLower(filter)
	matches := make([]domain.Employee, 0)
	for _, rec := range all {
		doc, err := p.encoder.Render(rec)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(doc), needle) {
			matches = append(matches, rec)
		}
	}
	return matches
}

// RecordCount returns the number of loaded records.
func (p *Pipeline) RecordCount() int {
	return p.records.Len()
}

// IndexAvailable reports whether retrieval can reach a vector index.
func (p *Pipeline) IndexAvailable() bool {
	return p.retriever.Available()
}

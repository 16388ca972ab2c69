package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"staffrag/internal/adapter/embedding"
	"staffrag/internal/adapter/encoder"
	"staffrag/internal/adapter/memstore"
	"staffrag/internal/domain"
	"staffrag/internal/port"
)

func alice() domain.Employee {
	return domain.Employee{
		Name:            "Alice",
		ExperienceYears: domain.Years(5),
		Skills:          []string{"Python", "ML"},
		PastProjects:    []string{"Recsys"},
		Availability:    "full-time",
	}
}

func bob() domain.Employee {
	return domain.Employee{
		Name:            "Bob",
		ExperienceYears: domain.Years(8),
		Skills:          []string{"Go", "Kubernetes"},
		PastProjects:    []string{"Billing platform", "Observability"},
		Availability:    "part-time",
	}
}

func carol() domain.Employee {
	return domain.Employee{
		Name:            "Carol",
		ExperienceYears: domain.Years(3),
		Skills:          []string{"React", "TypeScript"},
		PastProjects:    []string{"Storefront"},
		Availability:    "contract",
	}
}

// fakeGenerator records calls and returns a fixed reply or error.
type fakeGenerator struct {
	mu          sync.Mutex
	reply       string
	err         error
	calls       int
	prompt      string
	temperature float64
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, temperature float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompt = prompt
	g.temperature = temperature
	return g.reply, g.err
}

func (g *fakeGenerator) ModelName() string { return "fake" }

// failingEmbedder always errors.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}
func (failingEmbedder) Dimension() int    { return 8 }
func (failingEmbedder) ModelName() string { return "failing" }

// countingEmbedder wraps an embedder and counts calls.
type countingEmbedder struct {
	port.Embedder
	mu    sync.Mutex
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Embedder.Embed(ctx, texts)
}

type fixture struct {
	pipeline  *Pipeline
	retriever *RetrieveUseCase
	generator *fakeGenerator
	embedder  *countingEmbedder
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T, records []domain.Employee) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	enc := encoder.New()
	emb := &countingEmbedder{Embedder: embedding.NewHashEmbedder(256)}

	var index port.VectorIndex
	if len(records) > 0 {
		idx, err := NewIndexUseCase(emb, enc, 2, logger).Build(context.Background(), records, nil)
		require.NoError(t, err)
		index = idx
	}
	emb.calls = 0

	store := memstore.NewRecordStore(records)
	retriever := NewRetrieveUseCase(emb, index, store, logger)
	composer, err := NewPromptComposer(enc)
	require.NoError(t, err)

	gen := &fakeGenerator{reply: "Alice is the best fit."}
	p := NewPipeline(retriever, composer, gen, store, enc, PipelineConfig{ChatTopK: 3, Temperature: DefaultTemperature}, logger)

	return &fixture{pipeline: p, retriever: retriever, generator: gen, embedder: emb, logs: logs}
}

func TestRetrieve_SingleCandidate(t *testing.T) {
	f := newFixture(t, []domain.Employee{alice()})

	got, err := f.retriever.Retrieve(context.Background(), "python engineer", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)
}

func TestRetrieve_LengthIsMinKN(t *testing.T) {
	records := []domain.Employee{alice(), bob(), carol()}
	f := newFixture(t, records)

	for k := 1; k <= 5; k++ {
		got, err := f.retriever.Retrieve(context.Background(), "engineer", k)
		require.NoError(t, err)
		want := k
		if want > len(records) {
			want = len(records)
		}
		assert.Len(t, got, want, "k=%d", k)
	}
}

func TestRetrieve_OrderedByDistance(t *testing.T) {
	f := newFixture(t, []domain.Employee{alice(), bob(), carol()})

	got, err := f.retriever.RetrieveScored(context.Background(), "Go Kubernetes developer", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Bob", got[0].Employee.Name)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestRetrieve_InvalidK(t *testing.T) {
	f := newFixture(t, []domain.Employee{alice()})

	_, err := f.retriever.Retrieve(context.Background(), "q", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidK)
}

func TestRetrieve_EmptyCorpusSkipsEmbedder(t *testing.T) {
	f := newFixture(t, nil)

	got, err := f.retriever.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, f.embedder.calls)
	assert.False(t, f.retriever.Available())
}

func TestProcessQuery_Recommendation(t *testing.T) {
	f := newFixture(t, []domain.Employee{alice(), bob()})

	ans := f.pipeline.ProcessQuery(context.Background(), "python engineer")
	assert.Equal(t, OutcomeRecommendation, ans.Outcome)
	assert.Equal(t, "Alice is the best fit.", ans.Text)
	assert.Equal(t, 1, f.generator.calls)
	assert.Equal(t, DefaultTemperature, f.generator.temperature)
	assert.Contains(t, f.generator.prompt, `User Query: "python engineer"`)
	assert.Contains(t, f.generator.prompt, "--- Candidate 2 ---")
}

func TestProcessQuery_EmptyCorpus(t *testing.T) {
	f := newFixture(t, nil)

	ans := f.pipeline.ProcessQuery(context.Background(), "anything")
	assert.Equal(t, OutcomeNoMatch, ans.Outcome)
	assert.Equal(t, NoMatchMessage, ans.Text)
	assert.Equal(t, 0, f.generator.calls)
}

func TestProcessQuery_GenerationUnavailable(t *testing.T) {
	f := newFixture(t, []domain.Employee{alice()})
	f.generator.err = &domain.GenerationError{Kind: domain.GenerationUnreachable, Model: "fake", Err: errors.New("connection refused")}

	ans := f.pipeline.ProcessQuery(context.Background(), "python engineer")
	assert.Equal(t, OutcomeGenerationError, ans.Outcome)
	assert.Equal(t, UnavailableMessage, ans.Text)

	failures := f.logs.FilterMessage("answer generation failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
	fields := failures[0].ContextMap()
	assert.Equal(t, "unreachable", fields["kind"])
	assert.Equal(t, "fake", fields["model"])
	assert.Contains(t, fields["error"], "connection refused")
	assert.NotEmpty(t, fields["query_id"])

	// A failed request does not affect the next one.
	f.generator.err = nil
	ans = f.pipeline.ProcessQuery(context.Background(), "python engineer")
	assert.Equal(t, OutcomeRecommendation, ans.Outcome)
}

func TestProcessQuery_RetrievalFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	enc := encoder.New()
	records := []domain.Employee{alice()}

	idx, err := NewIndexUseCase(embedding.NewHashEmbedder(8), enc, 10, logger).Build(context.Background(), records, nil)
	require.NoError(t, err)

	store := memstore.NewRecordStore(records)
	composer, err := NewPromptComposer(enc)
	require.NoError(t, err)
	gen := &fakeGenerator{reply: "unused"}

	p := NewPipeline(NewRetrieveUseCase(failingEmbedder{}, idx, store, logger), composer, gen, store, enc, PipelineConfig{}, logger)

	ans := p.ProcessQuery(context.Background(), "python")
	assert.Equal(t, OutcomeRetrievalError, ans.Outcome)
	assert.Equal(t, UnavailableMessage, ans.Text)
	assert.Equal(t, 0, gen.calls)

	failures := logs.FilterMessage("retrieval failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
	assert.Contains(t, failures[0].ContextMap()["error"], "embedding backend down")
}

func TestProcessQuery_Concurrent(t *testing.T) {
	f := newFixture(t, []domain.Employee{alice(), bob(), carol()})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ans := f.pipeline.ProcessQuery(context.Background(), "react developer")
			assert.Equal(t, OutcomeRecommendation, ans.Outcome)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, f.generator.calls)
}

func TestSearch(t *testing.T) {
	malformed := domain.Employee{Name: "Dave ML", Skills: []string{"ML"}}
	f := newFixture(t, nil)
	f.pipeline.records = memstore.NewRecordStore([]domain.Employee{alice(), bob(), malformed})

	t.Run("case-insensitive substring", func(t *testing.T) {
		got := f.pipeline.Search("ml")
		require.Len(t, got, 1)
		assert.Equal(t, "Alice", got[0].Name)
	})

	t.Run("matches labels of rendered text", func(t *testing.T) {
		got := f.pipeline.Search("availability: part")
		require.Len(t, got, 1)
		assert.Equal(t, "Bob", got[0].Name)
	})

	t.Run("empty filter returns all", func(t *testing.T) {
		got := f.pipeline.Search("")
		assert.Len(t, got, 3)
		assert.Equal(t, malformed, got[2])
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, f.pipeline.Search("cobol"))
	})
}

// Package app wires configuration, adapters and use cases into a ready
// query pipeline. It is the only place that knows about concrete adapters.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"staffrag/config"
	"staffrag/internal/adapter/cache"
	"staffrag/internal/adapter/embedding"
	"staffrag/internal/adapter/encoder"
	"staffrag/internal/adapter/llm"
	"staffrag/internal/adapter/memstore"
	"staffrag/internal/adapter/records"
	"staffrag/internal/domain"
	"staffrag/internal/observability"
	"staffrag/internal/port"
	"staffrag/internal/usecase"
)

// Dependencies holds everything a transport needs to serve requests.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Pipeline *usecase.Pipeline

	Embedder  port.Embedder
	Generator port.Generator
}

// Options adjusts construction without touching the config file.
type Options struct {
	// RootDir resolves a relative data source.
	RootDir string
	// Progress receives index build progress, may be nil.
	Progress usecase.ProgressFunc
	// SkipIndex loads records without embedding them, for commands that
	// only filter.
	SkipIndex bool
	// Embedder and Generator override the configured providers.
	Embedder  port.Embedder
	Generator port.Generator
}

// New loads records, builds the index and assembles the pipeline.
//
// Data and index failures are not fatal: the service starts with an empty
// store or without an index and answers every chat with the no-match reply.
// Only a misconfigured provider returns an error.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Dependencies, error) {
	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Embedder:  opts.Embedder,
		Generator: opts.Generator,
	}

	if deps.Embedder == nil {
		emb, err := NewEmbedder(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		deps.Embedder = emb
	}
	if deps.Generator == nil {
		gen, err := NewGenerator(cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
		deps.Generator = gen
	}

	recs := deps.loadRecords(ctx, cfg.ResolveDataSource(opts.RootDir))
	store := memstore.NewRecordStore(recs)
	observability.LoadedRecords.Set(float64(store.Len()))

	enc := encoder.New()
	var index port.VectorIndex
	if !opts.SkipIndex {
		index = deps.buildIndex(ctx, enc, store.All(), opts.Progress)
	}

	composer, err := usecase.NewPromptComposer(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt composer: %w", err)
	}

	retriever := usecase.NewRetrieveUseCase(deps.queryEmbedder(), index, store, logger)
	deps.Pipeline = usecase.NewPipeline(retriever, composer, deps.Generator, store, enc, usecase.PipelineConfig{
		ChatTopK:    cfg.Retrieve.ChatTopK,
		Temperature: cfg.Generation.Temperature,
	}, logger)

	logger.Info("pipeline initialized",
		zap.Int("records", store.Len()),
		zap.Bool("index_available", retriever.Available()),
		zap.String("embedder", deps.Embedder.ModelName()),
		zap.String("generator", deps.Generator.ModelName()))
	return deps, nil
}

func (d *Dependencies) loadRecords(ctx context.Context, location string) []domain.Employee {
	d.Logger.Info("loading employee data", zap.String("source", location))

	recs, err := records.Load(ctx, location, d.Config.Data.Format, d.Config.Data.Excludes)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			d.Logger.Warn("employee data unavailable, starting with an empty corpus", zap.Error(err))
		} else {
			d.Logger.Error("failed to load employee data", zap.Error(err))
		}
		return nil
	}

	d.Logger.Info("employee data loaded", zap.Int("count", len(recs)))
	return recs
}

// buildIndex returns a nil interface, not a typed nil, when no index exists.
func (d *Dependencies) buildIndex(ctx context.Context, enc *encoder.Encoder, recs []domain.Employee, progress usecase.ProgressFunc) port.VectorIndex {
	if len(recs) == 0 {
		d.Logger.Warn("no records to index")
		observability.IndexedRecords.Set(0)
		return nil
	}

	d.Logger.Info("building vector index",
		zap.Int("records", len(recs)),
		zap.String("embedder", d.Embedder.ModelName()))

	idx, err := usecase.NewIndexUseCase(d.Embedder, enc, d.Config.Embedding.BatchSize, d.Logger).Build(ctx, recs, progress)
	if err != nil {
		d.Logger.Error("index build failed, retrieval disabled", zap.Error(err))
		observability.IndexedRecords.Set(0)
		return nil
	}

	observability.IndexedRecords.Set(float64(idx.Len()))
	d.Logger.Info("vector index built", zap.Int("vectors", idx.Len()), zap.Int("dimension", idx.Dimension()))
	return idx
}

// queryEmbedder wraps the embedder with a query vector cache when enabled.
func (d *Dependencies) queryEmbedder() port.Embedder {
	size := d.Config.Embedding.QueryCacheSize
	if size <= 0 {
		return d.Embedder
	}
	qc := cache.NewQueryCache(size, d.Config.Embedding.QueryCacheTTL)
	cached := cache.NewCachedEmbedder(d.Embedder, qc)
	cached.OnLookup = func(hit bool) {
		result := "miss"
		if hit {
			result = "hit"
		}
		observability.QueryCacheLookups.WithLabelValues(result).Inc()
		observability.QueryCacheEntries.Set(float64(qc.Size()))
	}
	return cached
}

// NewEmbedder creates the configured embedding provider.
func NewEmbedder(cfg config.EmbeddingConfig) (port.Embedder, error) {
	opts := embedding.Options{
		BaseURL:   cfg.BaseURL,
		Dimension: cfg.Dimension,
		BatchSize: cfg.BatchSize,
		Timeout:   cfg.Timeout,
	}

	switch cfg.Provider {
	case "hash", "":
		return embedding.NewHashEmbedder(cfg.Dimension), nil
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Model, opts)
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, opts)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewGenerator creates the configured answer generator.
func NewGenerator(cfg config.GenerationConfig) (port.Generator, error) {
	switch cfg.Provider {
	case "ollama", "":
		return llm.NewOllamaGenerator(cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case "openai":
		return llm.NewOpenAIGenerator(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}
}

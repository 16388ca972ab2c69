package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"staffrag/internal/adapter/encoder"
	"staffrag/internal/adapter/store"
	"staffrag/internal/domain"
	"staffrag/internal/port"
)

// ProgressFunc is called after each embedded batch with the number of
// documents processed so far.
type ProgressFunc func(processed, total int)

// IndexUseCase builds the vector index from the loaded records.
type IndexUseCase struct {
	embedder  port.Embedder
	encoder   *encoder.Encoder
	batchSize int
	logger    *zap.Logger
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(embedder port.Embedder, enc *encoder.Encoder, batchSize int, logger *zap.Logger) *IndexUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IndexUseCase{
		embedder:  embedder,
		encoder:   enc,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Build renders every record, embeds the documents and returns a flat index
// whose positions match the record positions. Zero records fail with
// domain.ErrEmptyCorpus; a malformed record fails with domain.ErrMalformedRecord.
func (u *IndexUseCase) Build(ctx context.Context, records []domain.Employee, progress ProgressFunc) (*store.FlatIndex, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("build index: %w", domain.ErrEmptyCorpus)
	}

	u.logger.Info("preparing documents for indexing", zap.Int("records", len(records)))
	docs, err := u.encoder.RenderAll(records)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	u.logger.Info("generating embeddings",
		zap.String("model", u.embedder.ModelName()),
		zap.Int("documents", len(docs)),
	)

	vectors := make([][]float32, 0, len(docs))
	for i := 0; i < len(docs); i += u.batchSize {
		end := i + u.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch, err := u.embedder.Embed(ctx, docs[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", i, end, err)
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(batch), end-i)
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(len(vectors), len(docs))
		}
	}

	idx, err := store.NewFlatIndex(vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	u.logger.Info("vector index built",
		zap.Int("vectors", idx.Len()),
		zap.Int("dimension", idx.Dimension()),
	)
	return idx, nil
}

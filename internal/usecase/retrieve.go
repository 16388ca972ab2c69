package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"staffrag/internal/adapter/memstore"
	"staffrag/internal/domain"
	"staffrag/internal/port"
)

// RetrieveUseCase maps a free-text query to its nearest employee records.
type RetrieveUseCase struct {
	embedder port.Embedder
	index    port.VectorIndex // nil when no index could be built
	records  *memstore.RecordStore
	logger   *zap.Logger
}

var _ port.Retriever = (*RetrieveUseCase)(nil)

// NewRetrieveUseCase creates a new retrieve use case. Pass a nil index
// when the corpus was empty or the index build failed.
func NewRetrieveUseCase(
	embedder port.Embedder,
	index port.VectorIndex,
	records *memstore.RecordStore,
	logger *zap.Logger,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		index:    index,
		records:  records,
		logger:   logger,
	}
}

// Available reports whether a vector index is present.
func (u *RetrieveUseCase) Available() bool {
	return u.index != nil
}

// Retrieve returns up to k records ordered by ascending distance.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, query string, k int) ([]domain.Employee, error) {
	scored, err := u.RetrieveScored(ctx, query, k)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Employee, len(scored))
	for i, s := range scored {
		out[i] = s.Employee
	}
	return out, nil
}

// RetrieveScored returns up to k records with their positions and
// distances. The result length is min(k, corpus size).
func (u *RetrieveUseCase) RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredEmployee, error) {
	if k <= 0 {
		return nil, domain.ErrInvalidK
	}
	if u.index == nil {
		u.logger.Debug("vector index is not available")
		return []domain.ScoredEmployee{}, nil
	}

	u.logger.Debug("retrieving", zap.Int("k", k), zap.String("query", query))

	embeddings, err := u.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	neighbors, err := u.index.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]domain.ScoredEmployee, 0, len(neighbors))
	for _, n := range neighbors {
		rec, err := u.records.Get(n.Position)
		if err != nil {
			return nil, fmt.Errorf("index out of sync with record store: %w", err)
		}
		results = append(results, domain.ScoredEmployee{
			Employee: rec,
			Position: n.Position,
			Distance: n.Distance,
		})
	}

	u.logger.Debug("retrieved employees", zap.Int("count", len(results)))
	return results, nil
}

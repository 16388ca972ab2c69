package port

import (
	"context"

	"staffrag/internal/domain"
)

// Retriever returns the records closest to a free-text query.
type Retriever interface {
	// Retrieve returns up to k records ordered by ascending distance.
	Retrieve(ctx context.Context, query string, k int) ([]domain.Employee, error)

	// RetrieveScored is Retrieve with positions and distances attached.
	RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredEmployee, error)
}

// RecordSource yields employee records from some backing location.
type RecordSource interface {
	// Records returns every record in source order.
	Records(ctx context.Context) ([]domain.Employee, error)
}

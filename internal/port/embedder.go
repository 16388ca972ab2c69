package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, all of Dimension() length.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex answers k-nearest-neighbour queries over vectors keyed by
// their insertion position. Implementations are read-only after
// construction and safe for concurrent Search calls.
type VectorIndex interface {
	// Search returns up to k neighbours ordered by ascending distance.
	Search(query []float32, k int) ([]Neighbor, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimension returns the vector dimension of the index.
	Dimension() int
}

// Neighbor is a single search hit.
type Neighbor struct {
	Position int     // Insertion position of the stored vector
	Distance float64 // Squared L2 distance (lower is closer)
}

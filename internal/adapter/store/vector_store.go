package store

import (
	"fmt"
	"sort"

	"staffrag/internal/domain"
	"staffrag/internal/port"
)

// FlatIndex implements port.VectorIndex with an exact linear scan under
// squared Euclidean distance. It is immutable after construction, so
// concurrent searches need no locking.
type FlatIndex struct {
	dimension int
	vectors   [][]float32
}

var _ port.VectorIndex = (*FlatIndex)(nil)

// NewFlatIndex builds an index over vectors, keyed by slice position.
// Fails with domain.ErrEmptyCorpus when vectors is empty.
func NewFlatIndex(vectors [][]float32) (*FlatIndex, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("build flat index: %w", domain.ErrEmptyCorpus)
	}

	dimension := len(vectors[0])
	if dimension == 0 {
		return nil, fmt.Errorf("build flat index: zero-length vector at position 0")
	}

	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector dimension mismatch at position %d: expected %d, got %d", i, dimension, len(v))
		}
		stored[i] = append([]float32(nil), v...)
	}

	return &FlatIndex{
		dimension: dimension,
		vectors:   stored,
	}, nil
}

// Search returns the k stored vectors closest to query, ascending by
// distance. Equal distances keep insertion order.
func (idx *FlatIndex) Search(query []float32, k int) ([]port.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search flat index: %w", domain.ErrInvalidK)
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", idx.dimension, len(query))
	}

	scores := make([]port.Neighbor, len(idx.vectors))
	for i, v := range idx.vectors {
		scores[i] = port.Neighbor{
			Position: i,
			Distance: squaredL2(query, v),
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Distance < scores[j].Distance
	})

	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Len returns the number of indexed vectors.
func (idx *FlatIndex) Len() int {
	return len(idx.vectors)
}

// Dimension returns the vector dimension.
func (idx *FlatIndex) Dimension() int {
	return idx.dimension
}

// squaredL2 calculates the squared Euclidean distance between two vectors
// of equal length.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

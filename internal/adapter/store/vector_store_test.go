package store

import (
	"errors"
	"math/rand"
	"testing"

	"staffrag/internal/domain"
)

func TestNewFlatIndex_Empty(t *testing.T) {
	_, err := NewFlatIndex(nil)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestNewFlatIndex_DimensionMismatch(t *testing.T) {
	_, err := NewFlatIndex([][]float32{{1, 2}, {1, 2, 3}})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestFlatIndex_SearchOrder(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{
		{10, 0},
		{1, 0},
		{3, 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}

	wantPositions := []int{1, 2, 0}
	wantDistances := []float64{1, 9, 100}
	for i := range wantPositions {
		if got[i].Position != wantPositions[i] {
			t.Errorf("result %d: expected position %d, got %d", i, wantPositions[i], got[i].Position)
		}
		if got[i].Distance != wantDistances[i] {
			t.Errorf("result %d: expected distance %v, got %v", i, wantDistances[i], got[i].Distance)
		}
	}
}

func TestFlatIndex_FewerThanK(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{{1, 1}, {2, 2}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.Search([]float32{0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestFlatIndex_StableTies(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{
		{1, 0},
		{0, 1},
		{-1, 0},
		{0, -1},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.Search([]float32{0, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range got {
		if n.Position != i {
			t.Errorf("tie %d: expected insertion order position %d, got %d", i, i, n.Position)
		}
	}
}

func TestFlatIndex_InvalidK(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{{1}})
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []int{0, -1} {
		if _, err := idx.Search([]float32{0}, k); !errors.Is(err, domain.ErrInvalidK) {
			t.Errorf("k=%d: expected ErrInvalidK, got %v", k, err)
		}
	}
}

func TestFlatIndex_QueryDimensionMismatch(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Search([]float32{1, 2}, 1); err == nil {
		t.Error("expected query dimension mismatch error")
	}
}

func TestFlatIndex_NonDecreasingDistances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vectors := make([][]float32, 200)
	for i := range vectors {
		vectors[i] = []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
	}

	idx, err := NewFlatIndex(vectors)
	if err != nil {
		t.Fatal(err)
	}

	for q := 0; q < 20; q++ {
		query := []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
		got, err := idx.Search(query, 25)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Distance < got[i-1].Distance {
				t.Fatalf("query %d: distance decreased at %d: %v < %v", q, i, got[i].Distance, got[i-1].Distance)
			}
		}
	}
}

func TestFlatIndex_SearchDoesNotMutate(t *testing.T) {
	input := [][]float32{{3, 0}, {1, 0}}
	idx, err := NewFlatIndex(input)
	if err != nil {
		t.Fatal(err)
	}

	input[0][0] = 0 // caller mutation must not leak into the index

	first, _ := idx.Search([]float32{0, 0}, 2)
	second, _ := idx.Search([]float32{0, 0}, 2)
	if first[0].Position != 1 || second[0].Position != 1 {
		t.Errorf("expected position 1 closest on both searches, got %d and %d", first[0].Position, second[0].Position)
	}
	if idx.Len() != 2 || idx.Dimension() != 2 {
		t.Errorf("unexpected shape: len=%d dim=%d", idx.Len(), idx.Dimension())
	}
}

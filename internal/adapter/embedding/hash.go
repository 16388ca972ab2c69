package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"staffrag/internal/port"
)

// HashEmbedder is a local, deterministic embedder based on feature hashing
// of stemmed terms and character trigrams. It needs no model server, which
// makes it the offline default and the embedder used in tests.
type HashEmbedder struct {
	dimension int
	tokenizer *Tokenizer
	stemmer   *Stemmer
}

var _ port.Embedder = (*HashEmbedder)(nil)

const trigramWeight = 0.5

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{
		dimension: dimension,
		tokenizer: NewTokenizer(),
		stemmer:   NewStemmer(),
	}
}

func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		embeddings[i] = e.embedOne(text)
	}
	return embeddings, nil
}

func (e *HashEmbedder) embedOne(text string) []float32 {
	acc := make([]float64, e.dimension)

	for _, tok := range e.tokenizer.Tokenize(text) {
		e.add(acc, "w:"+e.stemmer.Stem(tok), 1)

		padded := "^" + tok + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			e.add(acc, "t:"+string(runes[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, e.dimension)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// add hashes feature into a bucket with a hash-derived sign so collisions
// cancel out on average.
func (e *HashEmbedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) ModelName() string {
	return "hash"
}

// Package cache keeps recent query embeddings so repeated questions skip
// the embedding backend.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"staffrag/internal/port"
)

// QueryCache is a size-bounded LRU of query vectors with a TTL.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	key     string
	vector  []float32
	created time.Time
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(model, query string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Get returns a copy of the cached vector for query under model.
func (c *QueryCache) Get(model, query string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[cacheKey(model, query)]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.created) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, entry.key)
		return nil, false
	}

	c.order.MoveToFront(el)
	return append([]float32(nil), entry.vector...), true
}

// Put stores a copy of vector, evicting the least recently used entry when full.
func (c *QueryCache) Put(model, query string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, query)
	entry := &cacheEntry{key: key, vector: append([]float32(nil), vector...), created: c.now()}

	if el, ok := c.entries[key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	c.entries[key] = c.order.PushFront(entry)
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CachedEmbedder serves single-text embeddings from a QueryCache. Batches
// go straight to the wrapped embedder; only queries repeat.
type CachedEmbedder struct {
	port.Embedder
	cache *QueryCache
	// OnLookup, if set, is told whether each single-text lookup hit. It runs
	// after a miss has been stored.
	OnLookup func(hit bool)
}

var _ port.Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(embedder port.Embedder, cache *QueryCache) *CachedEmbedder {
	return &CachedEmbedder{Embedder: embedder, cache: cache}
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) != 1 {
		return e.Embedder.Embed(ctx, texts)
	}

	model := e.Embedder.ModelName()
	if vec, ok := e.cache.Get(model, texts[0]); ok {
		e.report(true)
		return [][]float32{vec}, nil
	}

	vecs, err := e.Embedder.Embed(ctx, texts)
	if err == nil && len(vecs) == 1 {
		e.cache.Put(model, texts[0], vecs[0])
	}
	e.report(false)
	if err != nil {
		return nil, err
	}
	return vecs, nil
}

func (e *CachedEmbedder) report(hit bool) {
	if e.OnLookup != nil {
		e.OnLookup(hit)
	}
}

package embedcache

import (
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/pharmassist/internal/rag"
)

// Wrap memoises e in an expiring LRU. A non-positive size or ttl returns e
// unchanged.
func Wrap(e rag.Embedder, size int, ttl time.Duration) rag.Embedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruEmbedder{
		next:  e,
		cache: expirable.NewLRU[string, []float64](size, nil, ttl),
	}
}

type lruEmbedder struct {
	next  rag.Embedder
	cache *expirable.LRU[string, []float64]
}

func (l *lruEmbedder) Embed(text string, dim int) []float64 {
	key := strconv.Itoa(dim) + ":" + text
	if cached, ok := l.cache.Get(key); ok {
		return cloneEmbedding(cached)
	}
	res := l.next.Embed(text, dim)
	l.cache.Add(key, cloneEmbedding(res))
	return res
}

func cloneEmbedding(values []float64) []float64 {
	if values == nil {
		return nil
	}
	clone := make([]float64, len(values))
	copy(clone, values)
	return clone
}

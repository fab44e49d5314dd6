package embedcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pharmassist/internal/rag"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(text string, dim int) []float64 {
	c.calls++
	return rag.Embed(text, dim)
}

func TestWrapCachesByTextAndDim(t *testing.T) {
	next := &countingEmbedder{}
	e := Wrap(next, 16, time.Minute)

	first := e.Embed("paracétamol", 32)
	second := e.Embed("paracétamol", 32)
	require.Equal(t, first, second)
	require.Equal(t, rag.Embed("paracétamol", 32), first)
	require.Equal(t, 1, next.calls)

	require.Len(t, e.Embed("paracétamol", 64), 64)
	require.Equal(t, 2, next.calls)
}

func TestWrapReturnsCopies(t *testing.T) {
	e := Wrap(&countingEmbedder{}, 4, time.Minute)
	vec := e.Embed("x", 8)
	vec[0] = -1
	require.NotEqual(t, -1.0, e.Embed("x", 8)[0])
}

func TestWrapDisabled(t *testing.T) {
	next := &countingEmbedder{}
	require.Same(t, next, Wrap(next, 0, time.Minute))
	require.Same(t, next, Wrap(next, 10, 0))
}

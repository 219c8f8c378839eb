package embedding

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/sandevgo/carebot/internal/core"
)

// Cached memoizes an Embedder. Remote embedders are slow and billed per call, and
// the same greeting or short message is embedded over and over.
type Cached struct {
	inner core.Embedder
	cache *ristretto.Cache
}

// NewCached keeps up to size vectors.
func NewCached(inner core.Embedder, size int64) (*Cached, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return append([]float32(nil), v.([]float32)...), nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(text, append([]float32(nil), vec...), 1)
	// Sets are buffered; wait so the next identical call is a hit.
	c.cache.Wait()
	return vec, nil
}

func (c *Cached) Dimension() int {
	return c.inner.Dimension()
}

func (c *Cached) Close() error {
	c.cache.Close()
	return nil
}

package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/storage/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(384)

	a1, err := e.Embed(ctx, "Hello there!")
	require.NoError(t, err)
	a2, err := e.Embed(ctx, "hello   THERE")
	require.NoError(t, err)
	assert.Len(t, a1, 384)
	assert.Equal(t, a1, a2, "punctuation and case must not matter")
	assert.InDelta(t, 1.0, vector.CosineSimilarity(a1, a1), 1e-5)

	empty, err := e.Embed(ctx, "?!")
	require.NoError(t, err)
	assert.Len(t, empty, 384)
	assert.Equal(t, float32(0), vector.CosineSimilarity(empty, a1))
}

func TestHashEmbedder_Similarity(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(384)

	embed := func(s string) []float32 {
		v, err := e.Embed(ctx, s)
		require.NoError(t, err)
		return v
	}

	related := vector.CosineSimilarity(embed("I skipped breakfast today"), embed("skipped breakfast again"))
	unrelated := vector.CosineSimilarity(embed("I skipped breakfast today"), embed("the weather is lovely"))
	assert.Greater(t, related, unrelated)
}

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) Dimension() int { return 2 }

func TestCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{}
	c, err := NewCached(inner, 100)
	require.NoError(t, err)
	defer c.Close()

	v1, err := c.Embed(ctx, "abc")
	require.NoError(t, err)
	v1[0] = 42

	v2, err := c.Embed(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1}, v2, "callers must not alias cached vectors")
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, c.Dimension())
}

func TestCached_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{err: errors.New("down")}
	c, err := NewCached(inner, 100)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Embed(ctx, "x")
	assert.Error(t, err)
	_, err = c.Embed(ctx, "x")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

var _ core.Embedder = (*Cached)(nil)

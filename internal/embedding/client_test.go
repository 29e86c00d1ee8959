package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_Deterministic(t *testing.T) {
	c := NewMockClient(32)

	a, err := c.EmbedSingle(context.Background(), "the same text")
	require.NoError(t, err)
	b, err := c.EmbedSingle(context.Background(), "the same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := c.EmbedSingle(context.Background(), "different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestMockClient_VectorsAreNormalized(t *testing.T) {
	c := NewMockClient(16)

	vec, err := c.EmbedSingle(context.Background(), "normalize me")
	require.NoError(t, err)
	require.Len(t, vec, 16)

	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestBatch_RespectsBatchSizeAndOrder(t *testing.T) {
	c := NewMockClient(8)

	texts := []string{"one", "two", "three", "four", "five"}
	var progress []int
	vectors, err := Batch(context.Background(), c, texts, 2, func(done int) {
		progress = append(progress, done)
	})
	require.NoError(t, err)

	require.Len(t, vectors, 5)
	assert.Equal(t, []int{2, 4, 5}, progress)

	// Batching must not change what each text maps to.
	single, err := c.EmbedSingle(context.Background(), "three")
	require.NoError(t, err)
	assert.Equal(t, single, vectors[2])
}

func TestBatch_DefaultBatchSize(t *testing.T) {
	c := NewMockClient(8)

	vectors, err := Batch(context.Background(), c, []string{"a", "b"}, 0, nil)
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	s := 0.0
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestEmbedder_PrepareAndEmbed(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"Un hacker descubre que la realidad es una simulación",
		"Una joven camarera en Montmartre cambia la vida de sus vecinos",
	}
	require.NoError(t, e.Prepare(corpus))
	assert.Equal(t, "tfidf", e.Name())
	assert.Greater(t, e.Dimension(), 0)

	v, err := e.Embed(context.Background(), "hacker simulación")
	require.NoError(t, err)
	require.Len(t, v, e.Dimension())
	assert.InDelta(t, 1.0, norm(v), 1e-5)
}

func TestEmbedder_SimilarTextsScoreHigher(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"hacker realidad simulación", "camarera montmartre vecinos"}))
	ctx := context.Background()

	q, err := e.Embed(ctx, "simulación hacker")
	require.NoError(t, err)
	a, err := e.Embed(ctx, "hacker realidad simulación")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "camarera montmartre vecinos")
	require.NoError(t, err)

	dot := func(x, y []float32) float32 {
		var s float32
		for i := range x {
			s += x[i] * y[i]
		}
		return s
	}
	assert.Greater(t, dot(q, a), dot(q, b))
}

func TestEmbedder_UnknownWordsGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"matrix"}))

	v, err := e.Embed(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, 0.0, norm(v))
}

func TestEmbedder_Errors(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotPrepared)

	require.ErrorIs(t, e.Prepare(nil), ErrEmptyCorpus)
	require.ErrorIs(t, e.Prepare([]string{"", "de la"}), ErrNoTokens)
}

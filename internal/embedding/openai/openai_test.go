package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEmbedder fails the first `failures` calls, then returns vec.
type scriptedEmbedder struct {
	failures int
	vec      []float32
	calls    int
	batches  [][]string
}

func (s *scriptedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches = append(s.batches, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *scriptedEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("503 service unavailable")
	}
	return s.vec, nil
}

func newTestClient(emb *scriptedEmbedder) (*Client, *[]time.Duration) {
	var slept []time.Duration
	c := newClient(emb, "test-model")
	c.wait = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestClient_Embed(t *testing.T) {
	emb := &scriptedEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	c, slept := newTestClient(emb)

	assert.Equal(t, 0, c.Dimension())
	v, err := c.Embed(context.Background(), "Matrix")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v)
	assert.Equal(t, 3, c.Dimension())
	assert.Empty(t, *slept)
	assert.Equal(t, "openai:test-model", c.Name())
}

func TestClient_EmbedRetries(t *testing.T) {
	emb := &scriptedEmbedder{failures: 2, vec: []float32{1}}
	c, slept := newTestClient(emb)

	v, err := c.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, v)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, *slept)
}

func TestClient_EmbedGivesUp(t *testing.T) {
	emb := &scriptedEmbedder{failures: 100}
	c, _ := newTestClient(emb)

	_, err := c.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 6, emb.calls)
}

func TestClient_EmptyVector(t *testing.T) {
	c, _ := newTestClient(&scriptedEmbedder{})

	_, err := c.Embed(context.Background(), "x")
	require.ErrorIs(t, err, ErrNoEmbedding)
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("MOVIERAG_TEST_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "MOVIERAG_TEST_KEY"})
	require.Error(t, err)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(-1))
	assert.Equal(t, 800*time.Millisecond, retryDelay(2))
	assert.Equal(t, 5*time.Second, retryDelay(10))
}

func TestClient_EmbedBatchChunksBySize(t *testing.T) {
	emb := &scriptedEmbedder{vec: []float32{0.5, 0.5}}
	c, _ := newTestClient(emb)
	c.batchSize = 2

	texts := []string{"Matrix", "Amélie", "Machuca", "Roma", "Nueve reinas"}
	vecs, err := c.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, [][]string{{"Matrix", "Amélie"}, {"Machuca", "Roma"}, {"Nueve reinas"}}, emb.batches)
	assert.Equal(t, 2, c.Dimension())
}

func TestClient_EmbedBatchRetriesFailedChunk(t *testing.T) {
	emb := &scriptedEmbedder{failures: 1, vec: []float32{1}}
	c, slept := newTestClient(emb)
	c.batchSize = 3

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Len(t, emb.batches, 2)
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, *slept)
}

func TestClient_EmbedBatchEmpty(t *testing.T) {
	emb := &scriptedEmbedder{vec: []float32{1}}
	c, _ := newTestClient(emb)

	vecs, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Empty(t, emb.batches)
}

func TestNewClient_BatchSizeFromConfig(t *testing.T) {
	t.Setenv("MOVIERAG_TEST_KEY", "sk-test")
	c, err := NewClient(Config{APIKeyEnv: "MOVIERAG_TEST_KEY", BatchSize: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, c.batchSize)

	c, err = NewClient(Config{APIKeyEnv: "MOVIERAG_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, c.batchSize)
}

func TestClient_RetryStopsOnCancel(t *testing.T) {
	emb := &scriptedEmbedder{failures: 100}
	c := newClient(emb, "test-model")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := c.Embed(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, emb.calls)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))
}

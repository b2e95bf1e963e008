package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// ErrNoEmbedding is returned when the provider answers with an empty vector.
var ErrNoEmbedding = errors.New("no embedding returned")

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	embedder   embeddings.Embedder
	model      string
	maxRetries int
	batchSize  int
	wait       func(context.Context, time.Duration) error

	mu        sync.Mutex
	dimension int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	BatchSize int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	llm, err := lcopenai.New(
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithToken(key),
		lcopenai.WithEmbeddingModel(cfg.Model),
		lcopenai.WithHTTPClient(&http.Client{Timeout: t}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	opts := []embeddings.Option{}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	emb, err := embeddings.NewEmbedder(llm, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	c := newClient(emb, cfg.Model)
	if cfg.BatchSize > 0 {
		c.batchSize = cfg.BatchSize
	}
	return c, nil
}

func newClient(emb embeddings.Embedder, model string) *Client {
	return &Client{embedder: emb, model: model, maxRetries: 5, batchSize: defaultBatchSize, wait: sleepCtx}
}

const defaultBatchSize = 32

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Prepare is not required for remote embedding. Dimension is set on first embed.
func (c *Client) Prepare([]string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text, retrying with
// exponential backoff on failure.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := c.retry(ctx, func() error {
		v, err := c.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return ErrNoEmbedding
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.setDimension(len(out))
	return out, nil
}

// EmbedBatch embeds texts in requests of at most batchSize texts each.
// Every request is retried on its own.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		chunk := texts[start:end]
		var vecs [][]float32
		err := c.retry(ctx, func() error {
			v, err := c.embedder.EmbedDocuments(ctx, chunk)
			if err != nil {
				return err
			}
			if len(v) != len(chunk) {
				return fmt.Errorf("%w: got %d vectors for %d texts", ErrNoEmbedding, len(v), len(chunk))
			}
			for _, vec := range v {
				if len(vec) == 0 {
					return ErrNoEmbedding
				}
			}
			vecs = v
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	if len(out) > 0 {
		c.setDimension(len(out[0]))
	}
	return out, nil
}

func (c *Client) setDimension(n int) {
	c.mu.Lock()
	if c.dimension == 0 {
		c.dimension = n
	}
	c.mu.Unlock()
}

func (c *Client) retry(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, retryDelay(attempt-1)); err != nil {
				return err
			}
		}
		if lastErr = call(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("openai embeddings failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

// Package chromem stores embedded movies in an embedded chromem-go database,
// optionally persisted to disk.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"movierag/internal/domain"
	"movierag/internal/vectorstore"
)

var (
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrLengthMismatch   = errors.New("documents and vectors length mismatch")
	ErrNotInitialized   = errors.New("collection not initialized")

	// errQueryText is returned if chromem ever asks us to embed text: all
	// vectors are computed upstream.
	errQueryText = errors.New("chromem store only accepts precomputed embeddings")
)

type Config struct {
	// Path enables persistence. Empty keeps everything in memory.
	Path       string
	Compress   bool
	Collection string
}

type Storage struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	dimension  int
	logger     *zap.Logger
}

func NewStorage(cfg Config, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", cfg.Path, err)
		}
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}
	return &Storage{db: db, name: cfg.Collection, logger: logger}, nil
}

func noEmbedding(context.Context, string) ([]float32, error) { return nil, errQueryText }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return ErrInvalidDimension
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("getting/creating collection %s: %w", s.name, err)
	}
	s.collection = c
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(ctx context.Context, docs []schema.Document, vectors [][]float32) error {
	if s.collection == nil {
		return ErrNotInitialized
	}
	if len(docs) != len(vectors) {
		return ErrLengthMismatch
	}
	if len(docs) == 0 {
		return nil
	}
	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		md := make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			md[k] = fmt.Sprint(v)
		}
		chromemDocs[i] = chromem.Document{
			ID:        vectorstore.PointID(d, i),
			Metadata:  md,
			Embedding: vectors[i],
			Content:   d.PageContent,
		}
	}
	// concurrency of 1 since embeddings are already computed
	if err := s.collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	s.logger.Debug("added documents to chromem",
		zap.String("collection", s.name),
		zap.Int("count", len(docs)),
	)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]domain.SearchResult, error) {
	if s.collection == nil {
		return nil, ErrNotInitialized
	}
	if topK <= 0 {
		topK = 5
	}
	// chromem rejects nResults above the collection size
	if n := s.collection.Count(); topK > n {
		topK = n
	}
	if topK == 0 {
		return []domain.SearchResult{}, nil
	}
	var where map[string]string
	if len(filter) > 0 {
		where = filter
	}
	res, err := s.collection.QueryEmbedding(ctx, vector, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.name, err)
	}
	out := make([]domain.SearchResult, 0, len(res))
	for _, r := range res {
		md := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			md[k] = v
		}
		out = append(out, domain.SearchResult{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: md,
			Score:    float64(r.Similarity),
		})
	}
	return out, nil
}

// Clear deletes the collection and starts an empty one with the same name.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", s.name, err)
	}
	s.collection = nil
	if s.dimension == 0 {
		return nil
	}
	return s.Init(ctx, s.dimension)
}

package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"movierag/internal/domain"
	"movierag/internal/vectorstore"
)

var (
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrLengthMismatch   = errors.New("documents and vectors length mismatch")
)

const textPayloadKey = "page_content"

// pointsAPI is the subset of *qdrant.Client used by Storage.
type pointsAPI interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// Storage keeps documents in a Qdrant collection over gRPC.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	api        pointsAPI
	collection string
	timeout    time.Duration
	dimension  uint64
	logger     *zap.Logger
}

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config, logger *zap.Logger) (*Storage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}
	return newStorage(client, cfg, logger), nil
}

func newStorage(api pointsAPI, cfg Config, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{api: api, collection: cfg.Collection, timeout: timeout, logger: logger}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return ErrInvalidDimension
	}
	s.dimension = uint64(dimension)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	exists, err := s.api.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) create(ctx context.Context) error {
	err := s.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	s.logger.Info("created qdrant collection",
		zap.String("collection", s.collection),
		zap.Uint64("dimension", s.dimension),
	)
	return nil
}

func (s *Storage) Upsert(ctx context.Context, docs []schema.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return ErrLengthMismatch
	}
	if len(docs) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(docs))
	for i := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(vectorstore.PointID(docs[i], i)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: toPayload(docs[i]),
		}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	wait := true
	if _, err := s.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	}); err != nil {
		return fmt.Errorf("upserting into %s: %w", s.collection, err)
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	points, err := s.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         toFilter(filter),
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.collection, err)
	}
	results := make([]domain.SearchResult, 0, len(points))
	for _, p := range points {
		md := make(map[string]any, len(p.GetPayload()))
		text := ""
		for k, v := range p.GetPayload() {
			if k == textPayloadKey {
				text = v.GetStringValue()
				continue
			}
			md[k] = v.GetStringValue()
		}
		results = append(results, domain.SearchResult{
			ID:       p.GetId().GetUuid(),
			Text:     text,
			Metadata: md,
			Score:    float64(p.GetScore()),
		})
	}
	return results, nil
}

// Clear drops the collection and recreates it empty when the dimension is known.
func (s *Storage) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	exists, err := s.api.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.api.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("dropping collection %s: %w", s.collection, err)
		}
	}
	if s.dimension == 0 {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) Close() error { return s.api.Close() }

func toPayload(doc schema.Document) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		payload[k] = qdrant.NewValueString(fmt.Sprint(v))
	}
	payload[textPayloadKey] = qdrant.NewValueString(doc.PageContent)
	return payload
}

func toFilter(filter map[string]string) *qdrant.Filter {
	if len(filter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	must := make([]*qdrant.Condition, 0, len(keys))
	for _, k := range keys {
		must = append(must, qdrant.NewMatch(k, filter[k]))
	}
	return &qdrant.Filter{Must: must}
}

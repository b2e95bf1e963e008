package memory

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/schema"

	"movierag/internal/domain"
	"movierag/internal/vectorstore"
)

var (
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrLengthMismatch    = errors.New("documents and vectors length mismatch")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

type entry struct {
	id     string
	doc    schema.Document
	vector []float32
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	byID      map[string]int
}

func NewStorage() *Storage { return &Storage{byID: map[string]int{}} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.entries = nil
	s.byID = map[string]int{}
	return nil
}

func (s *Storage) Upsert(_ context.Context, docs []schema.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return ErrDimensionMismatch
		}
	}
	for i := range docs {
		doc := schema.Document{PageContent: docs[i].PageContent, Metadata: maps.Clone(docs[i].Metadata)}
		e := entry{id: vectorstore.PointID(docs[i], i), doc: doc, vector: vectors[i]}
		if j, ok := s.byID[e.id]; ok {
			s.entries[j] = e
			continue
		}
		s.byID[e.id] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float32, topK int, filter map[string]string) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	// vectors are assumed L2-normalized, so the dot product is the cosine
	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(s.entries))
	for i, e := range s.entries {
		if !vectorstore.MatchesFilter(e.doc.Metadata, filter) {
			continue
		}
		candidates = append(candidates, scored{i, dot(e.vector, vector)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, c := range candidates[:topK] {
		e := s.entries[c.idx]
		results = append(results, domain.SearchResult{
			ID:       e.id,
			Text:     e.doc.PageContent,
			Metadata: maps.Clone(e.doc.Metadata),
			Score:    c.score,
		})
	}
	return results, nil
}

func (s *Storage) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = map[string]int{}
	return nil
}

// Len returns the number of stored documents.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

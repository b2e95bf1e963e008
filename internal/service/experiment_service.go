package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"movierag/internal/domain"
	"movierag/internal/indexing"
	"movierag/internal/vectorstore"
)

// ErrNotIndexed is returned by Query before any successful Index.
var ErrNotIndexed = errors.New("no documents indexed")

// IndexSummary describes the outcome of one Index call.
type IndexSummary struct {
	Experiment string
	Strategy   string
	Embedder   string
	Documents  int
	Dimension  int
}

func (s IndexSummary) String() string {
	return fmt.Sprintf("%s: %d movies embedded as %q with %s (dim=%d)",
		s.Experiment, s.Documents, s.Strategy, s.Embedder, s.Dimension)
}

// Experiment identifies a run and carries its embedding configuration.
type Experiment struct {
	Name     string
	Strategy string
	Config   indexing.Config
	Workers  int
}

type ExperimentService struct {
	experiment Experiment
	embedder   domain.Embedder
	store      vectorstore.Storage
	logger     *zap.Logger
	docs       []domain.EmbeddableDocument
}

func NewExperimentService(exp Experiment, embedder domain.Embedder, store vectorstore.Storage, logger *zap.Logger) *ExperimentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExperimentService{experiment: exp, embedder: embedder, store: store, logger: logger}
}

// Build turns movies into embeddable documents without touching the index.
func (s *ExperimentService) Build(ctx context.Context, movies []domain.Movie) ([]domain.EmbeddableDocument, error) {
	if s.experiment.Workers > 1 {
		return indexing.BuildDocumentsConcurrent(ctx, movies, s.experiment.Config, s.experiment.Workers)
	}
	return indexing.BuildDocuments(movies, s.experiment.Config)
}

// Index builds documents for movies, embeds them and replaces the store contents.
func (s *ExperimentService) Index(ctx context.Context, movies []domain.Movie) (IndexSummary, error) {
	log := s.logger.With(
		zap.String("experiment", s.experiment.Name),
		zap.String("strategy", s.experiment.Strategy),
	)
	docs, err := s.Build(ctx, movies)
	if err != nil {
		log.Error("building documents failed", zap.Error(err))
		return IndexSummary{}, fmt.Errorf("building documents: %w", err)
	}
	if len(docs) == 0 {
		return IndexSummary{}, errors.New("no movies to index")
	}
	log.Info("documents built", zap.Int("count", len(docs)))

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return IndexSummary{}, fmt.Errorf("preparing embedder: %w", err)
	}
	vectors, err := s.embedAll(ctx, docs, texts)
	if err != nil {
		return IndexSummary{}, err
	}
	// Remote embedders only learn their dimension after the first call.
	dim := s.embedder.Dimension()
	if err := s.store.Init(ctx, dim); err != nil {
		return IndexSummary{}, fmt.Errorf("initializing store: %w", err)
	}
	if err := s.store.Clear(ctx); err != nil {
		return IndexSummary{}, fmt.Errorf("clearing store: %w", err)
	}
	if err := s.store.Upsert(ctx, domain.SchemaDocuments(docs), vectors); err != nil {
		return IndexSummary{}, fmt.Errorf("upserting documents: %w", err)
	}
	// Keep documents for lexical fallback ranking
	s.docs = docs

	summary := IndexSummary{
		Experiment: s.experiment.Name,
		Strategy:   s.experiment.Strategy,
		Embedder:   s.embedder.Name(),
		Documents:  len(docs),
		Dimension:  dim,
	}
	log.Info("index ready", zap.Int("documents", summary.Documents), zap.Int("dimension", dim))
	return summary, nil
}

func (s *ExperimentService) embedAll(ctx context.Context, docs []domain.EmbeddableDocument, texts []string) ([][]float32, error) {
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		vectors, err := be.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding documents: %w", err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedding documents: got %d vectors for %d texts", len(vectors), len(texts))
		}
		return vectors, nil
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding movie %d (%v): %w", i, docs[i].Metadata[domain.FieldTitle], err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Query embeds the query text and searches the store. When the query has no
// usable signal it falls back to word overlap over the indexed texts.
func (s *ExperimentService) Query(ctx context.Context, query string, topK int, filter map[string]string) ([]domain.SearchResult, error) {
	if s.docs == nil {
		return nil, ErrNotIndexed
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if isZero(vec) {
		s.logger.Debug("zero query vector, using lexical search", zap.String("query", query))
		return s.lexicalSearch(query, topK, filter), nil
	}
	res, err := s.store.Search(ctx, vec, topK, filter)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return s.lexicalSearch(query, topK, filter), nil
	}
	return res, nil
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

func (s *ExperimentService) lexicalSearch(query string, topK int, filter map[string]string) []domain.SearchResult {
	qset := toTokenSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, 0, len(s.docs))
	for i, d := range s.docs {
		if !vectorstore.MatchesFilter(d.Metadata, filter) {
			continue
		}
		scores = append(scores, pair{i, overlapOchiai(qset, d.Text)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK <= 0 {
		topK = 5
	}
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, p := range scores[:topK] {
		d := s.docs[p.idx]
		out = append(out, domain.SearchResult{Text: d.Text, Metadata: maps.Clone(d.Metadata), Score: p.score})
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over distinct lowercase words.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}

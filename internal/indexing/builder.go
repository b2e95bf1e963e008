// Package indexing turns movies into embeddable documents under an
// experiment's embedding configuration.
package indexing

import (
	"context"

	"golang.org/x/sync/errgroup"

	"movierag/internal/domain"
)

// Config selects how movies are represented in the embedding space for one
// experiment run.
type Config struct {
	TextToEmbed domain.TextToEmbedFunc
}

// BuildDocuments produces one document per movie, in input order. Each
// document carries the strategy's text and a copy of every movie field.
// If the strategy fails for any movie no documents are returned.
func BuildDocuments(movies []domain.Movie, cfg Config) ([]domain.EmbeddableDocument, error) {
	if cfg.TextToEmbed == nil {
		return nil, domain.ErrNoStrategy
	}
	docs := make([]domain.EmbeddableDocument, 0, len(movies))
	for i, m := range movies {
		doc, err := buildOne(i, m, cfg.TextToEmbed)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// BuildDocumentsConcurrent is BuildDocuments spread over at most workers
// goroutines. Output order still matches input order. The first failure
// cancels the remaining work.
func BuildDocumentsConcurrent(ctx context.Context, movies []domain.Movie, cfg Config, workers int) ([]domain.EmbeddableDocument, error) {
	if cfg.TextToEmbed == nil {
		return nil, domain.ErrNoStrategy
	}
	if workers <= 1 {
		return BuildDocuments(movies, cfg)
	}
	docs := make([]domain.EmbeddableDocument, len(movies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range movies {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := buildOne(i, movies[i], cfg.TextToEmbed)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func buildOne(i int, m domain.Movie, fn domain.TextToEmbedFunc) (domain.EmbeddableDocument, error) {
	text, err := fn(m)
	if err != nil {
		return domain.EmbeddableDocument{}, &domain.StrategyError{Index: i, Title: m.TitleES, Err: err}
	}
	return domain.EmbeddableDocument{Text: text, Metadata: m.Metadata()}, nil
}

package domain

import "github.com/tmc/langchaingo/schema"

// TextToEmbedFunc decides which text represents a movie in the embedding
// space. Implementations must be pure: no mutation, no hidden state.
type TextToEmbedFunc func(Movie) (string, error)

// EmbeddableDocument pairs the text that gets embedded with a snapshot of
// the full source movie.
type EmbeddableDocument struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Schema converts the document to the langchaingo hand-off shape.
func (d EmbeddableDocument) Schema() schema.Document {
	md := make(map[string]any, len(d.Metadata))
	for k, v := range d.Metadata {
		md[k] = v
	}
	return schema.Document{PageContent: d.Text, Metadata: md}
}

// SchemaDocuments converts a batch, preserving order.
func SchemaDocuments(docs []EmbeddableDocument) []schema.Document {
	out := make([]schema.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Schema()
	}
	return out
}

// SearchResult is a stored document matched by a query, with its score.
type SearchResult struct {
	ID       string
	Text     string
	Metadata map[string]any
	Score    float64
}

// Movie reconstructs the source movie from the stored metadata.
func (r SearchResult) Movie() Movie { return MovieFromMetadata(r.Metadata) }

package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/schema"

	"movierag/internal/domain"
)

// Storage persists embedded documents and supports similarity search.
// Filter keys are metadata field names matched by exact string equality.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, docs []schema.Document, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]domain.SearchResult, error)
	Clear(ctx context.Context) error
}

var pointNamespace = uuid.MustParse("8f1c2d8e-4b9a-5e3f-9d61-7a0c4e2b1f55")

// PointID derives a stable id from a document's title and batch position,
// so re-indexing the same catalog overwrites instead of duplicating.
func PointID(doc schema.Document, index int) string {
	title, _ := doc.Metadata[domain.FieldTitle].(string)
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", title, index))).String()
}

// MatchesFilter reports whether every filter entry equals the metadata value.
func MatchesFilter(md map[string]any, filter map[string]string) bool {
	for k, want := range filter {
		if fmt.Sprint(md[k]) != want {
			return false
		}
	}
	return true
}

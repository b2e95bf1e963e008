package vectorstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"

	"movierag/internal/domain"
)

func TestPointID(t *testing.T) {
	d := schema.Document{Metadata: domain.Movie{TitleES: "Matrix"}.Metadata()}

	id := PointID(d, 0)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, PointID(d, 0))
	assert.NotEqual(t, id, PointID(d, 1))
}

func TestMatchesFilter(t *testing.T) {
	md := domain.Movie{TitleES: "Matrix", Country: "USA"}.Metadata()

	assert.True(t, MatchesFilter(md, nil))
	assert.True(t, MatchesFilter(md, map[string]string{domain.FieldCountry: "USA"}))
	assert.False(t, MatchesFilter(md, map[string]string{domain.FieldCountry: "Chile"}))
	assert.False(t, MatchesFilter(md, map[string]string{"year": "1999"}))
}

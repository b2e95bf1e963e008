package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/domain"
)

type fakePort struct {
	gotQuery  string
	gotFilter map[string]string
	results   []domain.SearchResult
	err       error
}

func (f *fakePort) Query(_ context.Context, q string, _ int, filter map[string]string) ([]domain.SearchResult, error) {
	f.gotQuery = q
	f.gotFilter = filter
	return f.results, f.err
}

func TestParseQuery(t *testing.T) {
	q, filter := ParseQuery("hacker country=USA  realidad")
	assert.Equal(t, "hacker realidad", q)
	assert.Equal(t, map[string]string{"country": "USA"}, filter)

	q, filter = ParseQuery("a=b= =x")
	assert.Equal(t, "=x", q)
	assert.Equal(t, map[string]string{"a": "b="}, filter)

	q, filter = ParseQuery("solo texto")
	assert.Equal(t, "solo texto", q)
	assert.Nil(t, filter)
}

func typeAndEnter(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestModel_QueryFlow(t *testing.T) {
	port := &fakePort{results: []domain.SearchResult{
		{Text: "Título: Matrix\nSinopsis: Un hacker", Metadata: domain.Movie{TitleES: "Matrix", Country: "USA"}.Metadata(), Score: 0.9},
		{Text: "Título: Machuca", Metadata: domain.Movie{TitleES: "Machuca"}.Metadata(), Score: 0.1},
	}}
	m := New(port, "summary")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(Model)

	m = typeAndEnter(m, "hacker country=USA")
	assert.Equal(t, "hacker", port.gotQuery)
	assert.Equal(t, map[string]string{"country": "USA"}, port.gotFilter)
	require.Len(t, m.results, 2)
	assert.Contains(t, m.renderCurrentResult(), "Matrix")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "Movie Retrieval")
}

func TestModel_QueryError(t *testing.T) {
	m := New(&fakePort{err: errors.New("store down")}, "")
	m = typeAndEnter(m, "x")
	assert.Contains(t, m.status, "store down")
	assert.Equal(t, "No results yet.", m.renderCurrentResult())
}

func TestHighlightBestLine(t *testing.T) {
	text := "Título: Matrix\nDirector: Wachowski"
	out := highlightBestLine(text, "wachowski")
	assert.Contains(t, out, "Título: Matrix\n")
	assert.Contains(t, out, "Wachowski")

	assert.Equal(t, text, highlightBestLine(text, "zzz zz"))
	assert.Equal(t, "", highlightBestLine("", "x"))
}

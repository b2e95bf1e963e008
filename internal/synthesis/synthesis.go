// Package synthesis holds the strategies that turn a movie into the text
// that gets embedded.
package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"movierag/internal/domain"
)

// Strategy names accepted in experiment configs.
const (
	NameSynopsis = "synopsis"
	NameEnriched = "enriched"
)

const (
	listDelimiter = ";"
	listSeparator = ", "
)

var strategies = map[string]domain.TextToEmbedFunc{
	NameSynopsis: Synopsis,
	NameEnriched: Enriched,
}

// Synopsis embeds the synopsis as is. An empty synopsis yields empty text.
func Synopsis(m domain.Movie) (string, error) {
	return m.Synopsis, nil
}

// Enriched renders title, genres, director, country, cast and synopsis as
// labeled lines, in that order.
func Enriched(m domain.Movie) (string, error) {
	var b strings.Builder
	b.WriteString("Título: " + m.TitleES + "\n")
	b.WriteString("Géneros: " + humanizeList(m.GenreTags) + "\n")
	b.WriteString("Director: " + m.DirectorTop5 + "\n")
	b.WriteString("País: " + m.Country + "\n")
	b.WriteString("Elenco: " + humanizeList(m.CastTop5) + "\n")
	b.WriteString("Sinopsis: " + m.Synopsis)
	return b.String(), nil
}

func humanizeList(s string) string {
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(s, listDelimiter, listSeparator)
}

// Lookup resolves a strategy by name.
func Lookup(name string) (domain.TextToEmbedFunc, error) {
	fn, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
	}
	return fn, nil
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	out := make([]string, 0, len(strategies))
	for n := range strategies {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Package dataset loads the movie catalog from CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"movierag/internal/domain"
)

var (
	// ErrMissingTitle is returned for rows without a title_es value.
	ErrMissingTitle = errors.New("row has no title")

	// ErrMissingColumn is returned when the header lacks title_es.
	ErrMissingColumn = errors.New("missing required column")
)

// LoadMovies reads the CSV file at path.
func LoadMovies(path string, delimiter string) ([]domain.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	movies, err := ReadMovies(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return movies, nil
}

// ReadMovies parses CSV whose header row names the movie fields. Column
// order is free and unknown columns are ignored.
func ReadMovies(r io.Reader, delimiter string) ([]domain.Movie, error) {
	cr := csv.NewReader(r)
	if delimiter != "" {
		d, _ := utf8.DecodeRuneInString(delimiter)
		cr.Comma = d
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Movie{}, nil
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[domain.FieldTitle]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, domain.FieldTitle)
	}

	movies := []domain.Movie{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		m := domain.Movie{
			TitleES:      get(domain.FieldTitle),
			Synopsis:     get(domain.FieldSynopsis),
			GenreTags:    get(domain.FieldGenres),
			CastTop5:     get(domain.FieldCast),
			DirectorTop5: get(domain.FieldDirector),
			Country:      get(domain.FieldCountry),
		}
		if m.TitleES == "" {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, ErrMissingTitle)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

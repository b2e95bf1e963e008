package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/domain"
)

const sampleCSV = `title_es,synopsis,genre_tags,cast_top_5,director_top_5,country,year
Matrix,A hacker...,Sci-Fi;Action,Keanu;Carrie,Wachowski,USA,1999
Amélie,,Comedia;Romance,Audrey Tautou,Jean-Pierre Jeunet,Francia,2001
`

func TestReadMovies(t *testing.T) {
	movies, err := ReadMovies(strings.NewReader(sampleCSV), ",")
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, domain.Movie{
		TitleES:      "Matrix",
		Synopsis:     "A hacker...",
		GenreTags:    "Sci-Fi;Action",
		CastTop5:     "Keanu;Carrie",
		DirectorTop5: "Wachowski",
		Country:      "USA",
	}, movies[0])
	assert.Equal(t, "", movies[1].Synopsis)
	assert.Equal(t, "Francia", movies[1].Country)
}

func TestReadMovies_ColumnOrderAndMissingColumns(t *testing.T) {
	in := "country;title_es\nChile;Machuca\n"

	movies, err := ReadMovies(strings.NewReader(in), ";")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Machuca", movies[0].TitleES)
	assert.Equal(t, "Chile", movies[0].Country)
	assert.Empty(t, movies[0].CastTop5)
}

func TestReadMovies_Empty(t *testing.T) {
	movies, err := ReadMovies(strings.NewReader(""), ",")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestReadMovies_MissingTitleColumn(t *testing.T) {
	_, err := ReadMovies(strings.NewReader("synopsis\nalgo\n"), ",")
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadMovies_MissingTitleValue(t *testing.T) {
	_, err := ReadMovies(strings.NewReader("title_es,synopsis\nA,x\n,y\n"), ",")
	require.ErrorIs(t, err, ErrMissingTitle)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoadMovies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	movies, err := LoadMovies(path, "")
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	_, err = LoadMovies(filepath.Join(t.TempDir(), "nope.csv"), ",")
	require.ErrorIs(t, err, os.ErrNotExist)
}

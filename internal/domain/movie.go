package domain

// Metadata keys. They mirror the Movie attribute names so downstream filters
// can key off the same names the catalog uses.
const (
	FieldTitle    = "title_es"
	FieldSynopsis = "synopsis"
	FieldGenres   = "genre_tags"
	FieldCast     = "cast_top_5"
	FieldDirector = "director_top_5"
	FieldCountry  = "country"
)

// MovieFields lists every Movie attribute in declaration order.
var MovieFields = []string{FieldTitle, FieldSynopsis, FieldGenres, FieldCast, FieldDirector, FieldCountry}

// Movie is a single catalog item as produced by the dataset loader.
// Genres and cast are ";"-separated lists.
type Movie struct {
	TitleES      string `json:"title_es"`
	Synopsis     string `json:"synopsis"`
	GenreTags    string `json:"genre_tags"`
	CastTop5     string `json:"cast_top_5"`
	DirectorTop5 string `json:"director_top_5"`
	Country      string `json:"country"`
}

// Metadata returns a fresh map holding every field of the movie.
func (m Movie) Metadata() map[string]any {
	return map[string]any{
		FieldTitle:    m.TitleES,
		FieldSynopsis: m.Synopsis,
		FieldGenres:   m.GenreTags,
		FieldCast:     m.CastTop5,
		FieldDirector: m.DirectorTop5,
		FieldCountry:  m.Country,
	}
}

// MovieFromMetadata rebuilds a Movie from a metadata map. Missing or
// non-string values become empty fields.
func MovieFromMetadata(md map[string]any) Movie {
	str := func(k string) string {
		s, _ := md[k].(string)
		return s
	}
	return Movie{
		TitleES:      str(FieldTitle),
		Synopsis:     str(FieldSynopsis),
		GenreTags:    str(FieldGenres),
		CastTop5:     str(FieldCast),
		DirectorTop5: str(FieldDirector),
		Country:      str(FieldCountry),
	}
}

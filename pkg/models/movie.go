package models

import "time"

// MovieSummary is what the catalog returns for one movie, mapped from
// either the search endpoint (first result) or the by-id endpoint.
// ReleaseDate is kept exactly as the catalog sent it.
type MovieSummary struct {
	TMDBID      int64  `json:"tmdb_id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

// MovieRecord is the stored form, one row per TMDB id.
// A nil ReleaseDate means the date is unknown.
type MovieRecord struct {
	TMDBID      int64      `json:"tmdb_id"`
	Title       string     `json:"title"`
	Overview    string     `json:"overview"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

// TranslatedField pairs a display value with the text it came from.
type TranslatedField struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Language   string `json:"language"`
}

// Package search runs the query and random-movie pipelines: ask the model for
// titles, resolve them in the catalog, save them, translate and format.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moviefinder/internal/catalog"
	"moviefinder/internal/completion"
	"moviefinder/internal/movies"
	"moviefinder/internal/titles"
	"moviefinder/pkg/models"
)

const (
	DefaultLanguage = "es"
	DefaultModel    = "llama3"

	// MaxRandomID bounds the ids drawn by Random, inclusive.
	MaxRandomID = 10000
)

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrNoTitles   = errors.New("no valid movie titles extracted")
)

const titlesPromptTemplate = "Devuelve una lista de películas con títulos en inglés que corresponda a esta petición: '%s'. " +
	"Cada título debe estar en una línea separada, sin ningún otro tipo de texto o separador. " +
	"Sin fechas ni otros datos."

// Store persists one movie record.
type Store interface {
	Upsert(ctx context.Context, m models.MovieRecord) error
}

// Translator returns text in lang, or text itself when it cannot translate.
type Translator interface {
	Translate(ctx context.Context, text, lang, model string) string
}

// Notifier is told about every saved movie. Optional.
type Notifier interface {
	PublishSaved(runID string, tmdbID int64, title string)
}

type Query struct {
	Text     string
	Language string
	Model    string
	Limit    int
}

type RandomQuery struct {
	Language string
	Model    string
}

type Result struct {
	RunID  string
	Movies []string
}

type Service struct {
	LLM        completion.Generator
	Extractor  titles.Extractor
	Catalog    catalog.Lookup
	Store      Store
	Translator Translator
	Notifier   Notifier

	// IDSource draws the id used by Random.
	IDSource func() int64

	DefaultLanguage string
	DefaultModel    string

	Log zerolog.Logger
}

type Deps struct {
	LLM        completion.Generator
	Extractor  titles.Extractor
	Catalog    catalog.Lookup
	Store      Store
	Translator Translator
	Notifier   Notifier
}

func NewService(d Deps, log zerolog.Logger) *Service {
	return &Service{
		LLM:             d.LLM,
		Extractor:       d.Extractor,
		Catalog:         d.Catalog,
		Store:           d.Store,
		Translator:      d.Translator,
		Notifier:        d.Notifier,
		IDSource:        RandomID,
		DefaultLanguage: DefaultLanguage,
		DefaultModel:    DefaultModel,
		Log:             log.With().Str("component", "search").Logger(),
	}
}

// RandomID is uniform over [1, MaxRandomID].
func RandomID() int64 {
	return rand.Int63n(MaxRandomID) + 1
}

// TitlesPrompt builds the instruction that asks the model for titles.
func TitlesPrompt(query string) string {
	return fmt.Sprintf(titlesPromptTemplate, query)
}

// entry is one resolved movie on its way to display.
type entry struct {
	summary  models.MovieSummary
	title    models.TranslatedField
	overview models.TranslatedField
}

// Search resolves a free-text query into formatted movie blocks. It returns
// ErrEmptyQuery or ErrNoTitles for client mistakes; any other error means
// the completion service itself could not be used.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	runID := uuid.NewString()
	log := s.Log.With().Str("run_id", runID).Logger()
	res := Result{RunID: runID, Movies: []string{}}

	if strings.TrimSpace(q.Text) == "" {
		return res, ErrEmptyQuery
	}
	lang, model := s.resolve(q.Language, q.Model)

	raw, err := s.LLM.GenerateRaw(ctx, model, TitlesPrompt(q.Text))
	if err != nil {
		return res, fmt.Errorf("generate titles: %w", err)
	}
	log.Debug().Str("raw", raw).Msg("completion response")

	candidates := s.Extractor.Extract(raw)
	if len(candidates) == 0 {
		log.Warn().Str("query", q.Text).Msg("no valid movie titles")
		return res, ErrNoTitles
	}
	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}

	var found []models.MovieSummary
	for _, title := range candidates {
		if title == "" {
			continue
		}
		m, err := s.Catalog.SearchFirst(ctx, title)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				log.Info().Str("title", title).Msg("no catalog match")
			} else {
				log.Error().Err(err).Str("title", title).Msg("catalog lookup failed")
			}
			continue
		}
		found = append(found, *m)
	}

	for _, m := range found {
		s.save(ctx, log, runID, m)
	}

	entries := s.translate(ctx, found, lang, model)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].summary.ReleaseDate < entries[j].summary.ReleaseDate
	})

	for _, e := range entries {
		res.Movies = append(res.Movies, Format(e.title, e.overview, e.summary.ReleaseDate, lang == "es"))
	}
	log.Info().Int("candidates", len(candidates)).Int("movies", len(res.Movies)).Msg("search done")
	return res, nil
}

// Random fetches one movie by a random TMDB id. A failed or empty fetch is
// not an error: the block is formatted with empty fields and nothing is saved.
func (s *Service) Random(ctx context.Context, q RandomQuery) (Result, error) {
	runID := uuid.NewString()
	log := s.Log.With().Str("run_id", runID).Logger()
	lang, model := s.resolve(q.Language, q.Model)

	id := s.IDSource()
	m, err := s.Catalog.GetByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Int64("tmdb_id", id).Msg("random movie lookup failed")
		m = &models.MovieSummary{}
	}

	if m.TMDBID > 0 {
		s.save(ctx, log, runID, *m)
	} else {
		log.Warn().Int64("drawn_id", id).Msg("random movie has no id, not saved")
	}

	e := s.translate(ctx, []models.MovieSummary{*m}, lang, model)[0]
	return Result{
		RunID:  runID,
		Movies: []string{Format(e.title, e.overview, e.summary.ReleaseDate, lang == "es")},
	}, nil
}

func (s *Service) resolve(lang, model string) (string, string) {
	if lang == "" {
		lang = s.DefaultLanguage
	}
	if model == "" {
		model = s.DefaultModel
	}
	return lang, model
}

// save upserts one movie; failures are logged and swallowed.
func (s *Service) save(ctx context.Context, log zerolog.Logger, runID string, m models.MovieSummary) {
	if err := s.Store.Upsert(ctx, movies.RecordFromSummary(m)); err != nil {
		log.Error().Err(err).Str("title", m.Title).Int64("tmdb_id", m.TMDBID).Msg("save movie failed")
		return
	}
	if s.Notifier != nil {
		s.Notifier.PublishSaved(runID, m.TMDBID, m.Title)
	}
}

// translate builds display fields. Only "es" is translated; every other
// language passes the catalog text through.
func (s *Service) translate(ctx context.Context, found []models.MovieSummary, lang, model string) []entry {
	out := make([]entry, 0, len(found))
	for _, m := range found {
		e := entry{
			summary:  m,
			title:    models.TranslatedField{Original: m.Title, Translated: m.Title, Language: lang},
			overview: models.TranslatedField{Original: m.Overview, Translated: m.Overview, Language: lang},
		}
		if lang == "es" {
			e.overview.Translated = s.Translator.Translate(ctx, m.Overview, lang, model)
			e.title.Translated = s.Translator.Translate(ctx, m.Title, lang, model)
		}
		out = append(out, e)
	}
	return out
}

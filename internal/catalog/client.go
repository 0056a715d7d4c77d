// Package catalog looks movies up in TMDB.
//
// Only two endpoints are used: /search/movie for free-text lookups, where the
// first result is taken as the match, and /movie/{id} for direct fetches.
// Calls are never retried. They do pass through a circuit breaker, so while
// TMDB is failing the client answers immediately with gobreaker.ErrOpenState.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"moviefinder/pkg/models"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
)

// ErrNotFound means the lookup succeeded but matched nothing.
var ErrNotFound = errors.New("catalog: movie not found")

// callerGone marks a request abandoned because the caller's context ended.
// It says nothing about TMDB's health, so the breaker ignores it.
type callerGone struct{ err error }

func (e *callerGone) Error() string { return e.err.Error() }
func (e *callerGone) Unwrap() error { return e.err }

// Lookup is the part of Client the orchestrators depend on.
type Lookup interface {
	SearchFirst(ctx context.Context, title string) (*models.MovieSummary, error)
	GetByID(ctx context.Context, id int64) (*models.MovieSummary, error)
}

type Client struct {
	BaseURL  string
	APIKey   string
	Language string
	HTTP     *http.Client

	cb  *gobreaker.CircuitBreaker[[]byte]
	log zerolog.Logger
}

type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	log = log.With().Str("component", "catalog").Logger()
	c := &Client{
		BaseURL:  strings.TrimRight(opts.BaseURL, "/"),
		APIKey:   opts.APIKey,
		Language: opts.Language,
		HTTP:     &http.Client{Timeout: opts.Timeout},
		log:      log,
	}

	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var gone *callerGone
			return err == nil || errors.Is(err, ErrNotFound) || errors.As(err, &gone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

type searchResponse struct {
	Page    *int          `json:"page"`
	Results []movieResult `json:"results"`
}

type movieResult struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Overview    *string `json:"overview"`
	ReleaseDate *string `json:"release_date"`
}

func (m movieResult) summary() *models.MovieSummary {
	s := &models.MovieSummary{}
	if m.ID != nil {
		s.TMDBID = *m.ID
	}
	if m.Title != nil {
		s.Title = *m.Title
	}
	if m.Overview != nil {
		s.Overview = *m.Overview
	}
	if m.ReleaseDate != nil {
		s.ReleaseDate = *m.ReleaseDate
	}
	return s
}

// SearchFirst returns the first search result for title, or ErrNotFound
// when the result list is empty.
func (c *Client) SearchFirst(ctx context.Context, title string) (*models.MovieSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("catalog: empty title")
	}

	q := url.Values{}
	q.Set("query", title)
	body, err := c.get(ctx, "/search/movie", q)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("catalog: decode search: %w", err)
	}
	if len(sr.Results) == 0 {
		return nil, ErrNotFound
	}
	return sr.Results[0].summary(), nil
}

// GetByID fetches one movie. A 404 is reported as ErrNotFound; a 200 with
// an empty object yields a summary with zero fields.
func (c *Client) GetByID(ctx context.Context, id int64) (*models.MovieSummary, error) {
	body, err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), url.Values{})
	if err != nil {
		return nil, err
	}

	var m movieResult
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("catalog: decode movie %d: %w", id, err)
	}
	return m.summary(), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	q.Set("api_key", c.APIKey)
	q.Set("language", c.Language)
	u := c.BaseURL + path + "?" + q.Encode()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}

	return c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("catalog: build request: %w", err)
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &callerGone{fmt.Errorf("catalog: request %s: %w", path, ctx.Err())}
			}
			return nil, fmt.Errorf("catalog: request %s: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &callerGone{fmt.Errorf("catalog: read %s: %w", path, ctx.Err())}
			}
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, fmt.Errorf("catalog: %s status %d", path, resp.StatusCode)
		}
		return body, nil
	})
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Error           string   `json:"error"`
	Movies          []string `json:"movies"`
	Recommendations string   `json:"recommendations"`
}

type movie struct {
	TMDBID      int64  `json:"tmdb_id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

type movieList struct {
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []movie `json:"items"`
}

func (c *apiClient) Search(ctx context.Context, query, language, model string, limit int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("language", language)
	q.Set("model", model)
	q.Set("limit", strconv.Itoa(limit))

	var out searchResponse
	if err := c.getJSON(ctx, "/search/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Random(ctx context.Context, language, model string) (*searchResponse, error) {
	q := url.Values{}
	q.Set("language", language)
	q.Set("model", model)

	var out searchResponse
	if err := c.getJSON(ctx, "/search/random/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) ListMovies(ctx context.Context, keyword string, limit, offset int) (*movieList, error) {
	q := url.Values{}
	if keyword != "" {
		q.Set("q", keyword)
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out movieList
	if err := c.getJSON(ctx, "/movies", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) GetMovie(ctx context.Context, id int64) (*movie, error) {
	var out movie
	if err := c.getJSON(ctx, "/movies/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON decodes the body into out. Non-2xx replies become an error
// carrying the API's "error" message when there is one.
func (c *apiClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("GET %s failed: %s", path, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

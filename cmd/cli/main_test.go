package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/", r.URL.Path)
		assert.Equal(t, "space movies", r.URL.Query().Get("query"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"movies":["Título: Alien\nDescripción: x\nFecha de estreno: 1979-05-25\n"],"recommendations":""}`))
	}))
	defer srv.Close()

	out, err := run(t, srv, "search", "space movies", "--language", "en", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Título: Alien")
}

func TestSearchCommandShowsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No se encontraron títulos válidos de películas.","movies":[],"recommendations":""}`))
	}))
	defer srv.Close()

	_, err := run(t, srv, "search", "???")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No se encontraron títulos")
}

func TestRandomCommandEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/random/", r.URL.Path)
		_, _ = w.Write([]byte(`{"movies":[],"recommendations":""}`))
	}))
	defer srv.Close()

	out, err := run(t, srv, "random")
	require.NoError(t, err)
	assert.Contains(t, out, "No se encontraron películas.")
}

func TestMoviesCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movies":
			assert.Equal(t, "alien", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"total":1,"limit":20,"offset":0,"items":[{"tmdb_id":348,"title":"Alien","overview":"o","release_date":"1979-05-25"}]}`))
		case "/movies/348":
			_, _ = w.Write([]byte(`{"tmdb_id":348,"title":"Alien","overview":"In space no one can hear you scream.","release_date":""}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := run(t, srv, "movies", "list", "--q", "alien")
	require.NoError(t, err)
	assert.Contains(t, out, "1 saved movie(s)")
	assert.Contains(t, out, "348")
	assert.Contains(t, out, "1979-05-25")

	out, err = run(t, srv, "movies", "get", "348")
	require.NoError(t, err)
	assert.Contains(t, out, "Alien (-)")
	assert.Contains(t, out, "hear you scream")

	_, err = run(t, srv, "movies", "get", "abc")
	assert.Error(t, err)
}

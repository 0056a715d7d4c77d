package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviefinder/internal/logging"
)

func newTestRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.svc, logging.Nop()).RegisterRoutes(r.Group("/search"))
	return r
}

func do(t *testing.T, r *gin.Engine, target string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestHandlerEmptyQuery(t *testing.T) {
	r := newTestRouter(newFixture(t))

	code, body := do(t, r, "/search/?query=")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, msgEmptyQuery, body["error"])
	assert.Equal(t, []any{}, body["movies"])
	assert.Equal(t, "", body["recommendations"])
}

func TestHandlerSearchOK(t *testing.T) {
	f := newFixture(t)
	f.llm.raw = "Star Wars\nInterstellar\n"
	r := newTestRouter(f)

	code, body := do(t, r, "/search/?query=space+adventure+movies&language=en&model=llama3&limit=5")
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "error")
	assert.Len(t, body["movies"], 2)
	assert.Equal(t, "", body["recommendations"])
}

func TestHandlerSearchNothingResolvedIsOK(t *testing.T) {
	f := newFixture(t)
	f.llm.raw = "Unknown Film\n"
	r := newTestRouter(f)

	code, body := do(t, r, "/search/?query=x&language=en")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["movies"])
}

func TestHandlerNoTitles(t *testing.T) {
	f := newFixture(t)
	f.llm.raw = ""
	r := newTestRouter(f)

	code, body := do(t, r, "/search/?query=x")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, msgNoTitles, body["error"])
	assert.Equal(t, []any{}, body["movies"])
}

func TestHandlerBadLimit(t *testing.T) {
	r := newTestRouter(newFixture(t))

	code, body := do(t, r, "/search/?query=x&limit=lots")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{}, body["movies"])
}

func TestHandlerCompletionDown(t *testing.T) {
	f := newFixture(t)
	f.llm.err = errors.New("connection refused")
	r := newTestRouter(f)

	code, body := do(t, r, "/search/?query=x")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["error"], "Error inesperado: ")
	assert.Contains(t, body["error"], "connection refused")
	assert.Equal(t, []any{}, body["movies"])
	assert.Equal(t, "", body["recommendations"])
}

func TestHandlerPanicBecomes500(t *testing.T) {
	f := newFixture(t)
	f.llm.raw = "Star Wars\n"
	f.catalog.panics = true
	r := newTestRouter(f)

	code, body := do(t, r, "/search/?query=x")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["error"], "catalog exploded")
	assert.Equal(t, []any{}, body["movies"])
}

func TestHandlerRandom(t *testing.T) {
	f := newFixture(t)
	f.svc.IDSource = func() int64 { return 11 }
	r := newTestRouter(f)

	code, body := do(t, r, "/search/random/?language=en")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, body["movies"], 1)
	assert.Contains(t, body["movies"].([]any)[0], "Star Wars")
	assert.Equal(t, "", body["recommendations"])
}

func TestHandlerWithoutTrailingSlash(t *testing.T) {
	f := newFixture(t)
	f.llm.raw = "Star Wars\n"
	f.svc.IDSource = func() int64 { return 11 }
	r := newTestRouter(f)

	code, body := do(t, r, "/search?query=star&language=en")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["movies"], 1)

	code, body = do(t, r, "/search/random?language=en")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["movies"], 1)
}

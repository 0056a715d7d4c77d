package search

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgEmptyQuery = "No se proporcionó una consulta de búsqueda."
	msgNoTitles   = "No se encontraron títulos válidos de películas."
	msgBadParams  = "Parámetros de búsqueda inválidos."
)

// Response is the body of both search endpoints. Recommendations is
// reserved and always empty.
type Response struct {
	Error           string   `json:"error,omitempty"`
	Movies          []string `json:"movies"`
	Recommendations string   `json:"recommendations"`
}

type Handler struct {
	Service *Service
	Log     zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{Service: svc, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(Recovery(h.Log))
	rg.GET("", h.search)
	rg.GET("/", h.search)        // GET /search/
	rg.GET("/random", h.random)
	rg.GET("/random/", h.random) // GET /search/random/
}

type searchParams struct {
	Query    string `form:"query"`
	Language string `form:"language"`
	Model    string `form:"model"`
	Limit    int    `form:"limit"`
}

type randomParams struct {
	Language string `form:"language"`
	Model    string `form:"model"`
}

func (h *Handler) search(c *gin.Context) {
	var p searchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		fail(c, http.StatusBadRequest, msgBadParams)
		return
	}

	res, err := h.Service.Search(c.Request.Context(), Query{
		Text:     p.Query,
		Language: p.Language,
		Model:    p.Model,
		Limit:    p.Limit,
	})
	switch {
	case errors.Is(err, ErrEmptyQuery):
		fail(c, http.StatusBadRequest, msgEmptyQuery)
	case errors.Is(err, ErrNoTitles):
		fail(c, http.StatusBadRequest, msgNoTitles)
	case err != nil:
		h.Log.Error().Err(err).Str("run_id", res.RunID).Msg("search failed")
		fail(c, http.StatusInternalServerError, unexpected(err))
	default:
		c.JSON(http.StatusOK, Response{Movies: res.Movies})
	}
}

func (h *Handler) random(c *gin.Context) {
	var p randomParams
	if err := c.ShouldBindQuery(&p); err != nil {
		fail(c, http.StatusBadRequest, msgBadParams)
		return
	}

	res, err := h.Service.Random(c.Request.Context(), RandomQuery{Language: p.Language, Model: p.Model})
	if err != nil {
		h.Log.Error().Err(err).Str("run_id", res.RunID).Msg("random search failed")
		fail(c, http.StatusInternalServerError, unexpected(err))
		return
	}
	c.JSON(http.StatusOK, Response{Movies: res.Movies})
}

// Recovery turns a panic in a search handler into the usual 500 body.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("%v", recovered)
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("panic in search handler")
		c.Abort()
		fail(c, http.StatusInternalServerError, unexpected(err))
	})
}

func unexpected(err error) string {
	return "Error inesperado: " + err.Error()
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Error: msg, Movies: []string{}})
}

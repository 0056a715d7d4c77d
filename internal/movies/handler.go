package movies

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"moviefinder/pkg/models"
)

type Handler struct {
	Repo *Repo
	Log  zerolog.Logger
}

func NewHandler(repo *Repo, log zerolog.Logger) *Handler {
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)             // GET /movies
	rg.GET("/:tmdb_id", h.getByID) // GET /movies/:tmdb_id
}

// movieView renders the release date as YYYY-MM-DD, or "" when unknown.
type movieView struct {
	TMDBID      int64  `json:"tmdb_id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
}

func toView(m models.MovieRecord) movieView {
	v := movieView{TMDBID: m.TMDBID, Title: m.Title, Overview: m.Overview}
	if m.ReleaseDate != nil {
		v.ReleaseDate = m.ReleaseDate.Format(dateLayout)
	}
	return v
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Limit:  parseInt(c.Query("limit"), defaultPageSize),
		Offset: parseInt(c.Query("offset"), 0),
	}.Normalize()

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		h.Log.Error().Err(err).Msg("count movies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.Log.Error().Err(err).Msg("list movies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	views := make([]movieView, 0, len(items))
	for _, m := range items {
		views = append(views, toView(m))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  views,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("tmdb_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tmdb_id"})
		return
	}

	m, err := h.Repo.GetByTMDBID(c.Request.Context(), id)
	if err != nil {
		h.Log.Error().Err(err).Int64("tmdb_id", id).Msg("get movie")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, toView(*m))
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

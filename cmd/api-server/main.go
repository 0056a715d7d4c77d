package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moviefinder/internal/catalog"
	"moviefinder/internal/completion"
	"moviefinder/internal/feed"
	"moviefinder/internal/logging"
	"moviefinder/internal/movies"
	"moviefinder/internal/search"
	"moviefinder/internal/titles"
	"moviefinder/internal/translate"
	"moviefinder/pkg/database"
	"moviefinder/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		l := logging.New(logging.DefaultConfig())
		l.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Log)

	db, err := database.Open(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	if cfg.Catalog.APIKey == "" {
		log.Warn().Msg("catalog.api_key is empty; TMDB lookups will fail")
	}

	llm := completion.NewClient(cfg.Completion.URL, cfg.Completion.Timeout)
	tmdb := catalog.NewClient(catalog.Options{
		BaseURL:  cfg.Catalog.BaseURL,
		APIKey:   cfg.Catalog.APIKey,
		Language: cfg.Catalog.Language,
		Timeout:  cfg.Catalog.Timeout,
	}, log)
	movieRepo := movies.NewRepo(db)
	hub := feed.NewHub(log)

	svc := search.NewService(search.Deps{
		LLM:        llm,
		Extractor:  titles.NewEnvelopeExtractor(log),
		Catalog:    tmdb,
		Store:      movieRepo,
		Translator: translate.NewTranslator(llm, cfg.Completion.Model, log),
		Notifier:   hub,
	}, log)
	svc.DefaultLanguage = cfg.Search.Language
	svc.DefaultModel = cfg.Completion.Model

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), accessLog(log), gin.Recovery())
	_ = router.SetTrustedProxies(cfg.Server.TrustedProxies)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Database.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hub.Stats().WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hub.Stats().WSClients,
		})
	})

	router.GET("/ws", feed.WSHandler(hub))

	search.NewHandler(svc, log).RegisterRoutes(router.Group("/search"))
	movies.NewHandler(movieRepo, log).RegisterRoutes(router.Group("/movies"))

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	log.Info().Msg("server stopped")
}

// requestID tags every request with an X-Request-ID, reusing the caller's.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func accessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

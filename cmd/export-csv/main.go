package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"moviefinder/internal/logging"
	"moviefinder/internal/movies"
	"moviefinder/pkg/database"
	"moviefinder/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml")
		out        = flag.String("out", "data/movies.csv", "output CSV path")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		l := logging.New(logging.DefaultConfig())
		l.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("create output file")
	}
	defer f.Close()

	n, err := movies.NewRepo(db).ExportCSV(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Msg("export movies failed")
	}
	log.Info().Int("rows", n).Str("path", *out).Msg("exported movies")
}

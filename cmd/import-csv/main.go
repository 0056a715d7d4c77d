package main

import (
	"context"
	"flag"
	"os"
	"time"

	"moviefinder/internal/logging"
	"moviefinder/internal/movies"
	"moviefinder/pkg/database"
	"moviefinder/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml")
		in         = flag.String("in", "data/movies.csv", "input CSV path")
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

	f, err := os.Open(*in)
	if err != nil {
		log.Fatal().Err(err).Msg("open input file")
	}
	defer f.Close()

	n, err := movies.NewRepo(db).ImportCSV(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Int("imported", n).Msg("import movies failed")
	}
	log.Info().Int("rows", n).Str("path", *in).Msg("imported movies")
}

// Command processor runs one full pipeline refresh and exits: scrape,
// sync, fetch the combined dataset, classify, score, and persist.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jonesrussell/trendwatch/internal/bootstrap"
	"github.com/jonesrussell/trendwatch/internal/config"
	"github.com/jonesrussell/trendwatch/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync may fail, nothing to do

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Refresher.Refresh(context.Background()); err != nil {
		logger.Error("pipeline refresh failed", "error", err)
		os.Exit(1)
	}

	logger.Info("pipeline refresh finished",
		"records", app.Store.Snapshot().Len(),
	)
}

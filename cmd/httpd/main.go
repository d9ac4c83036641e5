// Command httpd serves the trendwatch dashboard API and keeps the dataset
// fresh with a scheduled pipeline refresh.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonesrussell/trendwatch/internal/api"
	"github.com/jonesrussell/trendwatch/internal/bootstrap"
	"github.com/jonesrussell/trendwatch/internal/config"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"github.com/jonesrussell/trendwatch/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serve whatever the last run persisted; the poller refreshes later.
	if err := app.Refresher.LoadFromDatabase(ctx); err != nil {
		logger.Warn("startup dataset load failed, serving empty store", "error", err)
	}

	if cfg.Service.RefreshOnStart {
		go func() {
			if refreshErr := app.Refresher.Refresh(ctx); refreshErr != nil {
				logger.Error("startup refresh failed", "error", refreshErr)
			}
		}()
	}

	poller := pipeline.NewPoller(app.Refresher, cfg.Service.RefreshInterval, logger)
	if err := poller.Start(ctx); err != nil {
		logger.Error("start poller", "error", err)
		os.Exit(1)
	}
	defer poller.Stop()

	server := api.NewServer(app.Handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	})

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			"port", cfg.Service.Port,
			"version", cfg.Service.Version,
		)
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// Package bootstrap assembles the service components from configuration.
// Both binaries (httpd and the one-shot processor) share this wiring.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/trendwatch/internal/api"
	"github.com/jonesrussell/trendwatch/internal/classifier"
	"github.com/jonesrussell/trendwatch/internal/config"
	"github.com/jonesrussell/trendwatch/internal/database"
	"github.com/jonesrussell/trendwatch/internal/export"
	"github.com/jonesrussell/trendwatch/internal/ingest"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"github.com/jonesrussell/trendwatch/internal/pipeline"
	"github.com/jonesrussell/trendwatch/internal/query"
	"github.com/jonesrussell/trendwatch/internal/scorer"
	"github.com/jonesrussell/trendwatch/internal/store"
	"github.com/jonesrussell/trendwatch/internal/taxonomy"
	"github.com/jonesrussell/trendwatch/internal/telemetry"
)

// App holds the assembled service components.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	DB        *sqlx.DB
	Registry  *taxonomy.Registry
	Store     *store.Store
	Engine    *query.Engine
	Refresher *pipeline.Refresher
	Telemetry *telemetry.Provider
	Handler   *api.Handler
}

// New assembles the application. The caller owns App.Close.
func New(cfg *config.Config, logger logging.Logger) (*App, error) {
	registry, err := taxonomy.Load(cfg.Service.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	db, err := database.Connect(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo := database.NewRecordsRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	tp := telemetry.NewProvider()
	st := store.New()
	engine := query.NewEngine(st, tp)
	processor := pipeline.NewProcessor(classifier.New(registry), scorer.New(), tp, logger)

	opts := pipeline.RefresherOptions{}
	if len(cfg.Ingest.Subreddits) > 0 {
		opts.Scraper = ingest.NewRedditClient(ingest.RedditConfig{
			Subreddits:        cfg.Ingest.Subreddits,
			PostLimit:         cfg.Ingest.PostLimit,
			UserAgent:         cfg.Ingest.UserAgent,
			RequestsPerSecond: cfg.Ingest.RequestsPerSecond,
		}, logger)
	}
	if cfg.Ingest.SyncURL != "" && cfg.Ingest.FetchURL != "" {
		opts.RecordStore = ingest.NewRecordStoreClient(cfg.Ingest.SyncURL, cfg.Ingest.FetchURL, logger)
	}

	exporter, err := export.NewElasticsearchExporter(export.Config{
		URL:      cfg.Elasticsearch.URL,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		Index:    cfg.Elasticsearch.Index,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setup elasticsearch export: %w", err)
	}
	if exporter != nil {
		opts.Exporter = exporter
	}

	refresher := pipeline.NewRefresher(processor, repo, st, tp, logger, opts)

	handler := api.NewHandler(
		engine, registry, refresher, st, tp, logger,
		cfg.Service.Name, cfg.Service.Version,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Registry:  registry,
		Store:     st,
		Engine:    engine,
		Refresher: refresher,
		Telemetry: tp,
		Handler:   handler,
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	return a.DB.Close()
}

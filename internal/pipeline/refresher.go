package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"github.com/jonesrussell/trendwatch/internal/store"
	"github.com/jonesrussell/trendwatch/internal/telemetry"
)

// ErrNoSource indicates no ingestion source produced any posts.
var ErrNoSource = errors.New("no ingestion source configured")

// ErrRefreshInProgress indicates another refresh cycle is already running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Scraper produces raw posts from a live social source.
type Scraper interface {
	Scrape(ctx context.Context) ([]domain.RawPost, error)
}

// RecordSyncer is the remote record store: posts go up via Sync, the
// combined historical dataset comes back via FetchAll.
type RecordSyncer interface {
	Sync(ctx context.Context, posts []domain.RawPost) error
	FetchAll(ctx context.Context) ([]domain.RawPost, error)
}

// RecordsRepository persists the processed dataset wholesale.
type RecordsRepository interface {
	ReplaceAll(ctx context.Context, records []domain.Record) error
	LoadAll(ctx context.Context) ([]domain.Record, error)
}

// Exporter pushes the processed dataset to a search index after a
// successful refresh.
type Exporter interface {
	Export(ctx context.Context, records []domain.Record) error
}

// Refresher runs the full refresh cycle: scrape, sync, fetch the combined
// dataset, process, persist, publish. A failed cycle leaves the currently
// served snapshot intact. Cycles never overlap: the poller tick, the startup
// refresh, and the HTTP trigger all funnel through the same mutex, and an
// overlapping call gets ErrRefreshInProgress instead of a second run.
type Refresher struct {
	mu sync.Mutex


	scraper     Scraper          // optional
	recordStore RecordSyncer     // optional
	exporter    Exporter         // optional
	processor   *Processor
	repo        RecordsRepository
	store       *store.Store
	telemetry   *telemetry.Provider
	logger      logging.Logger
}

// RefresherOptions holds the optional collaborators of a Refresher.
type RefresherOptions struct {
	Scraper     Scraper
	RecordStore RecordSyncer
	Exporter    Exporter
}

// NewRefresher creates a refresher.
func NewRefresher(
	processor *Processor,
	repo RecordsRepository,
	st *store.Store,
	tp *telemetry.Provider,
	logger logging.Logger,
	opts RefresherOptions,
) *Refresher {
	return &Refresher{
		scraper:     opts.Scraper,
		recordStore: opts.RecordStore,
		exporter:    opts.Exporter,
		processor:   processor,
		repo:        repo,
		store:       st,
		telemetry:   tp,
		logger:      logger,
	}
}

// Refresh runs one complete pipeline cycle. Returns ErrRefreshInProgress
// when another cycle holds the pipeline.
func (r *Refresher) Refresh(ctx context.Context) error {
	if !r.mu.TryLock() {
		return ErrRefreshInProgress
	}
	defer r.mu.Unlock()

	start := time.Now()
	r.logger.Info("pipeline refresh starting")

	posts, err := r.collect(ctx)
	if err != nil {
		r.telemetry.Metrics.RefreshFailures.Inc()
		return err
	}

	records := r.processor.Process(posts)

	if err := r.repo.ReplaceAll(ctx, records); err != nil {
		r.telemetry.Metrics.RefreshFailures.Inc()
		return fmt.Errorf("persist dataset: %w", err)
	}

	snap := r.store.Publish(records)
	r.telemetry.Metrics.SnapshotSize.Set(float64(snap.Len()))
	r.telemetry.Metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	if r.exporter != nil {
		if exportErr := r.exporter.Export(ctx, records); exportErr != nil {
			// Export is best-effort; the snapshot is already live.
			r.logger.Warn("search export failed", "error", exportErr)
		}
	}

	r.logger.Info("pipeline refresh complete",
		"records", snap.Len(),
		"duration", time.Since(start),
	)
	return nil
}

// collect gathers the raw posts for this cycle. With a record store
// configured, scraped posts are synced up and the combined dataset fetched
// back; otherwise the scrape output is used directly.
func (r *Refresher) collect(ctx context.Context) ([]domain.RawPost, error) {
	var scraped []domain.RawPost
	if r.scraper != nil {
		posts, err := r.scraper.Scrape(ctx)
		if err != nil {
			if r.recordStore == nil {
				return nil, fmt.Errorf("scrape: %w", err)
			}
			// The combined dataset can still be fetched; this cycle just
			// adds no new posts.
			r.logger.Warn("scrape failed, continuing with stored dataset", "error", err)
		} else {
			scraped = posts
			r.telemetry.Metrics.PostsIngested.WithLabelValues("reddit").Add(float64(len(posts)))
		}
	}

	if r.recordStore == nil {
		if r.scraper == nil {
			return nil, ErrNoSource
		}
		return scraped, nil
	}

	if len(scraped) > 0 {
		if err := r.recordStore.Sync(ctx, scraped); err != nil {
			r.logger.Warn("record store sync failed", "error", err)
		}
	}

	posts, err := r.recordStore.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch combined dataset: %w", err)
	}
	r.telemetry.Metrics.PostsIngested.WithLabelValues("record_store").Add(float64(len(posts)))
	return posts, nil
}

// LoadFromDatabase publishes the persisted dataset without running the
// pipeline. Used at startup so queries have data before the first refresh;
// an empty table publishes an empty snapshot.
func (r *Refresher) LoadFromDatabase(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load persisted dataset: %w", err)
	}
	snap := r.store.Publish(records)
	r.telemetry.Metrics.SnapshotSize.Set(float64(snap.Len()))
	r.logger.Info("dataset loaded from database", "records", snap.Len())
	return nil
}

package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonesrussell/trendwatch/internal/classifier"
	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"github.com/jonesrussell/trendwatch/internal/pipeline"
	"github.com/jonesrussell/trendwatch/internal/scorer"
	"github.com/jonesrussell/trendwatch/internal/store"
	"github.com/jonesrussell/trendwatch/internal/taxonomy"
	"github.com/jonesrussell/trendwatch/internal/telemetry"
)

// Prometheus collectors register globally, so the whole test binary shares
// one provider.
var testTelemetry = telemetry.NewProvider()

type fakeScraper struct {
	posts []domain.RawPost
	err   error
	calls int
}

func (f *fakeScraper) Scrape(ctx context.Context) ([]domain.RawPost, error) {
	f.calls++
	return f.posts, f.err
}

type fakeRecordStore struct {
	synced   []domain.RawPost
	fetched  []domain.RawPost
	syncErr  error
	fetchErr error
}

func (f *fakeRecordStore) Sync(ctx context.Context, posts []domain.RawPost) error {
	f.synced = append(f.synced, posts...)
	return f.syncErr
}

func (f *fakeRecordStore) FetchAll(ctx context.Context) ([]domain.RawPost, error) {
	return f.fetched, f.fetchErr
}

type fakeRepo struct {
	replaced   []domain.Record
	stored     []domain.Record
	replaceErr error
	loadErr    error
}

func (f *fakeRepo) ReplaceAll(ctx context.Context, records []domain.Record) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = records
	return nil
}

func (f *fakeRepo) LoadAll(ctx context.Context) ([]domain.Record, error) {
	return f.stored, f.loadErr
}

type fakeExporter struct {
	exported []domain.Record
	err      error
}

func (f *fakeExporter) Export(ctx context.Context, records []domain.Record) error {
	f.exported = append(f.exported, records...)
	return f.err
}

func post(text string) domain.RawPost {
	return domain.RawPost{
		TextContent: text,
		Timestamp:   "2026-06-15T10:30:00",
		Gender:      "FEMALE",
		Region:      "Europe",
	}
}

func newRefresher(t *testing.T, repo pipeline.RecordsRepository, st *store.Store, opts pipeline.RefresherOptions) *pipeline.Refresher {
	t.Helper()
	processor := pipeline.NewProcessor(
		classifier.New(taxonomy.Default()),
		scorer.NewSeeded(1, 2),
		testTelemetry,
		logging.NewNop(),
	)
	return pipeline.NewRefresher(processor, repo, st, testTelemetry, logging.NewNop(), opts)
}

func TestRefresher_ScrapeOnlyCycle(t *testing.T) {
	scraper := &fakeScraper{posts: []domain.RawPost{
		post("red oversized hoodie haul"),
		post("my favourite mechanical keyboard"),
		post("slim denim jeans fit check"),
	}}
	repo := &fakeRepo{}
	st := store.New()

	r := newRefresher(t, repo, st, pipeline.RefresherOptions{Scraper: scraper})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// The keyboard post is not clothing and gets dropped.
	if len(repo.replaced) != 2 {
		t.Errorf("persisted %d records, want 2", len(repo.replaced))
	}
	if st.Snapshot().Len() != 2 {
		t.Errorf("snapshot has %d records, want 2", st.Snapshot().Len())
	}
	for _, rec := range st.Snapshot().Records() {
		if rec.Category != domain.CategoryClothing {
			t.Errorf("non-clothing record published: %+v", rec)
		}
		if rec.VelocityScore < 10 || rec.VelocityScore > 99 {
			t.Errorf("velocity score %v outside bounds", rec.VelocityScore)
		}
	}
}

func TestRefresher_RecordStoreCombinesDatasets(t *testing.T) {
	scraper := &fakeScraper{posts: []domain.RawPost{post("fresh black hoodie drop")}}
	recordStore := &fakeRecordStore{fetched: []domain.RawPost{
		post("fresh black hoodie drop"),
		post("archive vintage flannel shirt"),
	}}
	repo := &fakeRepo{}
	st := store.New()

	r := newRefresher(t, repo, st, pipeline.RefresherOptions{
		Scraper:     scraper,
		RecordStore: recordStore,
	})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(recordStore.synced) != 1 {
		t.Errorf("synced %d posts, want 1", len(recordStore.synced))
	}
	// The fetched combined dataset wins over the raw scrape output.
	if st.Snapshot().Len() != 2 {
		t.Errorf("snapshot has %d records, want 2", st.Snapshot().Len())
	}
}

func TestRefresher_ScrapeFailureToleratedWithRecordStore(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("reddit down")}
	recordStore := &fakeRecordStore{fetched: []domain.RawPost{post("cargo pants appreciation")}}
	st := store.New()

	r := newRefresher(t, &fakeRepo{}, st, pipeline.RefresherOptions{
		Scraper:     scraper,
		RecordStore: recordStore,
	})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh should survive a scrape failure, got: %v", err)
	}
	if st.Snapshot().Len() != 1 {
		t.Errorf("snapshot has %d records, want 1", st.Snapshot().Len())
	}
}

func TestRefresher_ScrapeFailureFatalWithoutRecordStore(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("reddit down")}
	st := store.New()
	st.Publish([]domain.Record{{SubCategory: "Hoodie"}})

	r := newRefresher(t, &fakeRepo{}, st, pipeline.RefresherOptions{Scraper: scraper})
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected error when the only source fails")
	}
	// Served snapshot stays intact after a failed cycle.
	if st.Snapshot().Len() != 1 {
		t.Errorf("snapshot has %d records after failed refresh, want 1", st.Snapshot().Len())
	}
}

func TestRefresher_FetchFailureFatal(t *testing.T) {
	recordStore := &fakeRecordStore{fetchErr: errors.New("store down")}
	st := store.New()

	r := newRefresher(t, &fakeRepo{}, st, pipeline.RefresherOptions{RecordStore: recordStore})
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected error when the combined dataset cannot be fetched")
	}
}

func TestRefresher_NoSources(t *testing.T) {
	r := newRefresher(t, &fakeRepo{}, store.New(), pipeline.RefresherOptions{})
	if err := r.Refresh(context.Background()); !errors.Is(err, pipeline.ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", err)
	}
}

func TestRefresher_PersistFailureKeepsSnapshot(t *testing.T) {
	scraper := &fakeScraper{posts: []domain.RawPost{post("red hoodie")}}
	repo := &fakeRepo{replaceErr: errors.New("disk full")}
	st := store.New()
	st.Publish([]domain.Record{{SubCategory: "Jeans"}})

	r := newRefresher(t, repo, st, pipeline.RefresherOptions{Scraper: scraper})
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected persistence error")
	}
	if st.Snapshot().Len() != 1 || st.Snapshot().Records()[0].SubCategory != "Jeans" {
		t.Error("failed persist must not swap the served snapshot")
	}
}

func TestRefresher_ExportIsBestEffort(t *testing.T) {
	scraper := &fakeScraper{posts: []domain.RawPost{post("red hoodie")}}
	exporter := &fakeExporter{err: errors.New("es unreachable")}
	st := store.New()

	r := newRefresher(t, &fakeRepo{}, st, pipeline.RefresherOptions{
		Scraper:  scraper,
		Exporter: exporter,
	})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("export failure must not fail the cycle: %v", err)
	}
	if len(exporter.exported) != 1 {
		t.Errorf("exported %d records, want 1", len(exporter.exported))
	}
	if st.Snapshot().Len() != 1 {
		t.Errorf("snapshot has %d records, want 1", st.Snapshot().Len())
	}
}

// blockingScraper parks inside Scrape until released, so a second refresh
// can be fired while the first one is mid-cycle.
type blockingScraper struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingScraper) Scrape(ctx context.Context) ([]domain.RawPost, error) {
	close(b.entered)
	<-b.release
	return []domain.RawPost{post("red oversized hoodie")}, nil
}

func TestRefresher_OverlappingRefreshRejected(t *testing.T) {
	scraper := &blockingScraper{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	st := store.New()
	r := newRefresher(t, &fakeRepo{}, st, pipeline.RefresherOptions{Scraper: scraper})

	done := make(chan error, 1)
	go func() { done <- r.Refresh(context.Background()) }()

	<-scraper.entered
	if err := r.Refresh(context.Background()); !errors.Is(err, pipeline.ErrRefreshInProgress) {
		t.Errorf("overlapping refresh err = %v, want ErrRefreshInProgress", err)
	}

	close(scraper.release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if st.Snapshot().Len() != 1 {
		t.Errorf("snapshot has %d records, want 1", st.Snapshot().Len())
	}
}

func TestRefresher_LoadFromDatabase(t *testing.T) {
	repo := &fakeRepo{stored: []domain.Record{
		{SubCategory: "Hoodie"},
		{SubCategory: "Jeans"},
	}}
	st := store.New()

	r := newRefresher(t, repo, st, pipeline.RefresherOptions{})
	if err := r.LoadFromDatabase(context.Background()); err != nil {
		t.Fatalf("LoadFromDatabase failed: %v", err)
	}
	if st.Snapshot().Len() != 2 {
		t.Errorf("snapshot has %d records, want 2", st.Snapshot().Len())
	}
}

func TestProcessor_SetsDerivedFields(t *testing.T) {
	processor := pipeline.NewProcessor(
		classifier.New(taxonomy.Default()),
		scorer.NewSeeded(3, 4),
		testTelemetry,
		logging.NewNop(),
	)

	records := processor.Process([]domain.RawPost{
		{TextContent: "red oversized hoodie", Timestamp: "2026-06-15", Gender: "MALE", Age: 25},
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.SubCategory != "Hoodie" || r.Color != "Red" || r.Style != "Oversized" {
		t.Errorf("classification fields wrong: %+v", r)
	}
	if r.Fabric != domain.AttributeUnknown {
		t.Errorf("fabric = %q, want Unknown", r.Fabric)
	}
	if r.Season != domain.SeasonSpringSummer {
		t.Errorf("season = %q, want %q", r.Season, domain.SeasonSpringSummer)
	}
	if r.Region != domain.RegionGlobal {
		t.Errorf("empty region should default to %q, got %q", domain.RegionGlobal, r.Region)
	}
	if r.Gender != "MALE" || r.Age != 25 {
		t.Errorf("demographics not carried over: %+v", r)
	}
}

func TestProcessor_TruncatesLongText(t *testing.T) {
	processor := pipeline.NewProcessor(
		classifier.New(taxonomy.Default()),
		scorer.NewSeeded(3, 4),
		testTelemetry,
		logging.NewNop(),
	)

	long := "hoodie "
	for len(long) <= domain.MaxTextLength {
		long += "padding words here "
	}
	records := processor.Process([]domain.RawPost{{TextContent: long}})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if len(records[0].Text) != domain.MaxTextLength {
		t.Errorf("text length = %d, want %d", len(records[0].Text), domain.MaxTextLength)
	}
}

func TestProcessor_TruncationKeepsRuneBoundaries(t *testing.T) {
	processor := pipeline.NewProcessor(
		classifier.New(taxonomy.Default()),
		scorer.NewSeeded(3, 4),
		testTelemetry,
		logging.NewNop(),
	)

	// Multi-byte characters past the limit must be dropped whole, never
	// split into invalid UTF-8.
	long := "hoodie " + strings.Repeat("👟", domain.MaxTextLength)
	records := processor.Process([]domain.RawPost{{TextContent: long}})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	text := records[0].Text
	if !utf8.ValidString(text) {
		t.Error("truncated text is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(text); got != domain.MaxTextLength {
		t.Errorf("rune count = %d, want %d", got, domain.MaxTextLength)
	}
}

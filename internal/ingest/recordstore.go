package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"golang.org/x/time/rate"
)

// ErrStoreUnavailable indicates the remote record store is unreachable.
var ErrStoreUnavailable = errors.New("record store unavailable")

const (
	syncBatchSize    = 500
	recStoreTimeout  = 30 * time.Second
	recStoreRPSLimit = 5
)

// recordDTO is the wire shape of the remote record store. Field names are
// the store's, not ours; mapping happens once here at the boundary.
type recordDTO struct {
	TxtContent  string `json:"txt_content"`
	Timestamp   string `json:"timestamp"`
	Category    string `json:"category"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	RegionClean string `json:"region_clean"`
	Region      string `json:"region,omitempty"`
	Season      string `json:"season"`
	CleanText   string `json:"clean_text"`
	TopicID     int    `json:"topic_id"`
	SegmentID   int    `json:"segment_id"`
	TopicName   string `json:"topic_name"`
}

// RecordStoreClient syncs raw posts to the remote record store and fetches
// the combined dataset back.
type RecordStoreClient struct {
	syncURL    string
	fetchURL   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
}

// NewRecordStoreClient creates a record store client.
func NewRecordStoreClient(syncURL, fetchURL string, logger logging.Logger) *RecordStoreClient {
	return &RecordStoreClient{
		syncURL:    syncURL,
		fetchURL:   fetchURL,
		httpClient: &http.Client{Timeout: recStoreTimeout},
		limiter:    rate.NewLimiter(rate.Limit(recStoreRPSLimit), recStoreRPSLimit),
		logger:     logger,
	}
}

// Sync uploads raw posts in batches. Any batch failure aborts the sync.
func (c *RecordStoreClient) Sync(ctx context.Context, posts []domain.RawPost) error {
	payload := make([]recordDTO, 0, len(posts))
	for _, p := range posts {
		payload = append(payload, toDTO(p))
	}

	for start := 0; start < len(payload); start += syncBatchSize {
		end := min(start+syncBatchSize, len(payload))
		if err := c.postBatch(ctx, payload[start:end]); err != nil {
			return err
		}
		c.logger.Info("synced batch to record store",
			"batch", start/syncBatchSize+1,
			"rows", end-start,
		)
	}
	return nil
}

func (c *RecordStoreClient) postBatch(ctx context.Context, batch []recordDTO) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal sync batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.syncURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: sync returned %d", ErrStoreUnavailable, resp.StatusCode)
	}
	return nil
}

// FetchAll downloads the combined dataset from the record store, resolving
// the wire field names and the region fallback chain (region_clean, then
// region, then Global) once at this boundary.
func (c *RecordStoreClient) FetchAll(ctx context.Context) ([]domain.RawPost, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fetchURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch returned %d", ErrStoreUnavailable, resp.StatusCode)
	}

	var dtos []recordDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}

	posts := make([]domain.RawPost, 0, len(dtos))
	for _, dto := range dtos {
		posts = append(posts, fromDTO(dto))
	}

	c.logger.Info("fetched combined dataset", "rows", len(posts))
	return posts, nil
}

func toDTO(p domain.RawPost) recordDTO {
	return recordDTO{
		TxtContent:  p.TextContent,
		Timestamp:   p.Timestamp,
		Category:    orDefault(p.Category, "General"),
		Age:         p.Age,
		Gender:      strings.ToUpper(orDefault(p.Gender, "OTHER")),
		RegionClean: orDefault(p.Region, domain.RegionGlobal),
		Season:      orDefault(p.Season, "Core"),
		TopicName:   "Pending",
	}
}

func fromDTO(dto recordDTO) domain.RawPost {
	region := dto.RegionClean
	if region == "" {
		region = dto.Region
	}
	if region == "" {
		region = domain.RegionGlobal
	}
	return domain.RawPost{
		TextContent: dto.TxtContent,
		Timestamp:   dto.Timestamp,
		Category:    dto.Category,
		Age:         dto.Age,
		Gender:      dto.Gender,
		Region:      region,
		Season:      dto.Season,
		TopicName:   dto.TopicName,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Package ingest provides the synchronous HTTP clients that feed the
// pipeline: the Reddit listing scraper and the remote record-store client.
// Both are external collaborators; a failed fetch aborts the refresh cycle
// and never corrupts the currently served dataset.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"golang.org/x/time/rate"
)

// ErrRedditUnavailable indicates the Reddit listing API is unreachable.
var ErrRedditUnavailable = errors.New("reddit listing API unavailable")

const (
	redditBaseURL      = "https://www.reddit.com"
	redditTimeout      = 15 * time.Second
	redditTimestampFmt = "2006-01-02T15:04:05"
)

// Demographic pools for simulated post metadata. Reddit posts are
// anonymous, so demographics are fabricated to keep the dashboard filters
// populated with live data.
var (
	simulatedGenders = []string{"MALE", "FEMALE", "OTHER"}
	simulatedRegions = []string{"Europe", "North America", "Asia"}
)

const (
	simulatedAgeMin = 18
	simulatedAgeMax = 55 // exclusive
)

// RedditClient fetches new and hot listings from public subreddit JSON
// endpoints.
type RedditClient struct {
	baseURL    string
	userAgent  string
	subreddits []string
	postLimit  int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
}

// RedditConfig holds Reddit client configuration. BaseURL overrides the
// public API endpoint; tests point it at a local server.
type RedditConfig struct {
	Subreddits        []string
	PostLimit         int
	UserAgent         string
	RequestsPerSecond int
	BaseURL           string
}

// NewRedditClient creates a Reddit listing client.
func NewRedditClient(cfg RedditConfig, logger logging.Logger) *RedditClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = redditBaseURL
	}
	return &RedditClient{
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		subreddits: cfg.Subreddits,
		postLimit:  cfg.PostLimit,
		httpClient: &http.Client{Timeout: redditTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		logger:     logger,
	}
}

// redditListing mirrors the subset of the listing payload we consume.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Scrape fetches the new and hot listings of every configured subreddit and
// returns deduplicated raw posts with simulated demographics.
func (c *RedditClient) Scrape(ctx context.Context) ([]domain.RawPost, error) {
	posts := make([]domain.RawPost, 0, len(c.subreddits)*c.postLimit*2)
	seen := make(map[string]bool)

	for _, sub := range c.subreddits {
		c.logger.Info("scanning subreddit", "subreddit", sub)
		for _, feed := range []string{"new", "hot"} {
			listing, err := c.fetchListing(ctx, sub, feed)
			if err != nil {
				return nil, err
			}
			for _, child := range listing.Data.Children {
				post := buildPost(child.Data.Title, child.Data.SelfText, child.Data.CreatedUTC, sub)
				if seen[post.TextContent] {
					continue
				}
				seen[post.TextContent] = true
				posts = append(posts, post)
			}
		}
	}

	c.logger.Info("reddit scrape complete", "posts", len(posts))
	return posts, nil
}

func (c *RedditClient) fetchListing(ctx context.Context, subreddit, feed string) (*redditListing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/r/%s/%s.json?limit=%d", c.baseURL, subreddit, feed, c.postLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRedditUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: r/%s/%s returned %d", ErrRedditUnavailable, subreddit, feed, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing r/%s/%s: %w", subreddit, feed, err)
	}
	return &listing, nil
}

func buildPost(title, selfText string, createdUTC float64, subreddit string) domain.RawPost {
	text := domain.TruncateText(title + " " + selfText)

	created := time.Unix(int64(createdUTC), 0).UTC()

	return domain.RawPost{
		TextContent: text,
		Timestamp:   created.Format(redditTimestampFmt),
		Category:    "Social Media", // retagged by the classifier
		Age:         simulatedAgeMin + rand.IntN(simulatedAgeMax-simulatedAgeMin),
		Gender:      simulatedGenders[rand.IntN(len(simulatedGenders))],
		Region:      simulatedRegions[rand.IntN(len(simulatedRegions))],
		Season:      seasonForNow(time.Now()),
		TopicName:   "r/" + subreddit,
	}
}

func seasonForNow(now time.Time) string {
	if m := now.Month(); m >= time.April && m <= time.August {
		return domain.SeasonSpringSummer
	}
	return domain.SeasonFallWinter
}

package ingest_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonesrussell/trendwatch/internal/ingest"
	"github.com/jonesrussell/trendwatch/internal/logging"
)

func listingJSON(titles ...string) string {
	children := make([]string, 0, len(titles))
	for _, title := range titles {
		children = append(children, fmt.Sprintf(
			`{"data": {"title": %q, "selftext": "", "created_utc": 1750000000}}`, title))
	}
	return fmt.Sprintf(`{"data": {"children": [%s]}}`, strings.Join(children, ","))
}

func TestRedditClient_Scrape(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		if r.Header.Get("User-Agent") != "trendwatch-test/1.0" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/r/streetwear/new.json":
			fmt.Fprint(w, listingJSON("red hoodie fit check", "shared post"))
		case "/r/streetwear/hot.json":
			fmt.Fprint(w, listingJSON("shared post", "slim jeans haul"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := ingest.NewRedditClient(ingest.RedditConfig{
		Subreddits:        []string{"streetwear"},
		PostLimit:         25,
		UserAgent:         "trendwatch-test/1.0",
		RequestsPerSecond: 100,
		BaseURL:           server.URL,
	}, logging.NewNop())

	posts, err := client.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if len(requests) != 2 {
		t.Errorf("made %d requests, want 2 (new and hot)", len(requests))
	}
	// The shared post appears in both feeds but is deduplicated by text.
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}

	first := posts[0]
	if !strings.HasPrefix(first.TextContent, "red hoodie fit check") {
		t.Errorf("first post text = %q", first.TextContent)
	}
	if first.TopicName != "r/streetwear" {
		t.Errorf("TopicName = %q, want r/streetwear", first.TopicName)
	}
	if first.Category != "Social Media" {
		t.Errorf("Category = %q, want Social Media", first.Category)
	}
	if first.Age < 18 || first.Age >= 55 {
		t.Errorf("simulated age %d outside [18, 55)", first.Age)
	}
	if first.Gender == "" || first.Region == "" {
		t.Errorf("simulated demographics missing: %+v", first)
	}
	if !strings.HasPrefix(first.Timestamp, "2025-06-15T") {
		t.Errorf("Timestamp = %q, want created_utc rendering", first.Timestamp)
	}
}

func TestRedditClient_ScrapeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := ingest.NewRedditClient(ingest.RedditConfig{
		Subreddits:        []string{"streetwear"},
		PostLimit:         25,
		RequestsPerSecond: 100,
		BaseURL:           server.URL,
	}, logging.NewNop())

	if _, err := client.Scrape(context.Background()); err == nil {
		t.Fatal("expected error for non-200 listing response")
	}
}

func TestRedditClient_ScrapeBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>rate limited</html>")
	}))
	defer server.Close()

	client := ingest.NewRedditClient(ingest.RedditConfig{
		Subreddits:        []string{"streetwear"},
		PostLimit:         25,
		RequestsPerSecond: 100,
		BaseURL:           server.URL,
	}, logging.NewNop())

	if _, err := client.Scrape(context.Background()); err == nil {
		t.Fatal("expected error for malformed listing payload")
	}
}

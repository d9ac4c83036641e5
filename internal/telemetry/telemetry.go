// Package telemetry provides OpenTelemetry tracing and Prometheus metrics
// for the trendwatch service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "trendwatch"

// Metrics holds all trendwatch Prometheus metrics.
type Metrics struct {
	// Pipeline metrics
	PostsIngested     *prometheus.CounterVec
	RecordsClassified prometheus.Counter
	RecordsDropped    prometheus.Counter
	RefreshDuration   prometheus.Histogram
	RefreshFailures   prometheus.Counter
	SnapshotSize      prometheus.Gauge

	// Query metrics
	QueriesServed *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// Provider wraps the tracer and metrics.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}

	m.PostsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendwatch_posts_ingested_total",
		Help: "Raw posts fetched per ingestion source",
	}, []string{"source"})

	m.RecordsClassified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trendwatch_records_classified_total",
		Help: "Posts classified as clothing and kept",
	})

	m.RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trendwatch_records_dropped_total",
		Help: "Posts dropped as uncategorized",
	})

	m.RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendwatch_refresh_duration_seconds",
		Help:    "Time to run one full pipeline refresh",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	m.RefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trendwatch_refresh_failures_total",
		Help: "Pipeline refresh cycles that aborted",
	})

	m.SnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trendwatch_snapshot_records",
		Help: "Records in the currently served snapshot",
	})

	m.QueriesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendwatch_queries_served_total",
		Help: "Analytical queries served by endpoint",
	}, []string{"endpoint"})

	m.QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendwatch_query_duration_seconds",
		Help:    "Time to answer an analytical query",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"endpoint"})

	return m
}

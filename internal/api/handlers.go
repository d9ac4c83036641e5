// Package api exposes the dashboard HTTP endpoints.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"github.com/jonesrussell/trendwatch/internal/pipeline"
	"github.com/jonesrussell/trendwatch/internal/query"
	"github.com/jonesrussell/trendwatch/internal/store"
	"github.com/jonesrussell/trendwatch/internal/taxonomy"
	"github.com/jonesrussell/trendwatch/internal/telemetry"
)

// Handler handles HTTP requests for the trendwatch API.
type Handler struct {
	engine    *query.Engine
	registry  *taxonomy.Registry
	refresher *pipeline.Refresher
	store     *store.Store
	telemetry *telemetry.Provider
	logger    logging.Logger
	service   string
	version   string
}

// NewHandler creates an API handler.
func NewHandler(
	engine *query.Engine,
	registry *taxonomy.Registry,
	refresher *pipeline.Refresher,
	st *store.Store,
	tp *telemetry.Provider,
	logger logging.Logger,
	service, version string,
) *Handler {
	return &Handler{
		engine:    engine,
		registry:  registry,
		refresher: refresher,
		store:     st,
		telemetry: tp,
		logger:    logger,
		service:   service,
		version:   version,
	}
}

// Home handles GET /.
func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "Online", Mode: "Clothing-Only"})
}

// GetTaxonomy handles GET /api/taxonomy.
func (h *Handler) GetTaxonomy(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Hierarchy())
}

// GetHotTrends handles GET /api/hot_trends.
func (h *Handler) GetHotTrends(c *gin.Context) {
	start := time.Now()
	trends := h.engine.HotTrends(c.Request.Context())
	h.observe("hot_trends", start)

	c.JSON(http.StatusOK, trends)
}

// Analyze handles POST /api/analyze. The body is an optional flat map of
// filters; a missing or empty body means no filtering.
func (h *Handler) Analyze(c *gin.Context) {
	var filters domain.AnalyzeFilters
	if err := c.ShouldBindJSON(&filters); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid analyze request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	result := h.engine.Analyze(c.Request.Context(), filters)
	h.observe("analyze", start)

	if result.NoData {
		c.JSON(http.StatusOK, NoDataResponse{Error: "No data found"})
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Status:        "success",
		ChartVelocity: result.ChartVelocity,
		ChartForecast: result.ChartForecast,
		Insights:      result.Insights,
	})
}

// Refresh handles POST /api/refresh: one synchronous pipeline run. The
// refresher serializes cycles itself; a trigger that loses the race gets a
// conflict.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.refresher.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, pipeline.ErrRefreshInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("triggered refresh failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		Status:  "success",
		Records: h.store.Snapshot().Len(),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Version: h.version,
	})
}

// ReadyCheck handles GET /ready.
func (h *Handler) ReadyCheck(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, ReadyResponse{
		Status:   "ready",
		Records:  snap.Len(),
		LoadedAt: snap.LoadedAt(),
	})
}

func (h *Handler) observe(endpoint string, start time.Time) {
	h.telemetry.Metrics.QueriesServed.WithLabelValues(endpoint).Inc()
	h.telemetry.Metrics.QueryDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

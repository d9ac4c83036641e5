package api

import (
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
)

// StatusResponse is the root endpoint payload.
type StatusResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// AnalyzeResponse is the successful analyze payload.
type AnalyzeResponse struct {
	Status        string               `json:"status"`
	ChartVelocity domain.VelocityChart `json:"chart_velocity"`
	ChartForecast domain.ForecastChart `json:"chart_forecast"`
	Insights      domain.Insights      `json:"insights"`
}

// NoDataResponse signals an empty filtered working set. Served with HTTP
// 200: no data is a normal outcome, not an error status.
type NoDataResponse struct {
	Error string `json:"error"`
}

// RefreshResponse reports the outcome of a triggered pipeline refresh.
type RefreshResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse is the readiness payload with snapshot details.
type ReadyResponse struct {
	Status   string    `json:"status"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

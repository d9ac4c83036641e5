package domain

// TrendSummary is one hot-trend entry served to the dashboard.
type TrendSummary struct {
	Name      string   `json:"name"`
	Score     float64  `json:"score"`
	Volume    int      `json:"volume"`
	TopRegion string   `json:"top_region"`
	Tags      []string `json:"tags"` // [color, style]
}

// FilterAll is the sentinel filter value meaning "no restriction".
const FilterAll = "All"

// AnalyzeFilters narrows the working set for an analyze query.
// Empty values and FilterAll are equivalent; filters compose as AND.
type AnalyzeFilters struct {
	Region      string `json:"region"`
	Season      string `json:"season"`
	Gender      string `json:"gender"` // case-insensitive match
	SubCategory string `json:"sub_category"`
}

// VelocityChart is the drill-down leaderboard of mean velocity scores.
type VelocityChart struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ForecastChart is the month-bucketed record count time series.
type ForecastChart struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Insights lists the most frequent non-Unknown attribute values.
type Insights struct {
	Colors  []string `json:"colors"`
	Fabrics []string `json:"fabrics"`
	Styles  []string `json:"styles"`
}

// AnalyzeResult is the full analyze payload. NoData is true when the
// filtered working set is empty; that is a normal outcome, not an error,
// and the charts are zero-valued in that case.
type AnalyzeResult struct {
	NoData        bool          `json:"-"`
	ChartVelocity VelocityChart `json:"chart_velocity"`
	ChartForecast ForecastChart `json:"chart_forecast"`
	Insights      Insights      `json:"insights"`
}

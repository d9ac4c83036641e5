// Package query implements the analytical operations served to the
// dashboard: hot-trend discovery and filtered drill-down analysis. Every
// query is a pure computation over one immutable store snapshot.
package query

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/store"
	"github.com/jonesrussell/trendwatch/internal/telemetry"
)

const (
	hotTrendsLimit    = 4
	drilldownLimit    = 8
	insightTopValues  = 3
	insightNoneValue  = "None"
	defaultChartTitle = "Top Clothing Items"
)

// Engine answers analytical queries against the record store.
//
// Ordering: all rankings sort descending by mean velocity with a stable
// sort over groups materialized in first-seen record order, so ties resolve
// to the earliest-ingested group.
type Engine struct {
	store     *store.Store
	telemetry *telemetry.Provider
}

// NewEngine creates a query engine over the store.
func NewEngine(st *store.Store, tp *telemetry.Provider) *Engine {
	return &Engine{store: st, telemetry: tp}
}

// trendGroup accumulates one signature bucket during hot-trend grouping.
type trendGroup struct {
	signature string
	color     string
	style     string
	sum       float64
	count     int
}

// HotTrends returns the top trending item combinations: up to four
// signature groups ranked by mean velocity score, each with its record
// volume and dominant region. Groups with an Unknown color or style never
// appear.
func (e *Engine) HotTrends(ctx context.Context) []domain.TrendSummary {
	_, span := e.telemetry.Tracer.Start(ctx, "query.HotTrends")
	defer span.End()

	records := e.store.Snapshot().Records()

	index := make(map[string]int, 32)
	groups := make([]*trendGroup, 0, 32)
	for i := range records {
		r := &records[i]
		sig := r.Signature()
		pos, seen := index[sig]
		if !seen {
			pos = len(groups)
			index[sig] = pos
			groups = append(groups, &trendGroup{
				signature: sig,
				color:     r.Color,
				style:     r.Style,
			})
		}
		groups[pos].sum += r.VelocityScore
		groups[pos].count++
	}

	ranked := make([]*trendGroup, 0, len(groups))
	for _, g := range groups {
		if g.color == domain.AttributeUnknown || g.style == domain.AttributeUnknown {
			continue
		}
		ranked = append(ranked, g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].mean() > ranked[j].mean()
	})
	if len(ranked) > hotTrendsLimit {
		ranked = ranked[:hotTrendsLimit]
	}

	trends := make([]domain.TrendSummary, 0, len(ranked))
	for _, g := range ranked {
		trends = append(trends, domain.TrendSummary{
			Name:      g.signature,
			Score:     round1(g.mean()),
			Volume:    g.count,
			TopRegion: e.dominantRegion(records, g.signature),
			Tags:      []string{g.color, g.style},
		})
	}
	return trends
}

func (g *trendGroup) mean() float64 {
	return g.sum / float64(g.count)
}

// dominantRegion computes the mode of the region field among records that
// share the signature, defaulting to Global.
func (e *Engine) dominantRegion(records []domain.Record, signature string) string {
	subset := store.Filter(records, func(r *domain.Record) bool {
		return r.Signature() == signature
	})
	region := store.Mode(subset, func(r *domain.Record) string { return r.Region })
	if region == "" {
		return domain.RegionGlobal
	}
	return region
}

// Analyze narrows the dataset with the given filters and builds the
// drill-down chart, monthly forecast, and attribute insights. An empty
// filtered set yields a NoData result, never an error.
func (e *Engine) Analyze(ctx context.Context, filters domain.AnalyzeFilters) domain.AnalyzeResult {
	_, span := e.telemetry.Tracer.Start(ctx, "query.Analyze")
	defer span.End()

	working := e.applyFilters(e.store.Snapshot().Records(), filters)
	if len(working) == 0 {
		return domain.AnalyzeResult{NoData: true}
	}

	groupField := func(r *domain.Record) string { return r.SubCategory }
	title := defaultChartTitle
	if active(filters.SubCategory) {
		groupField = func(r *domain.Record) string { return r.Style }
		title = fmt.Sprintf("Top Styles for %s", filters.SubCategory)
	}

	chartRecords := store.Filter(working, func(r *domain.Record) bool {
		return groupField(r) != domain.AttributeUnknown
	})
	groups := store.GroupMeanVelocity(chartRecords, groupField)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].MeanVelocity > groups[j].MeanVelocity
	})
	if len(groups) > drilldownLimit {
		groups = groups[:drilldownLimit]
	}

	velocity := domain.VelocityChart{
		Title:  title,
		Labels: make([]string, 0, len(groups)),
		Scores: make([]float64, 0, len(groups)),
	}
	for _, g := range groups {
		velocity.Labels = append(velocity.Labels, g.Key)
		velocity.Scores = append(velocity.Scores, round1(g.MeanVelocity))
	}

	forecastLabels, forecastValues := store.MonthlyCounts(working)

	return domain.AnalyzeResult{
		ChartVelocity: velocity,
		ChartForecast: domain.ForecastChart{Labels: forecastLabels, Values: forecastValues},
		Insights: domain.Insights{
			Colors:  topOrNone(working, func(r *domain.Record) string { return r.Color }),
			Fabrics: topOrNone(working, func(r *domain.Record) string { return r.Fabric }),
			Styles:  topOrNone(working, func(r *domain.Record) string { return r.Style }),
		},
	}
}

// applyFilters restricts the working set one filter at a time (sequential
// AND). Gender compares case-insensitively; the other filters are exact.
func (e *Engine) applyFilters(records []domain.Record, filters domain.AnalyzeFilters) []domain.Record {
	working := records
	if active(filters.Region) {
		working = store.Filter(working, func(r *domain.Record) bool {
			return r.Region == filters.Region
		})
	}
	if active(filters.Season) {
		working = store.Filter(working, func(r *domain.Record) bool {
			return r.Season == filters.Season
		})
	}
	if active(filters.Gender) {
		working = store.Filter(working, func(r *domain.Record) bool {
			return strings.EqualFold(r.Gender, filters.Gender)
		})
	}
	if active(filters.SubCategory) {
		working = store.Filter(working, func(r *domain.Record) bool {
			return r.SubCategory == filters.SubCategory
		})
	}
	return working
}

func active(filter string) bool {
	return filter != "" && filter != domain.FilterAll
}

func topOrNone(records []domain.Record, field store.Field) []string {
	top := store.TopValues(records, field, insightTopValues)
	if len(top) == 0 {
		return []string{insightNoneValue}
	}
	return top
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

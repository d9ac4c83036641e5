package store

import (
	"sort"

	"github.com/jonesrussell/trendwatch/internal/domain"
)

// Field extracts one string field from a record, for grouping and counting.
type Field func(*domain.Record) string

// Filter returns the records for which keep is true, preserving order.
func Filter(records []domain.Record, keep func(*domain.Record) bool) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for i := range records {
		if keep(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Group is one aggregation bucket: a key with the mean velocity score and
// record count of its members.
type Group struct {
	Key          string
	MeanVelocity float64
	Count        int
}

// GroupMeanVelocity groups records by the key field and computes each
// group's mean velocity score. Groups come back in first-seen record order,
// which is what makes downstream stable sorts deterministic.
func GroupMeanVelocity(records []domain.Record, key Field) []Group {
	index := make(map[string]int, 16)
	groups := make([]Group, 0, 16)
	sums := make([]float64, 0, 16)

	for i := range records {
		k := key(&records[i])
		pos, seen := index[k]
		if !seen {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, Group{Key: k})
			sums = append(sums, 0)
		}
		groups[pos].Count++
		sums[pos] += records[i].VelocityScore
	}

	for i := range groups {
		groups[i].MeanVelocity = sums[i] / float64(groups[i].Count)
	}
	return groups
}

// Mode returns the most frequent value of the field, ties broken by
// first-encountered order. Empty input returns "".
func Mode(records []domain.Record, field Field) string {
	counts := make(map[string]int, 8)
	order := make([]string, 0, 8)

	for i := range records {
		v := field(&records[i])
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// TopValues returns the n most frequent non-Unknown values of the field,
// ties broken by first-encountered order.
func TopValues(records []domain.Record, field Field, n int) []string {
	counts := make(map[string]int, 16)
	order := make([]string, 0, 16)

	for i := range records {
		v := field(&records[i])
		if v == domain.AttributeUnknown {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// MonthlyCounts buckets records by calendar month of their timestamp and
// returns chronological labels ("2026-04") with per-month counts. Records
// without a parseable timestamp are excluded here only.
func MonthlyCounts(records []domain.Record) (labels []string, values []int) {
	counts := make(map[string]int, 12)
	for i := range records {
		if records[i].Timestamp == nil {
			continue
		}
		counts[records[i].Timestamp.Format("2006-01")]++
	}

	labels = make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values = make([]int, 0, len(labels))
	for _, label := range labels {
		values = append(values, counts[label])
	}
	return labels, values
}

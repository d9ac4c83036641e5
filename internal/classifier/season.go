package classifier

import (
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
)

// Timestamp layouts accepted from upstream sources, most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp-like string from an ingested post.
// Returns nil when the value is empty or matches no known layout; an
// unparseable timestamp is a degraded field, not an error.
func ParseTimestamp(value string) *time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}
	return nil
}

// AssignSeason maps a timestamp to the two-season marketing calendar:
// April through August is SS26, everything else FW26. Records without a
// usable timestamp land in the evergreen bucket.
func AssignSeason(ts *time.Time) string {
	if ts == nil {
		return domain.SeasonEvergreen
	}
	if month := ts.Month(); month >= time.April && month <= time.August {
		return domain.SeasonSpringSummer
	}
	return domain.SeasonFallWinter
}

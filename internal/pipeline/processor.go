// Package pipeline orchestrates the classification pipeline: raw posts in,
// classified and scored clothing records out, persisted wholesale and
// published to the store as one immutable snapshot.
package pipeline

import (
	"github.com/jonesrussell/trendwatch/internal/classifier"
	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
	"github.com/jonesrussell/trendwatch/internal/scorer"
	"github.com/jonesrussell/trendwatch/internal/telemetry"
)

// Processor turns raw posts into classified, scored records.
type Processor struct {
	classifier *classifier.Classifier
	scorer     *scorer.Scorer
	telemetry  *telemetry.Provider
	logger     logging.Logger
}

// NewProcessor creates a processor.
func NewProcessor(c *classifier.Classifier, s *scorer.Scorer, tp *telemetry.Provider, logger logging.Logger) *Processor {
	return &Processor{
		classifier: c,
		scorer:     s,
		telemetry:  tp,
		logger:     logger,
	}
}

// Process classifies every post, keeps only clothing, extracts attributes,
// assigns seasons, and scores the surviving records. Posts that classify as
// uncategorized are dropped, which is the designed hard filter, not an
// error.
func (p *Processor) Process(posts []domain.RawPost) []domain.Record {
	records := make([]domain.Record, 0, len(posts))
	dropped := 0

	for _, post := range posts {
		category, subCategory := p.classifier.Classify(post.TextContent)
		if category != domain.CategoryClothing {
			dropped++
			continue
		}

		attrs := p.classifier.ExtractAttributes(post.TextContent)
		ts := classifier.ParseTimestamp(post.Timestamp)

		region := post.Region
		if region == "" {
			region = domain.RegionGlobal
		}

		records = append(records, domain.Record{
			Text:        domain.TruncateText(post.TextContent),
			Timestamp:   ts,
			Category:    category,
			SubCategory: subCategory,
			Color:       attrs[domain.AttributeColor],
			Fabric:      attrs[domain.AttributeFabric],
			Style:       attrs[domain.AttributeStyle],
			Season:      classifier.AssignSeason(ts),
			Region:      region,
			Gender:      post.Gender,
			Age:         post.Age,
		})
	}

	p.scorer.Score(records)

	p.telemetry.Metrics.RecordsClassified.Add(float64(len(records)))
	p.telemetry.Metrics.RecordsDropped.Add(float64(dropped))
	p.logger.Info("processing complete",
		"input", len(posts),
		"clothing", len(records),
		"dropped", dropped,
	)
	return records
}

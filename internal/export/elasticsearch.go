// Package export pushes the processed dataset into Elasticsearch so
// classified records are searchable outside the dashboard. Export runs
// after a refresh has already been published and is strictly best-effort.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jonesrussell/trendwatch/internal/domain"
	"github.com/jonesrussell/trendwatch/internal/logging"
)

// Config holds Elasticsearch export configuration.
type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

// ElasticsearchExporter bulk-indexes records into a single index per
// refresh.
type ElasticsearchExporter struct {
	client *es.Client
	index  string
	logger logging.Logger
}

// NewElasticsearchExporter creates an exporter, or nil when no URL is
// configured (export disabled).
func NewElasticsearchExporter(cfg Config, logger logging.Logger) (*ElasticsearchExporter, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	client, err := es.NewClient(es.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ElasticsearchExporter{
		client: client,
		index:  cfg.Index,
		logger: logger,
	}, nil
}

// Export bulk-indexes the records.
func (e *ElasticsearchExporter) Export(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i := range records {
		meta := map[string]map[string]string{"index": {"_index": e.index}}
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal bulk action: %w", err)
		}
		docBytes, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		buf.Write(metaBytes)
		buf.WriteByte('\n')
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}

	e.logger.Info("exported records to elasticsearch",
		"index", e.index,
		"records", len(records),
	)
	return nil
}

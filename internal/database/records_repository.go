package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/trendwatch/internal/domain"
)

// insertBatchSize keeps bulk inserts under driver parameter limits.
const insertBatchSize = 500

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	text_content   TEXT NOT NULL,
	timestamp      TIMESTAMP,
	category       TEXT NOT NULL,
	sub_category   TEXT NOT NULL,
	color          TEXT NOT NULL,
	fabric         TEXT NOT NULL,
	style          TEXT NOT NULL,
	season         TEXT NOT NULL,
	velocity_score REAL NOT NULL,
	region         TEXT NOT NULL,
	gender         TEXT NOT NULL,
	age            INTEGER NOT NULL
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS records (
	id             SERIAL PRIMARY KEY,
	text_content   TEXT NOT NULL,
	timestamp      TIMESTAMPTZ,
	category       TEXT NOT NULL,
	sub_category   TEXT NOT NULL,
	color          TEXT NOT NULL,
	fabric         TEXT NOT NULL,
	style          TEXT NOT NULL,
	season         TEXT NOT NULL,
	velocity_score DOUBLE PRECISION NOT NULL,
	region         TEXT NOT NULL,
	gender         TEXT NOT NULL,
	age            INTEGER NOT NULL
)`

// RecordsRepository persists the processed dataset. The table is always
// replaced wholesale: one pipeline run produces one complete dataset, there
// is no incremental update.
type RecordsRepository struct {
	db *sqlx.DB
}

// NewRecordsRepository creates a records repository.
func NewRecordsRepository(db *sqlx.DB) *RecordsRepository {
	return &RecordsRepository{db: db}
}

// Migrate creates the records table if it does not exist.
func (r *RecordsRepository) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if r.db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// ReplaceAll atomically swaps the stored dataset for the given records.
// On any error the transaction rolls back and the previous dataset remains.
func (r *RecordsRepository) ReplaceAll(ctx context.Context, records []domain.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err = tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	const insert = `
		INSERT INTO records (text_content, timestamp, category, sub_category,
			color, fabric, style, season, velocity_score, region, gender, age)
		VALUES (:text_content, :timestamp, :category, :sub_category,
			:color, :fabric, :style, :season, :velocity_score, :region, :gender, :age)`

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		if _, err = tx.NamedExecContext(ctx, insert, records[start:end]); err != nil {
			return fmt.Errorf("insert records batch: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace transaction: %w", err)
	}
	return nil
}

// LoadAll reads the entire processed dataset in insertion order.
func (r *RecordsRepository) LoadAll(ctx context.Context) ([]domain.Record, error) {
	const query = `
		SELECT text_content, timestamp, category, sub_category,
			color, fabric, style, season, velocity_score, region, gender, age
		FROM records
		ORDER BY id`

	records := make([]domain.Record, 0, 256)
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *RecordsRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM records`); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

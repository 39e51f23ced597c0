package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

const recordsTable = "processed_records"

const schema = `CREATE TABLE IF NOT EXISTS processed_records (
	id                 TEXT PRIMARY KEY,
	category           TEXT NOT NULL,
	country            TEXT NOT NULL,
	title_en           TEXT NOT NULL DEFAULT '',
	summary_en         TEXT NOT NULL DEFAULT '',
	title_translated   TEXT NOT NULL DEFAULT '',
	summary_translated TEXT NOT NULL DEFAULT '',
	location_name      TEXT NOT NULL DEFAULT '',
	latitude           DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude          DOUBLE PRECISION NOT NULL DEFAULT 0,
	severity           INTEGER NOT NULL,
	source_link        TEXT NOT NULL,
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Repository persists processed records into Postgres or SQLite.
type Repository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RecordRepository = (*Repository)(nil)

// Open connects to the database for the given driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewRepository wires a sql.DB; placeholders follow the driver dialect.
func NewRepository(db *sql.DB, driver string) *Repository {
	format := sq.PlaceholderFormat(sq.Question)
	if driver == "postgres" {
		format = sq.Dollar
	}
	return &Repository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// EnsureSchema creates the records table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Exists reports whether a record with the key was already created.
func (r *Repository) Exists(ctx context.Context, key domain.EntryKey) (bool, error) {
	query, args, err := r.builder.
		Select("1").
		From(recordsTable).
		Where(sq.Eq{"id": key.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query record %s: %w", key, err)
	}
	return true, nil
}

// Create inserts the record once; an existing key yields domain.ErrRecordExists
// and leaves the stored row untouched.
func (r *Repository) Create(ctx context.Context, record domain.ProcessedRecord) error {
	query, args, err := r.insertQuery(record)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", record.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("insert record %s: %w", record.ID, domain.ErrRecordExists)
	}
	return nil
}

func (r *Repository) insertQuery(record domain.ProcessedRecord) (string, []interface{}, error) {
	return r.builder.
		Insert(recordsTable).
		Columns(
			"id", "category", "country",
			"title_en", "summary_en", "title_translated", "summary_translated",
			"location_name", "latitude", "longitude",
			"severity", "source_link",
		).
		Values(
			record.ID.String(), record.Category, record.Country,
			record.TitleOriginal, record.SummaryOriginal, record.TitleTranslated, record.SummaryTranslated,
			record.LocationName, record.Coordinates.Latitude, record.Coordinates.Longitude,
			record.Severity, record.SourceLink,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
}

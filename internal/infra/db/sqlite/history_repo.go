// Package sqlite backs the history store with a local file database, meant
// for development and single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	domain "github.com/bryanwahyu/legalsense/internal/domain/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_history (
  storage_key TEXT NOT NULL PRIMARY KEY,
  records     TEXT NOT NULL,
  updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

type HistoryRepository struct {
	db *sql.DB
}

// Open opens (or creates) the database file and initializes the schema.
func Open(path string) (*HistoryRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &HistoryRepository{db: db}, nil
}

func (r *HistoryRepository) Close() error {
	return r.db.Close()
}

// DB exposes the underlying handle for health checks.
func (r *HistoryRepository) DB() *sql.DB {
	return r.db
}

// Migrate re-applies the schema; Open already did, so this is a no-op refresh.
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *HistoryRepository) Load(ctx context.Context, identity domain.Identity) ([]domain.Record, error) {
	const q = `SELECT records FROM analysis_history WHERE storage_key=? LIMIT 1;`

	var raw string
	err := r.db.QueryRowContext(ctx, q, domain.StorageKey(identity)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var recs []domain.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("decoding stored history: %w", err)
	}
	return recs, nil
}

func (r *HistoryRepository) Save(ctx context.Context, identity domain.Identity, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	const q = `
INSERT INTO analysis_history (storage_key, records, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (storage_key) DO UPDATE SET
  records=excluded.records,
  updated_at=CURRENT_TIMESTAMP;
`
	_, err = r.db.ExecContext(ctx, q, domain.StorageKey(identity), string(raw))
	return err
}

func (r *HistoryRepository) Clear(ctx context.Context, identity domain.Identity) error {
	const q = `DELETE FROM analysis_history WHERE storage_key=?;`
	_, err := r.db.ExecContext(ctx, q, domain.StorageKey(identity))
	return err
}

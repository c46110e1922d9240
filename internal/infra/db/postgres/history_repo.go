package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/legalsense/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the history table; one JSONB row per identity.
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_history (
  storage_key TEXT NOT NULL PRIMARY KEY,
  records     JSONB NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *HistoryRepository) Load(ctx context.Context, identity domain.Identity) ([]domain.Record, error) {
	const q = `SELECT records FROM analysis_history WHERE storage_key=$1 LIMIT 1;`

	var raw []byte
	err := r.db.QueryRowContext(ctx, q, domain.StorageKey(identity)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var recs []domain.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
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
VALUES ($1, $2, now())
ON CONFLICT (storage_key) DO UPDATE SET
  records=EXCLUDED.records,
  updated_at=now();
`
	_, err = r.db.ExecContext(ctx, q, domain.StorageKey(identity), raw)
	return err
}

func (r *HistoryRepository) Clear(ctx context.Context, identity domain.Identity) error {
	const q = `DELETE FROM analysis_history WHERE storage_key=$1;`
	_, err := r.db.ExecContext(ctx, q, domain.StorageKey(identity))
	return err
}

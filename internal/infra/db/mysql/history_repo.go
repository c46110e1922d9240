package mysql

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

// Migrate creates the history table. One row per identity: the whole record
// sequence is serialized as a JSON array, keeping reads and writes atomic at
// the collection level.
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_history (
  storage_key VARCHAR(191) NOT NULL PRIMARY KEY,
  records     JSON NOT NULL,
  updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Load reads the full collection for one identity. Unknown identities come
// back as nil with no error; undecodable rows are an error the caller is
// expected to degrade on.
func (r *HistoryRepository) Load(ctx context.Context, identity domain.Identity) ([]domain.Record, error) {
	const q = `SELECT records FROM analysis_history WHERE storage_key=? LIMIT 1;`

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

// Save upserts the full collection for one identity.
func (r *HistoryRepository) Save(ctx context.Context, identity domain.Identity, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	const q = `
INSERT INTO analysis_history (storage_key, records)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE records=VALUES(records);
`
	_, err = r.db.ExecContext(ctx, q, domain.StorageKey(identity), raw)
	return err
}

// Clear drops the identity's row entirely.
func (r *HistoryRepository) Clear(ctx context.Context, identity domain.Identity) error {
	const q = `DELETE FROM analysis_history WHERE storage_key=?;`
	_, err := r.db.ExecContext(ctx, q, domain.StorageKey(identity))
	return err
}

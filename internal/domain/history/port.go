package history

import "context"

// Repository port (interface for persistence). Collections are always read
// and written whole: one durable entry per identity holding the full ordered
// record sequence. The design assumes a single writer per identity; a
// concurrent-writer deployment would need compare-and-swap on a version
// token, which this port does not model.
type Repository interface {
	Load(ctx context.Context, identity Identity) ([]Record, error)
	Save(ctx context.Context, identity Identity, records []Record) error
	Clear(ctx context.Context, identity Identity) error
}

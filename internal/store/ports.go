package store

import (
	"context"

	"magbook/internal/core"
)

// RecordStore is the durable home of the two record collections and the
// mine registry. Loads fail soft: absent or unparseable storage yields an
// empty collection (the registry falls back to its seed), never an error.
// Saves overwrite the durable copy in full and do return errors so the
// caller can log them and flag the persisted copy as stale; the in-memory
// collections stay authoritative either way.
type RecordStore interface {
	LoadIssuance(ctx context.Context) []core.IssuanceRecord
	LoadStock(ctx context.Context) []core.StockRecord
	LoadMines(ctx context.Context) []string

	SaveIssuance(ctx context.Context, records []core.IssuanceRecord) error
	SaveStock(ctx context.Context, records []core.StockRecord) error
	SaveMines(ctx context.Context, mines []string) error
}

// DefaultMines seeds the registry when no durable registry exists yet.
func DefaultMines() []string {
	return []string{"Mine1", "Mine2", "Mine3"}
}

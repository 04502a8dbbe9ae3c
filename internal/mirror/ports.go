package mirror

import (
	"context"

	"magbook/internal/core"
)

// Ports for outbound mirror adapters.
type (
	// RowAppender appends one record as one row to the mirror spreadsheet.
	// The mirror is append-only and best effort; the local store stays
	// authoritative.
	RowAppender interface {
		AppendIssuance(ctx context.Context, r core.IssuanceRecord) (rowRef string, err error)
		AppendStock(ctx context.Context, r core.StockRecord) (rowRef string, err error)
	}
)

// IssuanceRow renders a record in the mirror's issuance column order.
func IssuanceRow(r core.IssuanceRecord) []any {
	return []any{
		r.Date.String(),
		r.Mine,
		r.IssuedBy,
		r.ReceivedBy,
		r.Remarks,
		r.Quantities.Get(core.WaboxCartridges),
		r.Quantities.Get(core.Detonators),
		r.Quantities.Get(core.SafetyFuse),
	}
}

// StockRow renders a record in the mirror's stock column order.
func StockRow(r core.StockRecord) []any {
	return []any{
		r.SerialNo,
		r.ReceivingDate.String(),
		r.ExplosiveType.String(),
		r.Quantity,
	}
}

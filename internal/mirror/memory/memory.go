package memory

import (
	"context"
	"fmt"
	"sync"

	"magbook/internal/core"
	ports "magbook/internal/mirror"
)

// Mirror keeps appended rows in memory, as a broker-free stand-in for the
// spreadsheet mirror.
type Mirror struct {
	mu       sync.Mutex
	issuance [][]any
	stock    [][]any
}

var _ ports.RowAppender = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// AppendIssuance stores the row and returns a synthetic row reference.
func (m *Mirror) AppendIssuance(_ context.Context, r core.IssuanceRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issuance = append(m.issuance, ports.IssuanceRow(r))
	return fmt.Sprintf("mem:issuance:%d", len(m.issuance)), nil
}

// AppendStock stores the row and returns a synthetic row reference.
func (m *Mirror) AppendStock(_ context.Context, r core.StockRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock = append(m.stock, ports.StockRow(r))
	return fmt.Sprintf("mem:stock:%d", len(m.stock)), nil
}

// IssuanceRows returns a copy of the mirrored issuance rows.
func (m *Mirror) IssuanceRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.issuance))
	copy(out, m.issuance)
	return out
}

// StockRows returns a copy of the mirrored stock rows.
func (m *Mirror) StockRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.stock))
	copy(out, m.stock)
	return out
}

package store

import (
	"context"
	"sync"

	"magbook/internal/core"
)

// MemoryStore holds everything in process memory. Used by tests and for
// ephemeral runs; saves always succeed.
type MemoryStore struct {
	mu       sync.Mutex
	issuance []core.IssuanceRecord
	stock    []core.StockRecord
	mines    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mines: DefaultMines()}
}

func (s *MemoryStore) LoadIssuance(_ context.Context) []core.IssuanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IssuanceRecord(nil), s.issuance...)
}

func (s *MemoryStore) LoadStock(_ context.Context) []core.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.StockRecord(nil), s.stock...)
}

func (s *MemoryStore) LoadMines(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.mines...)
}

func (s *MemoryStore) SaveIssuance(_ context.Context, records []core.IssuanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuance = append([]core.IssuanceRecord(nil), records...)
	return nil
}

func (s *MemoryStore) SaveStock(_ context.Context, records []core.StockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = append([]core.StockRecord(nil), records...)
	return nil
}

func (s *MemoryStore) SaveMines(_ context.Context, mines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mines = append([]string(nil), mines...)
	return nil
}

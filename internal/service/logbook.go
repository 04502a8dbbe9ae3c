package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"magbook/internal/amqp"
	"magbook/internal/core"
	"magbook/internal/log"
	"magbook/internal/store"
)

// EventPublisher publishes record events for the mirror worker. Satisfied
// by *amqp.Client; a nil publisher disables mirroring.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event *amqp.RecordEvent) error
}

// Logbook holds the authoritative in-memory record collections and the
// mine registry, and keeps the durable store in sync after every
// mutation. All mutations are serialized by a mutex; reads hand out
// copies so callers can never alias internal state.
type Logbook struct {
	mu        sync.Mutex
	store     store.RecordStore
	publisher EventPublisher
	logger    *log.Logger

	issuance []core.IssuanceRecord
	stock    []core.StockRecord
	mines    []string

	staleIssuance bool
	staleStock    bool
	staleMines    bool
}

// NewLogbook loads all collections from the store. Loads fail soft, so a
// fresh deployment starts with empty records and the seeded mine registry.
func NewLogbook(ctx context.Context, st store.RecordStore, publisher EventPublisher, logger *log.Logger) *Logbook {
	l := &Logbook{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLogbook),
	}
	l.issuance = st.LoadIssuance(ctx)
	l.stock = st.LoadStock(ctx)
	l.mines = st.LoadMines(ctx)

	l.logger.InfoContext(ctx, "Logbook loaded",
		"issuance_records", len(l.issuance),
		"stock_records", len(l.stock),
		"mines", len(l.mines))
	return l
}

// AddIssuance validates and appends one issuance record. The mine must be
// registered. A failed durable write is logged and flags the persisted
// copy stale; the record is still appended in memory.
func (l *Logbook) AddIssuance(ctx context.Context, rec core.IssuanceRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	rec.Quantities = rec.Quantities.Clone()

	l.mu.Lock()
	if !l.mineKnown(rec.Mine) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", core.ErrUnknownMine, rec.Mine)
	}
	l.issuance = append(l.issuance, rec)
	l.staleIssuance = l.persistIssuance(ctx)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Issuance record appended",
		log.FieldOperation, log.OpAppend,
		log.FieldMine, rec.Mine,
		"date", rec.Date.String())

	// Published outside the lock; a slow broker must not block other writers.
	l.publish(ctx, amqp.NewIssuanceEvent(rec))
	return nil
}

// AddStock validates and appends one stock receipt.
func (l *Logbook) AddStock(ctx context.Context, rec core.StockRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	l.stock = append(l.stock, rec)
	l.staleStock = l.persistStock(ctx)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Stock record appended",
		log.FieldOperation, log.OpAppend,
		log.FieldSerialNo, rec.SerialNo,
		"explosive_type", rec.ExplosiveType.String())

	l.publish(ctx, amqp.NewStockEvent(rec))
	return nil
}

// AddMine registers a new mine name.
func (l *Logbook) AddMine(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		var v core.ValidationError
		v.Add("mine", "mine name is required")
		return v.OrNil()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mineKnown(name) {
		return fmt.Errorf("%w: %q", core.ErrDuplicateMine, name)
	}

	l.mines = append(l.mines, name)
	l.staleMines = l.persistMines(ctx)

	l.logger.InfoContext(ctx, "Mine registered",
		log.FieldOperation, log.OpAppend,
		log.FieldMine, name)
	return nil
}

// RenameMine renames a registered mine and rewrites every issuance record
// carrying the old name, as one atomic change. Renaming a mine to itself
// succeeds without touching anything. Renaming onto an already registered
// name merges the two: the old entry leaves the registry and its records
// move under the surviving name.
func (l *Logbook) RenameMine(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		var v core.ValidationError
		v.Add("new_name", "mine name is required")
		return v.OrNil()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.mineKnown(oldName) {
		return fmt.Errorf("%w: %q", core.ErrUnknownMine, oldName)
	}
	if oldName == newName {
		return nil
	}

	merged := l.mineKnown(newName)
	mines := make([]string, 0, len(l.mines))
	for _, m := range l.mines {
		if m == oldName {
			if merged {
				continue // the surviving entry is already registered
			}
			m = newName
		}
		mines = append(mines, m)
	}
	l.mines = mines

	var rewritten int
	for i := range l.issuance {
		if l.issuance[i].Mine == oldName {
			l.issuance[i].Mine = newName
			rewritten++
		}
	}

	l.staleMines = l.persistMines(ctx)
	l.staleIssuance = l.persistIssuance(ctx)

	l.logger.InfoContext(ctx, "Mine renamed",
		log.FieldOperation, log.OpRename,
		"old_name", oldName,
		"new_name", newName,
		"merged", merged,
		log.FieldRecords, rewritten)
	return nil
}

// Mines returns the registered mine names in registry order.
func (l *Logbook) Mines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.mines))
	copy(out, l.mines)
	return out
}

// Issuance returns a copy of the issuance collection in append order.
func (l *Logbook) Issuance() []core.IssuanceRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.IssuanceRecord, len(l.issuance))
	for i, r := range l.issuance {
		r.Quantities = r.Quantities.Clone()
		out[i] = r
	}
	return out
}

// Stock returns a copy of the stock collection in append order.
func (l *Logbook) Stock() []core.StockRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.StockRecord, len(l.stock))
	copy(out, l.stock)
	return out
}

// StockBalance is received minus issued per explosive type. Negative
// balances are reported as-is.
func (l *Logbook) StockBalance() core.Quantities {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.StockBalance(l.stock, l.issuance)
}

// SummaryReport aggregates filtered issuance per mine.
func (l *Logbook) SummaryReport(f core.Filter) []core.SummaryRow {
	return core.SummaryByMine(core.ApplyFilter(l.Issuance(), f))
}

// MonthlyReport aggregates filtered issuance per month, then mine.
func (l *Logbook) MonthlyReport(f core.Filter) []core.MonthlyRow {
	return core.MonthlyByMineAndMonth(core.ApplyFilter(l.Issuance(), f))
}

// MineWiseReport aggregates filtered issuance per mine, then month.
func (l *Logbook) MineWiseReport(f core.Filter) []core.MonthlyRow {
	return core.MineWiseByMonth(core.ApplyFilter(l.Issuance(), f))
}

// Stale reports whether any durable write has failed since it last
// succeeded. The in-memory collections remain authoritative.
func (l *Logbook) Stale() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.staleIssuance || l.staleStock || l.staleMines
}

func (l *Logbook) mineKnown(name string) bool {
	for _, m := range l.mines {
		if m == name {
			return true
		}
	}
	return false
}

// persist helpers return true when the write failed, so the caller can
// record the matching stale flag.

func (l *Logbook) persistIssuance(ctx context.Context) bool {
	if err := l.store.SaveIssuance(ctx, l.issuance); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist issuance records",
			log.FieldOperation, log.OpSaveAll, log.FieldError, err)
		return true
	}
	return false
}

func (l *Logbook) persistStock(ctx context.Context) bool {
	if err := l.store.SaveStock(ctx, l.stock); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist stock records",
			log.FieldOperation, log.OpSaveAll, log.FieldError, err)
		return true
	}
	return false
}

func (l *Logbook) persistMines(ctx context.Context) bool {
	if err := l.store.SaveMines(ctx, l.mines); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist mine registry",
			log.FieldOperation, log.OpSaveAll, log.FieldError, err)
		return true
	}
	return false
}

func (l *Logbook) publish(ctx context.Context, event *amqp.RecordEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishRecordEvent(ctx, event); err != nil {
		// Mirroring is best effort, the record is already saved locally.
		l.logger.ErrorContext(ctx, "Failed to publish record event",
			log.FieldKind, event.Kind, log.FieldError, err)
	}
}

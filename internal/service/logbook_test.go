package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"magbook/internal/amqp"
	"magbook/internal/core"
	"magbook/internal/log"
	"magbook/internal/store"
)

type capturePublisher struct {
	events []*amqp.RecordEvent
	err    error
}

func (p *capturePublisher) PublishRecordEvent(_ context.Context, event *amqp.RecordEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// failingStore wraps a MemoryStore and fails every save.
type failingStore struct {
	*store.MemoryStore
}

func (s *failingStore) SaveIssuance(context.Context, []core.IssuanceRecord) error {
	return errors.New("disk full")
}

func (s *failingStore) SaveStock(context.Context, []core.StockRecord) error {
	return errors.New("disk full")
}

func (s *failingStore) SaveMines(context.Context, []string) error {
	return errors.New("disk full")
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func issuanceFor(mine string, day int) core.IssuanceRecord {
	return core.IssuanceRecord{
		Date:       core.NewDate(2024, time.March, day),
		Mine:       mine,
		IssuedBy:   "A. Kumar",
		ReceivedBy: "B. Singh",
		Quantities: core.Quantities{core.Detonators: 5},
	}
}

func TestAddIssuance(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	pub := &capturePublisher{}
	lb := NewLogbook(ctx, st, pub, testLogger())

	if err := lb.AddIssuance(ctx, issuanceFor("Mine1", 5)); err != nil {
		t.Fatalf("AddIssuance: %v", err)
	}

	if got := lb.Issuance(); len(got) != 1 || got[0].Mine != "Mine1" {
		t.Fatalf("issuance = %+v, want one record for Mine1", got)
	}
	if persisted := st.LoadIssuance(ctx); len(persisted) != 1 {
		t.Errorf("persisted %d records, want 1", len(persisted))
	}
	if len(pub.events) != 1 || pub.events[0].Kind != amqp.KindIssuanceAdded {
		t.Errorf("published events = %+v, want one issuance event", pub.events)
	}
	if lb.Stale() {
		t.Error("Stale() = true after successful save")
	}
}

func TestAddIssuanceUnknownMine(t *testing.T) {
	ctx := context.Background()
	pub := &capturePublisher{}
	lb := NewLogbook(ctx, store.NewMemoryStore(), pub, testLogger())

	err := lb.AddIssuance(ctx, issuanceFor("Nowhere", 5))
	if !errors.Is(err, core.ErrUnknownMine) {
		t.Fatalf("err = %v, want ErrUnknownMine", err)
	}
	if len(lb.Issuance()) != 0 {
		t.Error("rejected record must not be appended")
	}
	if len(pub.events) != 0 {
		t.Error("rejected record must not be published")
	}
}

func TestAddIssuanceValidation(t *testing.T) {
	ctx := context.Background()
	lb := NewLogbook(ctx, store.NewMemoryStore(), nil, testLogger())

	rec := issuanceFor("Mine1", 5)
	rec.Quantities = core.Quantities{core.Detonators: -1}
	err := lb.AddIssuance(ctx, rec)

	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(lb.Issuance()) != 0 {
		t.Error("rejected record must not be appended")
	}
}

func TestAddStock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	pub := &capturePublisher{}
	lb := NewLogbook(ctx, st, pub, testLogger())

	rec := core.StockRecord{
		SerialNo:      "SN-1",
		ReceivingDate: core.NewDate(2024, time.February, 1),
		ExplosiveType: core.Detonators,
		Quantity:      100,
	}
	if err := lb.AddStock(ctx, rec); err != nil {
		t.Fatalf("AddStock: %v", err)
	}

	if persisted := st.LoadStock(ctx); len(persisted) != 1 {
		t.Errorf("persisted %d records, want 1", len(persisted))
	}
	if len(pub.events) != 1 || pub.events[0].Kind != amqp.KindStockAdded {
		t.Errorf("published events = %+v, want one stock event", pub.events)
	}

	balance := lb.StockBalance()
	if balance.Get(core.Detonators) != 100 {
		t.Errorf("balance detonators = %d, want 100", balance.Get(core.Detonators))
	}
}

func TestAddMine(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	lb := NewLogbook(ctx, st, nil, testLogger())

	if err := lb.AddMine(ctx, "North Pit"); err != nil {
		t.Fatalf("AddMine: %v", err)
	}
	if err := lb.AddMine(ctx, "North Pit"); !errors.Is(err, core.ErrDuplicateMine) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateMine", err)
	}
	if err := lb.AddMine(ctx, "  "); err == nil {
		t.Fatal("blank mine name must be rejected")
	}

	mines := lb.Mines()
	want := append(store.DefaultMines(), "North Pit")
	if len(mines) != len(want) {
		t.Fatalf("mines = %v, want %v", mines, want)
	}
	for i := range want {
		if mines[i] != want[i] {
			t.Fatalf("mines = %v, want %v", mines, want)
		}
	}
}

func TestRenameMineCascades(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	lb := NewLogbook(ctx, st, nil, testLogger())

	for _, day := range []int{1, 2} {
		if err := lb.AddIssuance(ctx, issuanceFor("Mine1", day)); err != nil {
			t.Fatalf("AddIssuance: %v", err)
		}
	}
	if err := lb.AddIssuance(ctx, issuanceFor("Mine2", 3)); err != nil {
		t.Fatalf("AddIssuance: %v", err)
	}

	if err := lb.RenameMine(ctx, "Mine1", "East Quarry"); err != nil {
		t.Fatalf("RenameMine: %v", err)
	}

	for _, r := range lb.Issuance() {
		if r.Mine == "Mine1" {
			t.Error("record still carries the old mine name")
		}
	}
	renamed := 0
	for _, r := range st.LoadIssuance(ctx) {
		if r.Mine == "East Quarry" {
			renamed++
		}
	}
	if renamed != 2 {
		t.Errorf("persisted %d renamed records, want 2", renamed)
	}
	for _, m := range lb.Mines() {
		if m == "Mine1" {
			t.Error("registry still holds the old mine name")
		}
	}
}

func TestRenameMineMerge(t *testing.T) {
	ctx := context.Background()
	lb := NewLogbook(ctx, store.NewMemoryStore(), nil, testLogger())

	if err := lb.AddIssuance(ctx, issuanceFor("Mine1", 1)); err != nil {
		t.Fatalf("AddIssuance: %v", err)
	}
	if err := lb.RenameMine(ctx, "Mine1", "Mine2"); err != nil {
		t.Fatalf("RenameMine: %v", err)
	}

	count := 0
	for _, m := range lb.Mines() {
		if m == "Mine2" {
			count++
		}
		if m == "Mine1" {
			t.Error("merged-away name still registered")
		}
	}
	if count != 1 {
		t.Errorf("Mine2 registered %d times, want 1", count)
	}
	if got := lb.Issuance(); len(got) != 1 || got[0].Mine != "Mine2" {
		t.Errorf("records after merge = %+v, want one under Mine2", got)
	}
}

func TestRenameMineEdgeCases(t *testing.T) {
	ctx := context.Background()
	lb := NewLogbook(ctx, store.NewMemoryStore(), nil, testLogger())

	if err := lb.RenameMine(ctx, "Mine1", "Mine1"); err != nil {
		t.Errorf("rename to same name: %v, want nil", err)
	}
	if err := lb.RenameMine(ctx, "Nowhere", "Somewhere"); !errors.Is(err, core.ErrUnknownMine) {
		t.Errorf("rename unknown: %v, want ErrUnknownMine", err)
	}
	if err := lb.RenameMine(ctx, "Mine1", "  "); err == nil {
		t.Error("blank new name must be rejected")
	}
}

func TestStaleAfterFailedSave(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{MemoryStore: store.NewMemoryStore()}
	lb := NewLogbook(ctx, st, nil, testLogger())

	if err := lb.AddIssuance(ctx, issuanceFor("Mine1", 5)); err != nil {
		t.Fatalf("AddIssuance: %v", err)
	}
	if !lb.Stale() {
		t.Error("Stale() = false after failed save")
	}
	if len(lb.Issuance()) != 1 {
		t.Error("in-memory collection must keep the record")
	}
}

func TestPublisherFailureDoesNotFailAppend(t *testing.T) {
	ctx := context.Background()
	pub := &capturePublisher{err: errors.New("broker down")}
	lb := NewLogbook(ctx, store.NewMemoryStore(), pub, testLogger())

	if err := lb.AddIssuance(ctx, issuanceFor("Mine1", 5)); err != nil {
		t.Fatalf("AddIssuance: %v", err)
	}
	if len(lb.Issuance()) != 1 {
		t.Error("record must be appended even when publishing fails")
	}
}

func TestReportsThroughLogbook(t *testing.T) {
	ctx := context.Background()
	lb := NewLogbook(ctx, store.NewMemoryStore(), nil, testLogger())

	for _, day := range []int{1, 2} {
		if err := lb.AddIssuance(ctx, issuanceFor("Mine1", day)); err != nil {
			t.Fatalf("AddIssuance: %v", err)
		}
	}
	if err := lb.AddIssuance(ctx, issuanceFor("Mine2", 3)); err != nil {
		t.Fatalf("AddIssuance: %v", err)
	}

	summary := lb.SummaryReport(core.Filter{})
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d, want 2", len(summary))
	}
	if summary[0].Mine != "Mine1" || summary[0].Quantities.Get(core.Detonators) != 10 {
		t.Errorf("summary[0] = %+v, want Mine1 with 10 detonators", summary[0])
	}

	filtered := lb.SummaryReport(core.Filter{Mines: []string{"Mine2"}})
	if len(filtered) != 1 || filtered[0].Mine != "Mine2" {
		t.Errorf("filtered summary = %+v, want only Mine2", filtered)
	}

	monthly := lb.MonthlyReport(core.Filter{})
	if len(monthly) != 2 {
		t.Errorf("monthly rows = %d, want 2", len(monthly))
	}
}

type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) PublishRecordEvent(context.Context, *amqp.RecordEvent) error {
	close(p.entered)
	<-p.release
	return nil
}

func TestPublishDoesNotBlockMutations(t *testing.T) {
	ctx := context.Background()
	pub := &blockingPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	lb := NewLogbook(ctx, store.NewMemoryStore(), pub, testLogger())

	stockDone := make(chan error, 1)
	go func() {
		stockDone <- lb.AddStock(ctx, core.StockRecord{
			SerialNo:      "SN-1",
			ReceivingDate: core.NewDate(2024, time.March, 1),
			ExplosiveType: core.Detonators,
			Quantity:      10,
		})
	}()
	<-pub.entered

	mineDone := make(chan error, 1)
	go func() { mineDone <- lb.AddMine(ctx, "North Pit") }()
	select {
	case err := <-mineDone:
		if err != nil {
			t.Fatalf("AddMine: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AddMine blocked while a publish was in flight")
	}

	close(pub.release)
	if err := <-stockDone; err != nil {
		t.Fatalf("AddStock: %v", err)
	}
}

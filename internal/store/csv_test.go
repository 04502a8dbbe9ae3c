package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"magbook/internal/core"
)

func sampleIssuance() []core.IssuanceRecord {
	return []core.IssuanceRecord{
		{
			Date:       core.NewDate(2024, time.March, 7),
			Mine:       "Mine1",
			IssuedBy:   "Engineer",
			ReceivedBy: "Blaster",
			Remarks:    "routine",
			Quantities: core.Quantities{core.WaboxCartridges: 5, core.Detonators: 2, core.SafetyFuse: 30},
		},
		{
			Date:       core.NewDate(2024, time.April, 1),
			Mine:       "Mine2",
			Quantities: core.Quantities{core.Detonators: 1},
		},
	}
}

func sampleStock() []core.StockRecord {
	return []core.StockRecord{
		{SerialNo: "S12345", ReceivingDate: core.NewDate(2024, time.February, 28), ExplosiveType: core.WaboxCartridges, Quantity: 100},
		{SerialNo: "S12345", ReceivingDate: core.NewDate(2024, time.March, 1), ExplosiveType: core.SafetyFuse, Quantity: 200},
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewCSVStore(t.TempDir())

	issuance := sampleIssuance()
	if err := s.SaveIssuance(ctx, issuance); err != nil {
		t.Fatalf("SaveIssuance: %v", err)
	}
	loaded := s.LoadIssuance(ctx)
	if len(loaded) != len(issuance) {
		t.Fatalf("loaded %d records, want %d", len(loaded), len(issuance))
	}
	for i := range issuance {
		want, got := issuance[i], loaded[i]
		if !got.Date.Equal(want.Date) {
			t.Errorf("record %d date = %s, want %s", i, got.Date, want.Date)
		}
		if got.Mine != want.Mine || got.IssuedBy != want.IssuedBy || got.ReceivedBy != want.ReceivedBy || got.Remarks != want.Remarks {
			t.Errorf("record %d fields = %+v, want %+v", i, got, want)
		}
		for _, typ := range core.ExplosiveTypes() {
			if got.Quantities.Get(typ) != want.Quantities.Get(typ) {
				t.Errorf("record %d %s = %d, want %d", i, typ, got.Quantities.Get(typ), want.Quantities.Get(typ))
			}
		}
	}

	stock := sampleStock()
	if err := s.SaveStock(ctx, stock); err != nil {
		t.Fatalf("SaveStock: %v", err)
	}
	loadedStock := s.LoadStock(ctx)
	if len(loadedStock) != len(stock) {
		t.Fatalf("loaded %d stock records, want %d", len(loadedStock), len(stock))
	}
	for i := range stock {
		want, got := stock[i], loadedStock[i]
		if got.SerialNo != want.SerialNo || got.ExplosiveType != want.ExplosiveType || got.Quantity != want.Quantity {
			t.Errorf("stock %d = %+v, want %+v", i, got, want)
		}
		if !got.ReceivingDate.Equal(want.ReceivingDate) {
			t.Errorf("stock %d date = %s, want %s", i, got.ReceivingDate, want.ReceivingDate)
		}
	}
}

func TestCSVStoreSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)
	records := sampleIssuance()

	if err := s.SaveIssuance(ctx, records); err != nil {
		t.Fatalf("first save: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(dir, issuanceFile))
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if err := s.SaveIssuance(ctx, records); err != nil {
		t.Fatalf("second save: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, issuanceFile))
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("two saves of the same collection produced different bytes")
	}
}

func TestCSVStoreHeaderOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)
	if err := s.SaveIssuance(ctx, nil); err != nil {
		t.Fatalf("SaveIssuance: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, issuanceFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Date,Mine,Issued By,Received By,Remarks,Wabox Cartridges,Detonators,Safety Fuse (m)\n"
	if string(data) != want {
		t.Fatalf("header = %q, want %q", string(data), want)
	}

	if err := s.SaveStock(ctx, nil); err != nil {
		t.Fatalf("SaveStock: %v", err)
	}
	data, err = os.ReadFile(filepath.Join(dir, stockFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want = "Serial No,Receiving Date,Explosive Type,Quantity\n"
	if string(data) != want {
		t.Fatalf("header = %q, want %q", string(data), want)
	}
}

func TestCSVStoreMissingFilesLoadEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewCSVStore(t.TempDir())
	if got := s.LoadIssuance(ctx); len(got) != 0 {
		t.Fatalf("expected empty issuance, got %d", len(got))
	}
	if got := s.LoadStock(ctx); len(got) != 0 {
		t.Fatalf("expected empty stock, got %d", len(got))
	}
}

func TestCSVStoreCorruptFileLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)
	corrupt := "Date,Mine\nnot-a-date,Mine1,too,many,fields\n"
	if err := os.WriteFile(filepath.Join(dir, issuanceFile), []byte(corrupt), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if got := s.LoadIssuance(ctx); len(got) != 0 {
		t.Fatalf("expected empty issuance for corrupt file, got %d", len(got))
	}
}

func TestCSVStoreMinesSeedAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)

	mines := s.LoadMines(ctx)
	if len(mines) != 3 || mines[0] != "Mine1" {
		t.Fatalf("seed registry = %v", mines)
	}

	if err := s.SaveMines(ctx, []string{"North Pit", "South Pit"}); err != nil {
		t.Fatalf("SaveMines: %v", err)
	}
	mines = s.LoadMines(ctx)
	if len(mines) != 2 || mines[0] != "North Pit" || mines[1] != "South Pit" {
		t.Fatalf("registry after save = %v", mines)
	}
}

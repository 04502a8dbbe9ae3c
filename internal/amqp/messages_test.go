package amqp

import (
	"testing"
	"time"

	"magbook/internal/core"
)

func TestIssuanceEventRoundTrip(t *testing.T) {
	rec := core.IssuanceRecord{
		Date:       core.NewDate(2024, time.March, 5),
		Mine:       "Mine1",
		IssuedBy:   "A. Kumar",
		ReceivedBy: "B. Singh",
		Remarks:    "blast 7",
		Quantities: core.Quantities{
			core.WaboxCartridges: 40,
			core.Detonators:      12,
			core.SafetyFuse:      30,
		},
	}

	event := NewIssuanceEvent(rec)
	if event.Kind != KindIssuanceAdded {
		t.Fatalf("kind = %q, want %q", event.Kind, KindIssuanceAdded)
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := RecordEventFromJSON(body)
	if err != nil {
		t.Fatalf("RecordEventFromJSON: %v", err)
	}
	if decoded.Issuance == nil {
		t.Fatal("decoded issuance payload is nil")
	}

	got, err := decoded.Issuance.IssuanceRecord()
	if err != nil {
		t.Fatalf("IssuanceRecord: %v", err)
	}
	if !got.Date.Equal(rec.Date) {
		t.Errorf("date = %s, want %s", got.Date, rec.Date)
	}
	if got.Mine != rec.Mine || got.IssuedBy != rec.IssuedBy || got.ReceivedBy != rec.ReceivedBy || got.Remarks != rec.Remarks {
		t.Errorf("fields = %+v, want %+v", got, rec)
	}
	for _, typ := range core.ExplosiveTypes() {
		if got.Quantities.Get(typ) != rec.Quantities.Get(typ) {
			t.Errorf("quantity %s = %d, want %d", typ, got.Quantities.Get(typ), rec.Quantities.Get(typ))
		}
	}
}

func TestStockEventRoundTrip(t *testing.T) {
	rec := core.StockRecord{
		SerialNo:      "SN-0042",
		ReceivingDate: core.NewDate(2024, time.February, 20),
		ExplosiveType: core.Detonators,
		Quantity:      200,
	}

	event := NewStockEvent(rec)
	if event.Kind != KindStockAdded {
		t.Fatalf("kind = %q, want %q", event.Kind, KindStockAdded)
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := RecordEventFromJSON(body)
	if err != nil {
		t.Fatalf("RecordEventFromJSON: %v", err)
	}
	if decoded.Stock == nil {
		t.Fatal("decoded stock payload is nil")
	}

	got, err := decoded.Stock.StockRecord()
	if err != nil {
		t.Fatalf("StockRecord: %v", err)
	}
	if got.SerialNo != rec.SerialNo || got.ExplosiveType != rec.ExplosiveType || got.Quantity != rec.Quantity {
		t.Errorf("got %+v, want %+v", got, rec)
	}
	if !got.ReceivingDate.Equal(rec.ReceivingDate) {
		t.Errorf("receiving date = %s, want %s", got.ReceivingDate, rec.ReceivingDate)
	}
}

func TestPayloadRejectsBadDate(t *testing.T) {
	p := IssuancePayload{Date: "05/03/2024", Mine: "Mine1"}
	if _, err := p.IssuanceRecord(); err == nil {
		t.Error("expected error for non ISO date")
	}

	s := StockPayload{ReceivingDate: "2024-13-40", ExplosiveType: "Detonators"}
	if _, err := s.StockRecord(); err == nil {
		t.Error("expected error for impossible date")
	}
}

func TestPayloadRejectsUnknownType(t *testing.T) {
	s := StockPayload{ReceivingDate: "2024-02-20", ExplosiveType: "Dynamite"}
	if _, err := s.StockRecord(); err == nil {
		t.Error("expected error for unknown explosive type")
	}
}

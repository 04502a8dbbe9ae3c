package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"magbook/internal/core"
)

const (
	KindIssuanceAdded = "issuance_added"
	KindStockAdded    = "stock_added"
)

type (
	// RecordEvent is published after a record is appended to the logbook.
	// It carries the full record so the mirror worker needs no access to
	// the record store.
	RecordEvent struct {
		Kind      string           `json:"kind"`
		Issuance  *IssuancePayload `json:"issuance,omitempty"`
		Stock     *StockPayload    `json:"stock,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}

	IssuancePayload struct {
		Date        string `json:"date"`
		Mine        string `json:"mine"`
		IssuedBy    string `json:"issued_by"`
		ReceivedBy  string `json:"received_by"`
		Remarks     string `json:"remarks"`
		Wabox       int    `json:"wabox_cartridges"`
		Detonators  int    `json:"detonators"`
		SafetyFuseM int    `json:"safety_fuse_m"`
	}

	StockPayload struct {
		SerialNo      string `json:"serial_no"`
		ReceivingDate string `json:"receiving_date"`
		ExplosiveType string `json:"explosive_type"`
		Quantity      int    `json:"quantity"`
	}
)

// NewIssuanceEvent wraps an appended issuance record.
func NewIssuanceEvent(r core.IssuanceRecord) *RecordEvent {
	return &RecordEvent{
		Kind: KindIssuanceAdded,
		Issuance: &IssuancePayload{
			Date:        r.Date.String(),
			Mine:        r.Mine,
			IssuedBy:    r.IssuedBy,
			ReceivedBy:  r.ReceivedBy,
			Remarks:     r.Remarks,
			Wabox:       r.Quantities.Get(core.WaboxCartridges),
			Detonators:  r.Quantities.Get(core.Detonators),
			SafetyFuseM: r.Quantities.Get(core.SafetyFuse),
		},
		Timestamp: time.Now(),
	}
}

// NewStockEvent wraps an appended stock record.
func NewStockEvent(r core.StockRecord) *RecordEvent {
	return &RecordEvent{
		Kind: KindStockAdded,
		Stock: &StockPayload{
			SerialNo:      r.SerialNo,
			ReceivingDate: r.ReceivingDate.String(),
			ExplosiveType: r.ExplosiveType.String(),
			Quantity:      r.Quantity,
		},
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON creates an event from JSON bytes
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// IssuanceRecord rebuilds the domain record from the payload.
func (p *IssuancePayload) IssuanceRecord() (core.IssuanceRecord, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.IssuanceRecord{}, fmt.Errorf("issuance payload date: %w", err)
	}
	return core.IssuanceRecord{
		Date:       date,
		Mine:       p.Mine,
		IssuedBy:   p.IssuedBy,
		ReceivedBy: p.ReceivedBy,
		Remarks:    p.Remarks,
		Quantities: core.Quantities{
			core.WaboxCartridges: p.Wabox,
			core.Detonators:      p.Detonators,
			core.SafetyFuse:      p.SafetyFuseM,
		},
	}, nil
}

// StockRecord rebuilds the domain record from the payload.
func (p *StockPayload) StockRecord() (core.StockRecord, error) {
	date, err := core.ParseDate(p.ReceivingDate)
	if err != nil {
		return core.StockRecord{}, fmt.Errorf("stock payload date: %w", err)
	}
	typ, err := core.ParseExplosiveType(p.ExplosiveType)
	if err != nil {
		return core.StockRecord{}, fmt.Errorf("stock payload type: %w", err)
	}
	return core.StockRecord{
		SerialNo:      p.SerialNo,
		ReceivingDate: date,
		ExplosiveType: typ,
		Quantity:      p.Quantity,
	}, nil
}

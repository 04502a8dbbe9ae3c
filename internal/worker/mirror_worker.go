package worker

import (
	"context"
	"fmt"
	"log/slog"

	"magbook/internal/amqp"
	"magbook/internal/mirror"
)

// MirrorWorker consumes record events and appends each record as a row to
// the spreadsheet mirror.
type MirrorWorker struct {
	appender mirror.RowAppender
}

func NewMirrorWorker(appender mirror.RowAppender) *MirrorWorker {
	return &MirrorWorker{appender: appender}
}

// HandleRecordEvent processes a single record event from AMQP.
func (w *MirrorWorker) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	switch event.Kind {
	case amqp.KindIssuanceAdded:
		return w.mirrorIssuance(ctx, event)
	case amqp.KindStockAdded:
		return w.mirrorStock(ctx, event)
	default:
		// An unknown kind is a producer bug; drop it instead of requeueing.
		slog.WarnContext(ctx, "Dropping event of unknown kind", "kind", event.Kind)
		return nil
	}
}

func (w *MirrorWorker) mirrorIssuance(ctx context.Context, event *amqp.RecordEvent) error {
	if event.Issuance == nil {
		slog.WarnContext(ctx, "Dropping issuance event without payload")
		return nil
	}

	rec, err := event.Issuance.IssuanceRecord()
	if err != nil {
		slog.ErrorContext(ctx, "Dropping malformed issuance event", "error", err)
		return nil
	}

	ref, err := w.appender.AppendIssuance(ctx, rec)
	if err != nil {
		return fmt.Errorf("mirror issuance record: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored issuance record",
		"mine", rec.Mine,
		"date", rec.Date.String(),
		"sheets_ref", ref)
	return nil
}

func (w *MirrorWorker) mirrorStock(ctx context.Context, event *amqp.RecordEvent) error {
	if event.Stock == nil {
		slog.WarnContext(ctx, "Dropping stock event without payload")
		return nil
	}

	rec, err := event.Stock.StockRecord()
	if err != nil {
		slog.ErrorContext(ctx, "Dropping malformed stock event", "error", err)
		return nil
	}

	ref, err := w.appender.AppendStock(ctx, rec)
	if err != nil {
		return fmt.Errorf("mirror stock record: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored stock record",
		"serial_no", rec.SerialNo,
		"sheets_ref", ref)
	return nil
}

package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Ledger appends webhook delivery attempt outcomes to the
// webhook_deliveries table. Rows are append-only evidence: one row per
// attempt, never updated or deleted.
type Ledger struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewLedger creates a Ledger backed by the given database
func NewLedger(db *sqlx.DB, logger *slog.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: logger,
	}
}

// Record appends one delivery outcome row. Failures are logged and
// swallowed: the worker's retry flow must not be blocked or crashed by
// ledger unavailability.
func (l *Ledger) Record(ctx context.Context, buyerID, dealID string, event EventType, status DeliveryStatus, payload []byte, signature string) {
	if err := l.record(ctx, buyerID, dealID, event, status, payload, signature); err != nil {
		l.logger.Error("Failed to record webhook delivery",
			slog.String("buyer_id", buyerID),
			slog.String("deal_id", dealID),
			slog.Any("error", err),
		)
		return
	}

	l.logger.Info("Recorded webhook delivery",
		slog.String("buyer_id", buyerID),
		slog.String("deal_id", dealID),
		slog.String("status", string(status)),
	)
}

func (l *Ledger) record(ctx context.Context, buyerID, dealID string, event EventType, status DeliveryStatus, payload []byte, signature string) error {
	if buyerID == "" {
		return fmt.Errorf("buyer id is required to record webhook delivery")
	}

	query := `
		INSERT INTO webhook_deliveries (
			id, buyer_id, deal_id, event_type,
			status, payload, signature, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
	`

	_, err := l.db.ExecContext(
		ctx,
		query,
		uuid.New().String(),
		buyerID,
		dealID,
		string(event),
		string(status),
		payload,
		signature,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert webhook delivery: %w", err)
	}

	return nil
}

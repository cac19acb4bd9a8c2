package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ndmanh/marketplace-be/internal/api/model"
)

type DeliveryFilter struct {
	BuyerID   string
	EventType string
	Status    string
	PageSize  int
	Cursor    *DeliveryCursor
}

type DeliveryCursor struct {
	CreatedAt  time.Time
	DeliveryID string
}

func (s *Storage) ListDeliveries(ctx context.Context, filter DeliveryFilter) ([]model.WebhookDelivery, error) {
	query := `
		SELECT id, buyer_id, deal_id, event_type, status, payload, signature, created_at
		FROM webhook_deliveries
		WHERE buyer_id = $1
	`
	args := []interface{}{filter.BuyerID}
	argIdx := 2

	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.DeliveryID)
		argIdx += 2
	}

	// Order by created_at DESC, id DESC for consistent pagination
	query += " ORDER BY created_at DESC, id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var deliveries []model.WebhookDelivery
	if err := s.db.SelectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	return deliveries, nil
}

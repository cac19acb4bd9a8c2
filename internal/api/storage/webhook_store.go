package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndmanh/marketplace-be/internal/webhook"
)

// GetBuyerEndpoint implements the producer's read side. A missing buyer
// maps to webhook.ErrSubjectNotFound so the producer can treat it as an
// opt-out instead of a storage failure.
func (s *Storage) GetBuyerEndpoint(ctx context.Context, buyerID string) (*webhook.Endpoint, error) {
	var row struct {
		ID         string `db:"id"`
		WebhookURL string `db:"webhook_url"`
		SecretKey  string `db:"secret_key"`
	}

	query := `SELECT id, webhook_url, secret_key FROM buyers WHERE id = $1`

	err := s.db.GetContext(ctx, &row, query, buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, webhook.ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer endpoint: %w", err)
	}

	return &webhook.Endpoint{
		BuyerID:    row.ID,
		WebhookURL: row.WebhookURL,
		SecretKey:  row.SecretKey,
	}, nil
}

// GetDealSnapshot returns the deal fields carried in webhook payloads.
func (s *Storage) GetDealSnapshot(ctx context.Context, dealID string) (*webhook.DealSnapshot, error) {
	var row struct {
		ID         string  `db:"id"`
		Name       string  `db:"name"`
		TotalPrice float64 `db:"total_price"`
		Status     string  `db:"status"`
	}

	query := `SELECT id, name, total_price, status FROM deals WHERE id = $1`

	err := s.db.GetContext(ctx, &row, query, dealID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, webhook.ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal snapshot: %w", err)
	}

	return &webhook.DealSnapshot{
		ID:         row.ID,
		Name:       row.Name,
		TotalPrice: row.TotalPrice,
		Status:     row.Status,
	}, nil
}

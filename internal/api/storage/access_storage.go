package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndmanh/marketplace-be/internal/api/domain"
	"github.com/ndmanh/marketplace-be/internal/api/model"
)

func (s *Storage) CreateAccessRequest(ctx context.Context, req *model.AuthorizationRequest) error {
	query := `
		INSERT INTO authorization_requests (
			id, buyer_id, seller_id, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		req.ID,
		req.BuyerID,
		req.SellerID,
		req.Message,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access request: %w", err)
	}

	return nil
}

func (s *Storage) HasPendingAccessRequest(ctx context.Context, buyerID, sellerID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM authorization_requests
			WHERE buyer_id = $1 AND seller_id = $2 AND status = 'PENDING'
		)
	`

	if err := s.db.GetContext(ctx, &exists, query, buyerID, sellerID); err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}

	return exists, nil
}

func (s *Storage) GetPendingAccessRequest(ctx context.Context, buyerID, sellerID string) (*model.AuthorizationRequest, error) {
	var req model.AuthorizationRequest
	query := `
		SELECT id, buyer_id, seller_id, message, status, created_at, updated_at
		FROM authorization_requests
		WHERE buyer_id = $1 AND seller_id = $2 AND status = 'PENDING'
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := s.db.GetContext(ctx, &req, query, buyerID, sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccessRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access request: %w", err)
	}

	return &req, nil
}

// ResolveAccessRequest marks the request APPROVED or REJECTED and, on
// approval, creates the buyer-seller authorization in the same transaction.
func (s *Storage) ResolveAccessRequest(ctx context.Context, req *model.AuthorizationRequest, approve bool, level string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := domain.AccessRequestRejected
	if approve {
		status = domain.AccessRequestApproved
	}

	updateQuery := `
		UPDATE authorization_requests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'PENDING'
	`
	res, err := tx.ExecContext(ctx, updateQuery, status, time.Now(), req.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve access request: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrAccessRequestNotFound
	}

	if approve {
		linkQuery := `
			INSERT INTO buyer_sellers (buyer_id, seller_id, authorization_level, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (buyer_id, seller_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, linkQuery, req.BuyerID, req.SellerID, level, time.Now()); err != nil {
			return fmt.Errorf("failed to create authorization: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit access request resolution: %w", err)
	}

	return nil
}

func (s *Storage) DeleteAuthorization(ctx context.Context, buyerID, sellerID string) error {
	query := `DELETE FROM buyer_sellers WHERE buyer_id = $1 AND seller_id = $2`

	res, err := s.db.ExecContext(ctx, query, buyerID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to delete authorization: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotAuthorized
	}

	return nil
}

// ListAuthorizedBuyerIDs returns the buyers a seller has authorized, used
// for webhook fan-out on deal mutations.
func (s *Storage) ListAuthorizedBuyerIDs(ctx context.Context, sellerID string) ([]string, error) {
	var buyerIDs []string
	query := `
		SELECT buyer_id FROM buyer_sellers
		WHERE seller_id = $1
		ORDER BY created_at
	`

	if err := s.db.SelectContext(ctx, &buyerIDs, query, sellerID); err != nil {
		return nil, fmt.Errorf("failed to list authorized buyers: %w", err)
	}

	return buyerIDs, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndmanh/marketplace-be/internal/api/domain"
	"github.com/ndmanh/marketplace-be/internal/api/model"
)

// CreateDeal inserts the deal, its items and the optional discount in one
// transaction.
func (s *Storage) CreateDeal(ctx context.Context, deal *model.Deal, items []model.Item, discount *model.Discount) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dealQuery := `
		INSERT INTO deals (
			id, seller_id, name, description, total_price,
			status, is_private, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(
		ctx,
		dealQuery,
		deal.ID,
		deal.SellerID,
		deal.Name,
		deal.Description,
		deal.TotalPrice,
		deal.Status,
		deal.IsPrivate,
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal: %w", err)
	}

	itemQuery := `
		INSERT INTO items (id, deal_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, itemQuery, item.ID, item.DealID, item.Name, item.Price, item.Quantity); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if discount != nil {
		if err := insertDiscount(ctx, tx, discount); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deal: %w", err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertDiscount(ctx context.Context, ex execer, discount *model.Discount) error {
	query := `
		INSERT INTO discounts (id, deal_id, description, percentage, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := ex.ExecContext(ctx, query, discount.ID, discount.DealID, discount.Description, discount.Percentage, discount.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert discount: %w", err)
	}
	return nil
}

func (s *Storage) GetDealByID(ctx context.Context, dealID string) (*model.Deal, error) {
	var deal model.Deal
	query := `
		SELECT id, seller_id, name, description, total_price,
		       status, is_private, created_at, updated_at
		FROM deals
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &deal, query, dealID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	return &deal, nil
}

// UpdateDeal persists the mutable deal fields and, when a discount is
// supplied, appends it in the same transaction.
func (s *Storage) UpdateDeal(ctx context.Context, deal *model.Deal, discount *model.Discount) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE deals
		SET name = $1, description = $2, total_price = $3,
		    status = $4, updated_at = $5
		WHERE id = $6 AND seller_id = $7
	`
	res, err := tx.ExecContext(
		ctx,
		query,
		deal.Name,
		deal.Description,
		deal.TotalPrice,
		deal.Status,
		deal.UpdatedAt,
		deal.ID,
		deal.SellerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrDealNotFound
	}

	if discount != nil {
		if err := insertDiscount(ctx, tx, discount); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deal update: %w", err)
	}

	return nil
}

func (s *Storage) GetDealItems(ctx context.Context, dealID string) ([]model.Item, error) {
	var items []model.Item
	query := `
		SELECT id, deal_id, name, price, quantity
		FROM items
		WHERE deal_id = $1
		ORDER BY name
	`

	if err := s.db.SelectContext(ctx, &items, query, dealID); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

func (s *Storage) GetLatestDiscount(ctx context.Context, dealID string) (*model.Discount, error) {
	var discount model.Discount
	query := `
		SELECT id, deal_id, description, percentage, created_at
		FROM discounts
		WHERE deal_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := s.db.GetContext(ctx, &discount, query, dealID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}

	return &discount, nil
}

// ListVisibleDeals returns AVAILABLE deals the buyer may see: every public
// deal plus private deals of sellers that authorized the buyer.
func (s *Storage) ListVisibleDeals(ctx context.Context, buyerID string) ([]model.Deal, error) {
	var deals []model.Deal
	query := `
		SELECT d.id, d.seller_id, d.name, d.description, d.total_price,
		       d.status, d.is_private, d.created_at, d.updated_at
		FROM deals d
		WHERE d.status = 'AVAILABLE'
		  AND (
			d.is_private = FALSE
			OR EXISTS (
				SELECT 1 FROM buyer_sellers bs
				WHERE bs.buyer_id = $1 AND bs.seller_id = d.seller_id
			)
		  )
		ORDER BY d.created_at DESC
	`

	if err := s.db.SelectContext(ctx, &deals, query, buyerID); err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	return deals, nil
}

// ListPrivateDeals returns private AVAILABLE deals from sellers that
// authorized the buyer.
func (s *Storage) ListPrivateDeals(ctx context.Context, buyerID string) ([]model.Deal, error) {
	var deals []model.Deal
	query := `
		SELECT d.id, d.seller_id, d.name, d.description, d.total_price,
		       d.status, d.is_private, d.created_at, d.updated_at
		FROM deals d
		JOIN buyer_sellers bs ON bs.seller_id = d.seller_id
		WHERE bs.buyer_id = $1
		  AND d.is_private = TRUE
		  AND d.status = 'AVAILABLE'
		ORDER BY d.created_at DESC
	`

	if err := s.db.SelectContext(ctx, &deals, query, buyerID); err != nil {
		return nil, fmt.Errorf("failed to list private deals: %w", err)
	}

	return deals, nil
}

// ListSellerDealsForBuyer returns the seller's AVAILABLE deals visible to
// the buyer: public always, private only when the buyer is authorized.
func (s *Storage) ListSellerDealsForBuyer(ctx context.Context, buyerID, sellerID string) ([]model.Deal, error) {
	var deals []model.Deal
	query := `
		SELECT d.id, d.seller_id, d.name, d.description, d.total_price,
		       d.status, d.is_private, d.created_at, d.updated_at
		FROM deals d
		WHERE d.seller_id = $1
		  AND d.status = 'AVAILABLE'
		  AND (
			d.is_private = FALSE
			OR EXISTS (
				SELECT 1 FROM buyer_sellers bs
				WHERE bs.buyer_id = $2 AND bs.seller_id = d.seller_id
			)
		  )
		ORDER BY d.created_at DESC
	`

	if err := s.db.SelectContext(ctx, &deals, query, sellerID, buyerID); err != nil {
		return nil, fmt.Errorf("failed to list seller deals: %w", err)
	}

	return deals, nil
}

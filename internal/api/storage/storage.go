package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ndmanh/marketplace-be/internal/api/domain"
	"github.com/ndmanh/marketplace-be/internal/api/model"
	"github.com/ndmanh/marketplace-be/shared/postgresql"
)

const pqUniqueViolation = "23505"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// NewStorageWithDB wires an existing handle, used by tests
func NewStorageWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`

	err := s.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *Storage) CreateBuyer(ctx context.Context, buyer *model.Buyer) error {
	query := `
		INSERT INTO buyers (id, webhook_url, secret_key, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query, buyer.ID, buyer.WebhookURL, buyer.SecretKey, buyer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create buyer: %w", err)
	}

	return nil
}

func (s *Storage) CreateSeller(ctx context.Context, seller *model.Seller) error {
	query := `
		INSERT INTO sellers (id, api_key, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, seller.ID, seller.APIKey, seller.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}

	return nil
}

func (s *Storage) UpdateBuyerWebhook(ctx context.Context, buyerID, webhookURL string) error {
	query := `UPDATE buyers SET webhook_url = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, webhookURL, buyerID)
	if err != nil {
		return fmt.Errorf("failed to update buyer webhook: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrBuyerNotFound
	}

	return nil
}

func (s *Storage) SellerExists(ctx context.Context, sellerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM sellers WHERE id = $1)`

	if err := s.db.GetContext(ctx, &exists, query, sellerID); err != nil {
		return false, fmt.Errorf("failed to check seller: %w", err)
	}

	return exists, nil
}

package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Buyer extends a user with the webhook subscription fields. WebhookURL is
// empty until the buyer registers an endpoint; SecretKey is generated at
// registration and never rotated through the API.
type Buyer struct {
	ID         string    `db:"id"`
	WebhookURL string    `db:"webhook_url"`
	SecretKey  string    `db:"secret_key"`
	CreatedAt  time.Time `db:"created_at"`
}

type Seller struct {
	ID        string    `db:"id"`
	APIKey    string    `db:"api_key"`
	CreatedAt time.Time `db:"created_at"`
}

// BuyerSeller links an authorized buyer to a seller
type BuyerSeller struct {
	BuyerID            string    `db:"buyer_id"`
	SellerID           string    `db:"seller_id"`
	AuthorizationLevel string    `db:"authorization_level"`
	CreatedAt          time.Time `db:"created_at"`
}

type AuthorizationRequest struct {
	ID        string    `db:"id"`
	BuyerID   string    `db:"buyer_id"`
	SellerID  string    `db:"seller_id"`
	Message   string    `db:"message"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Deal struct {
	ID          string    `db:"id"`
	SellerID    string    `db:"seller_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	TotalPrice  float64   `db:"total_price"`
	Status      string    `db:"status"`
	IsPrivate   bool      `db:"is_private"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Item struct {
	ID       string  `db:"id"`
	DealID   string  `db:"deal_id"`
	Name     string  `db:"name"`
	Price    float64 `db:"price"`
	Quantity int     `db:"quantity"`
}

type Discount struct {
	ID          string    `db:"id"`
	DealID      string    `db:"deal_id"`
	Description string    `db:"description"`
	Percentage  float64   `db:"percentage"`
	CreatedAt   time.Time `db:"created_at"`
}

type WebhookDelivery struct {
	ID        string    `db:"id"`
	BuyerID   string    `db:"buyer_id"`
	DealID    string    `db:"deal_id"`
	EventType string    `db:"event_type"`
	Status    string    `db:"status"`
	Payload   []byte    `db:"payload"`
	Signature string    `db:"signature"`
	CreatedAt time.Time `db:"created_at"`
}

package handler

import (
	"log/slog"

	"github.com/ndmanh/marketplace-be/internal/api/auth"
	"github.com/ndmanh/marketplace-be/internal/api/storage"
	"github.com/ndmanh/marketplace-be/internal/webhook"
)

// Gin context keys populated by the auth middleware
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Notifier queues webhook notifications for deal events. Failures never
// surface to the HTTP response.
type Notifier interface {
	QueueDealNotification(buyerID, dealID string, event webhook.EventType)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Storage  *storage.Storage
	Notifier Notifier
	Tokens   *auth.TokenManager
}

package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ndmanh/marketplace-be/internal/webhook"
	"github.com/ndmanh/marketplace-be/internal/worker/domain"
)

// Ledger records the outcome of each delivery attempt. Implementations
// must swallow their own storage failures.
type Ledger interface {
	Record(ctx context.Context, buyerID, dealID string, event webhook.EventType, status webhook.DeliveryStatus, payload []byte, signature string)
}

// Sender performs a single outbound delivery attempt for a notification
// job and records the outcome
type Sender struct {
	client *http.Client
	ledger Ledger
	logger *slog.Logger
}

// NewSender creates a Sender with the given per-request timeout. A hung
// destination server must not hold a worker slot indefinitely.
func NewSender(timeout time.Duration, ledger Ledger, logger *slog.Logger) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Sender{
		client: &http.Client{Timeout: timeout},
		ledger: ledger,
		logger: logger,
	}
}

// Deliver POSTs the job's captured payload bytes to its webhook URL.
//
// Any response from the destination, regardless of status code, counts as
// delivered: a SUCCESS row is recorded and nil is returned. A transport
// failure records a FAILED row and returns a retryable error so the queue
// applies its backoff policy.
func (s *Sender) Deliver(ctx context.Context, job *webhook.Job) error {
	if job.BuyerID == "" {
		return fmt.Errorf("%w: deal %s", domain.ErrMissingBuyerID, job.DealID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.WebhookURL, bytes.NewReader(job.Payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", job.Signature)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Failed to send webhook",
			slog.String("webhook_url", job.WebhookURL),
			slog.String("buyer_id", job.BuyerID),
			slog.Int("attempt", job.Attempt),
			slog.Any("error", err),
		)

		s.ledger.Record(ctx, job.BuyerID, job.DealID, job.Event, webhook.DeliveryStatusFailed, job.Payload, job.Signature)

		return domain.NewRetryableError(fmt.Errorf("failed to send webhook: %w", err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	s.logger.Info("Webhook sent",
		slog.String("webhook_url", job.WebhookURL),
		slog.String("buyer_id", job.BuyerID),
		slog.Int("status", resp.StatusCode),
	)

	s.ledger.Record(ctx, job.BuyerID, job.DealID, job.Event, webhook.DeliveryStatusSuccess, job.Payload, job.Signature)

	return nil
}

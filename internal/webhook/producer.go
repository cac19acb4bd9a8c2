package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrSubjectNotFound is returned by Store implementations when the buyer
// or deal does not exist.
var ErrSubjectNotFound = errors.New("webhook subject not found")

// Endpoint is the buyer-side webhook configuration read at enqueue time.
// Empty WebhookURL or SecretKey means the buyer has not opted in.
type Endpoint struct {
	BuyerID    string
	WebhookURL string
	SecretKey  string
}

// Store provides the read side the producer needs to build a job
type Store interface {
	GetBuyerEndpoint(ctx context.Context, buyerID string) (*Endpoint, error)
	GetDealSnapshot(ctx context.Context, dealID string) (*DealSnapshot, error)
}

// Publisher submits a serialized job to the dispatch queue
type Publisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

// Producer builds signed notification jobs and submits them to the
// dispatch queue
type Producer struct {
	store  Store
	queue  Publisher
	logger *slog.Logger
	retry  RetryPolicy
}

// NewProducer creates a Producer with the given retry policy attached to
// every job it enqueues
func NewProducer(store Store, queue Publisher, retry RetryPolicy, logger *slog.Logger) *Producer {
	return &Producer{
		store:  store,
		queue:  queue,
		logger: logger,
		retry:  retry,
	}
}

// QueueDealNotification queues a webhook notification for a buyer when a
// deal event occurs. It never returns an error: webhook delivery is
// best-effort and must not fail the deal mutation that triggered it, so
// every failure is logged and discarded here.
func (p *Producer) QueueDealNotification(buyerID, dealID string, event EventType) {
	ctx := context.Background()

	if err := p.queueDealNotification(ctx, buyerID, dealID, event); err != nil {
		p.logger.Error("Failed to queue webhook job",
			slog.String("buyer_id", buyerID),
			slog.String("deal_id", dealID),
			slog.String("event", string(event)),
			slog.Any("error", err),
		)
	}
}

func (p *Producer) queueDealNotification(ctx context.Context, buyerID, dealID string, event EventType) error {
	endpoint, err := p.store.GetBuyerEndpoint(ctx, buyerID)
	if err != nil {
		if !errors.Is(err, ErrSubjectNotFound) {
			return fmt.Errorf("failed to load buyer endpoint: %w", err)
		}
		endpoint = nil
	}

	deal, err := p.store.GetDealSnapshot(ctx, dealID)
	if err != nil {
		if !errors.Is(err, ErrSubjectNotFound) {
			return fmt.Errorf("failed to load deal snapshot: %w", err)
		}
		deal = nil
	}

	// A buyer without a webhook URL or secret has not opted in, and a
	// missing deal means there is nothing to notify about. Neither is an
	// error for the caller.
	if endpoint == nil || endpoint.WebhookURL == "" || endpoint.SecretKey == "" || deal == nil {
		p.logger.Error("Invalid webhook data",
			slog.String("buyer_id", buyerID),
			slog.String("deal_id", dealID),
		)
		return nil
	}

	payload := Payload{
		Event:   event,
		Deal:    *deal,
		BuyerID: endpoint.BuyerID,
	}

	signature, body, err := SignPayload(payload, endpoint.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to sign payload: %w", err)
	}

	job := Job{
		Kind:       JobKind,
		BuyerID:    endpoint.BuyerID,
		DealID:     deal.ID,
		Event:      event,
		Payload:    body,
		Signature:  signature,
		WebhookURL: endpoint.WebhookURL,
		Attempt:    1,
		Retry:      p.retry,
	}

	jobBody, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := p.queue.Publish(ctx, jobBody, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	p.logger.Info("Queued webhook job",
		slog.String("buyer_id", buyerID),
		slog.String("deal_id", dealID),
		slog.String("event", string(event)),
	)

	return nil
}

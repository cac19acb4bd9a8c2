package webhook

import (
	"encoding/json"
	"time"
)

// JobKind is the named job type used for webhook notification jobs
const JobKind = "send-webhook"

// BackoffType values accepted in a retry policy
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Backoff describes the delay strategy between retry attempts.
// Delay is in milliseconds on the wire.
type Backoff struct {
	Type  string `json:"type"`
	Delay int64  `json:"delay"`
}

// RetryPolicy is attached to each job at enqueue time, so future
// per-event overrides need no queue-side changes.
type RetryPolicy struct {
	Attempts int     `json:"attempts"`
	Backoff  Backoff `json:"backoff"`
}

// NextDelay returns the delay to apply after the given failed attempt
// (1-based). Fixed backoff always waits the configured delay; exponential
// doubles it with each attempt.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	base := time.Duration(p.Backoff.Delay) * time.Millisecond
	if p.Backoff.Type != BackoffExponential {
		return base
	}

	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(int64(1)<<uint(attempt-1))
}

// DealSnapshot is the subset of deal fields captured into the payload at
// enqueue time. It is never re-fetched at send time, so it may go stale
// relative to the deal's current state if updates race.
type DealSnapshot struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TotalPrice float64 `json:"totalPrice"`
	Status     string  `json:"status"`
}

// Payload is the body POSTed to the buyer's webhook URL
type Payload struct {
	Event   EventType    `json:"event"`
	Deal    DealSnapshot `json:"deal"`
	BuyerID string       `json:"buyerId"`
}

// Job is a notification job as it travels through the dispatch queue.
// Payload holds the exact bytes that were signed at enqueue time; the
// worker sends them unmodified so the receiver verifies what was queued,
// not bytes re-derived fresh.
type Job struct {
	Kind       string          `json:"kind"`
	BuyerID    string          `json:"buyer_id"`
	DealID     string          `json:"deal_id"`
	Event      EventType       `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	Signature  string          `json:"signature"`
	WebhookURL string          `json:"webhook_url"`
	Attempt    int             `json:"attempt"`
	Retry      RetryPolicy     `json:"retry"`
}

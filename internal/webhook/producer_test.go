package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	endpoint    *Endpoint
	endpointErr error
	deal        *DealSnapshot
	dealErr     error
}

func (f *fakeStore) GetBuyerEndpoint(ctx context.Context, buyerID string) (*Endpoint, error) {
	if f.endpointErr != nil {
		return nil, f.endpointErr
	}
	return f.endpoint, nil
}

func (f *fakeStore) GetDealSnapshot(ctx context.Context, dealID string) (*DealSnapshot, error) {
	if f.dealErr != nil {
		return nil, f.dealErr
	}
	return f.deal, nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, body []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 5,
		Backoff:  Backoff{Type: BackoffFixed, Delay: time.Minute.Milliseconds()},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProducer_QueueDealNotification(t *testing.T) {
	store := &fakeStore{
		endpoint: &Endpoint{
			BuyerID:    "B1",
			WebhookURL: "https://x.test/hook",
			SecretKey:  "s3cret",
		},
		deal: &DealSnapshot{
			ID:         "D1",
			Name:       "Widget",
			TotalPrice: 100,
			Status:     "AVAILABLE",
		},
	}
	queue := &fakePublisher{}

	producer := NewProducer(store, queue, testRetryPolicy(), testLogger())
	producer.QueueDealNotification("B1", "D1", EventStatusChange)

	require.Len(t, queue.published, 1)

	var job Job
	require.NoError(t, json.Unmarshal(queue.published[0], &job))

	assert.Equal(t, JobKind, job.Kind)
	assert.Equal(t, "B1", job.BuyerID)
	assert.Equal(t, "D1", job.DealID)
	assert.Equal(t, EventStatusChange, job.Event)
	assert.Equal(t, "https://x.test/hook", job.WebhookURL)
	assert.Equal(t, 1, job.Attempt)
	assert.Equal(t, 5, job.Retry.Attempts)
	assert.Equal(t, BackoffFixed, job.Retry.Backoff.Type)
	assert.Equal(t, int64(60000), job.Retry.Backoff.Delay)

	// The queued signature must verify against the queued payload bytes
	assert.True(t, Verify(job.Payload, "s3cret", job.Signature))

	var payload Payload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, EventStatusChange, payload.Event)
	assert.Equal(t, "B1", payload.BuyerID)
	assert.Equal(t, DealSnapshot{ID: "D1", Name: "Widget", TotalPrice: 100, Status: "AVAILABLE"}, payload.Deal)
}

func TestProducer_QueueDealNotification_OptOut(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{
			name: "buyer without webhook url",
			store: &fakeStore{
				endpoint: &Endpoint{BuyerID: "B1", SecretKey: "s3cret"},
				deal:     &DealSnapshot{ID: "D1"},
			},
		},
		{
			name: "buyer without secret key",
			store: &fakeStore{
				endpoint: &Endpoint{BuyerID: "B1", WebhookURL: "https://x.test/hook"},
				deal:     &DealSnapshot{ID: "D1"},
			},
		},
		{
			name: "buyer not found",
			store: &fakeStore{
				endpointErr: ErrSubjectNotFound,
				deal:        &DealSnapshot{ID: "D1"},
			},
		},
		{
			name: "deal not found",
			store: &fakeStore{
				endpoint: &Endpoint{BuyerID: "B1", WebhookURL: "https://x.test/hook", SecretKey: "s3cret"},
				dealErr:  ErrSubjectNotFound,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &fakePublisher{}
			producer := NewProducer(tt.store, queue, testRetryPolicy(), testLogger())

			producer.QueueDealNotification("B1", "D1", EventDealUpdated)

			assert.Empty(t, queue.published)
		})
	}
}

func TestProducer_QueueDealNotification_SwallowsFailures(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
		queue *fakePublisher
	}{
		{
			name:  "buyer lookup failure",
			store: &fakeStore{endpointErr: errors.New("connection refused")},
			queue: &fakePublisher{},
		},
		{
			name: "deal lookup failure",
			store: &fakeStore{
				endpoint: &Endpoint{BuyerID: "B1", WebhookURL: "https://x.test/hook", SecretKey: "s3cret"},
				dealErr:  errors.New("connection refused"),
			},
			queue: &fakePublisher{},
		},
		{
			name: "publish failure",
			store: &fakeStore{
				endpoint: &Endpoint{BuyerID: "B1", WebhookURL: "https://x.test/hook", SecretKey: "s3cret"},
				deal:     &DealSnapshot{ID: "D1", Name: "Widget", TotalPrice: 100, Status: "AVAILABLE"},
			},
			queue: &fakePublisher{err: errors.New("channel closed")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			producer := NewProducer(tt.store, tt.queue, testRetryPolicy(), testLogger())

			// Must not panic and must not surface anything to the caller
			producer.QueueDealNotification("B1", "D1", EventNewDeal)

			assert.Empty(t, tt.queue.published)
		})
	}
}

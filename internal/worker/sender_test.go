package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ndmanh/marketplace-be/internal/webhook"
	"github.com/ndmanh/marketplace-be/internal/worker/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedDelivery struct {
	BuyerID   string
	DealID    string
	Event     webhook.EventType
	Status    webhook.DeliveryStatus
	Payload   []byte
	Signature string
}

type fakeLedger struct {
	mu      sync.Mutex
	records []recordedDelivery
}

func (f *fakeLedger) Record(ctx context.Context, buyerID, dealID string, event webhook.EventType, status webhook.DeliveryStatus, payload []byte, signature string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedDelivery{
		BuyerID:   buyerID,
		DealID:    dealID,
		Event:     event,
		Status:    status,
		Payload:   payload,
		Signature: signature,
	})
}

func (f *fakeLedger) all() []recordedDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedDelivery(nil), f.records...)
}

func testJob(url string) *webhook.Job {
	payload, _ := json.Marshal(webhook.Payload{
		Event: webhook.EventStatusChange,
		Deal: webhook.DealSnapshot{
			ID:         "D1",
			Name:       "Widget",
			TotalPrice: 100,
			Status:     "AVAILABLE",
		},
		BuyerID: "B1",
	})

	return &webhook.Job{
		Kind:       webhook.JobKind,
		BuyerID:    "B1",
		DealID:     "D1",
		Event:      webhook.EventStatusChange,
		Payload:    payload,
		Signature:  webhook.Sign(payload, "s3cret"),
		WebhookURL: url,
		Attempt:    1,
		Retry: webhook.RetryPolicy{
			Attempts: 3,
			Backoff:  webhook.Backoff{Type: webhook.BackoffFixed, Delay: 10},
		},
	}
}

func TestSender_Deliver_Success(t *testing.T) {
	var (
		gotBody      []byte
		gotSignature string
		gotContent   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Signature")
		gotContent = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ledger := &fakeLedger{}
	sender := NewSender(time.Second, ledger, slog.New(slog.DiscardHandler))

	job := testJob(srv.URL)
	err := sender.Deliver(context.Background(), job)
	require.NoError(t, err)

	// The worker must POST the exact bytes captured at enqueue time
	assert.Equal(t, []byte(job.Payload), gotBody)
	assert.Equal(t, job.Signature, gotSignature)
	assert.Equal(t, "application/json", gotContent)

	// Receiver-side verification of the transmitted body and signature
	assert.True(t, webhook.Verify(gotBody, "s3cret", gotSignature))

	records := ledger.all()
	require.Len(t, records, 1)
	assert.Equal(t, "B1", records[0].BuyerID)
	assert.Equal(t, "D1", records[0].DealID)
	assert.Equal(t, webhook.EventStatusChange, records[0].Event)
	assert.Equal(t, webhook.DeliveryStatusSuccess, records[0].Status)
	assert.Equal(t, job.Signature, records[0].Signature)
}

func TestSender_Deliver_NonTwoHundredIsStillDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ledger := &fakeLedger{}
	sender := NewSender(time.Second, ledger, slog.New(slog.DiscardHandler))

	err := sender.Deliver(context.Background(), testJob(srv.URL))
	require.NoError(t, err)

	records := ledger.all()
	require.Len(t, records, 1)
	assert.Equal(t, webhook.DeliveryStatusSuccess, records[0].Status)
}

func TestSender_Deliver_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	ledger := &fakeLedger{}
	sender := NewSender(time.Second, ledger, slog.New(slog.DiscardHandler))

	err := sender.Deliver(context.Background(), testJob(srv.URL))
	require.Error(t, err)

	var retryable *domain.RetryableError
	assert.True(t, errors.As(err, &retryable))

	records := ledger.all()
	require.Len(t, records, 1)
	assert.Equal(t, webhook.DeliveryStatusFailed, records[0].Status)
}

func TestSender_Deliver_MissingBuyerID(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	ledger := &fakeLedger{}
	sender := NewSender(time.Second, ledger, slog.New(slog.DiscardHandler))

	job := testJob(srv.URL)
	job.BuyerID = ""

	err := sender.Deliver(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingBuyerID))

	// The guard fires before the HTTP call and before any ledger write
	assert.Zero(t, hits)
	assert.Empty(t, ledger.all())
}

func TestSender_Deliver_EachFailedAttemptRecordsOneRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ledger := &fakeLedger{}
	sender := NewSender(time.Second, ledger, slog.New(slog.DiscardHandler))

	job := testJob(srv.URL)

	// Drive the job through its whole retry budget the way the pool would
	for attempt := 1; ; attempt++ {
		job.Attempt = attempt
		err := sender.Deliver(context.Background(), job)
		require.Error(t, err)

		if _, _, retry := nextAttempt(job); !retry {
			break
		}
	}

	records := ledger.all()
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, webhook.DeliveryStatusFailed, r.Status)
	}
}

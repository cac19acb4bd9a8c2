package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/ndmanh/marketplace-be/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorageWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStorageWithDB(sqlx.NewDb(db, "postgres")), mock
}

func TestStorage_GetBuyerEndpoint(t *testing.T) {
	store, mock := newStorageWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "webhook_url", "secret_key"}).
		AddRow("buyer-1", "https://buyer.example/hook", "s3cret")

	mock.ExpectQuery(`SELECT id, webhook_url, secret_key FROM buyers WHERE id = \$1`).
		WithArgs("buyer-1").
		WillReturnRows(rows)

	endpoint, err := store.GetBuyerEndpoint(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, &webhook.Endpoint{
		BuyerID:    "buyer-1",
		WebhookURL: "https://buyer.example/hook",
		SecretKey:  "s3cret",
	}, endpoint)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetBuyerEndpoint_NotFound(t *testing.T) {
	store, mock := newStorageWithMock(t)

	mock.ExpectQuery(`SELECT id, webhook_url, secret_key FROM buyers WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "webhook_url", "secret_key"}))

	_, err := store.GetBuyerEndpoint(context.Background(), "nope")
	assert.ErrorIs(t, err, webhook.ErrSubjectNotFound)
}

func TestStorage_GetDealSnapshot(t *testing.T) {
	store, mock := newStorageWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "total_price", "status"}).
		AddRow("deal-1", "Bulk widgets", 1500.0, "AVAILABLE")

	mock.ExpectQuery(`SELECT id, name, total_price, status FROM deals WHERE id = \$1`).
		WithArgs("deal-1").
		WillReturnRows(rows)

	snapshot, err := store.GetDealSnapshot(context.Background(), "deal-1")
	require.NoError(t, err)
	assert.Equal(t, &webhook.DealSnapshot{
		ID:         "deal-1",
		Name:       "Bulk widgets",
		TotalPrice: 1500.0,
		Status:     "AVAILABLE",
	}, snapshot)
}

func TestStorage_GetDealSnapshot_NotFound(t *testing.T) {
	store, mock := newStorageWithMock(t)

	mock.ExpectQuery(`SELECT id, name, total_price, status FROM deals WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_price", "status"}))

	_, err := store.GetDealSnapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, webhook.ErrSubjectNotFound)
}

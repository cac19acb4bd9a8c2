package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/ndmanh/marketplace-be/internal/api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCursorRoundTrip(t *testing.T) {
	cursor := &storage.DeliveryCursor{
		CreatedAt:  time.Date(2026, 3, 15, 10, 30, 0, 123456789, time.UTC),
		DeliveryID: "delivery-42",
	}

	encoded := EncodeDeliveryCursor(cursor)

	decoded, err := DecodeDeliveryCursor(encoded)
	require.NoError(t, err)
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, cursor.DeliveryID, decoded.DeliveryID)
}

func TestDecodeDeliveryCursor_Empty(t *testing.T) {
	cursor, err := DecodeDeliveryCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeDeliveryCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{
			name:   "not base64",
			cursor: "%%%",
		},
		{
			name:   "missing separator",
			cursor: base64.StdEncoding.EncodeToString([]byte("no-separator-here")),
		},
		{
			name:   "non-numeric timestamp",
			cursor: base64.StdEncoding.EncodeToString([]byte("abc|delivery-1")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDeliveryCursor(tt.cursor)
			assert.Error(t, err)
		})
	}
}

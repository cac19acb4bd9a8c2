package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_Deterministic(t *testing.T) {
	payload := []byte(`{"event":"STATUS_CHANGE","deal":{"id":"D1"}}`)

	first := Sign(payload, "s3cret")
	second := Sign(payload, "s3cret")

	assert.Equal(t, first, second)
	assert.Regexp(t, "^[0-9a-f]{64}$", first)
}

func TestSign_KnownVector(t *testing.T) {
	payload := Payload{
		Event: EventStatusChange,
		Deal: DealSnapshot{
			ID:         "D1",
			Name:       "Widget",
			TotalPrice: 100,
			Status:     "AVAILABLE",
		},
		BuyerID: "B1",
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign(body, "s3cret"))
}

func TestSign_DifferentInputs(t *testing.T) {
	payload := []byte(`{"event":"NEW_DEAL"}`)

	assert.NotEqual(t, Sign(payload, "key-a"), Sign(payload, "key-b"))
	assert.NotEqual(t, Sign(payload, "key-a"), Sign([]byte(`{"event":"DEAL_UPDATED"}`), "key-a"))
}

func TestSignPayload_ReturnsSignedBytes(t *testing.T) {
	payload := Payload{
		Event: EventNewDeal,
		Deal: DealSnapshot{
			ID:         "deal-1",
			Name:       "Bulk Steel",
			TotalPrice: 2500.50,
			Status:     "AVAILABLE",
		},
		BuyerID: "buyer-1",
	}

	signature, body, err := SignPayload(payload, "secretKey")
	require.NoError(t, err)

	// The signature must cover exactly the returned bytes
	assert.Equal(t, Sign(body, "secretKey"), signature)

	var decoded Payload
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestVerify_RoundTrip(t *testing.T) {
	signature, body, err := SignPayload(Payload{
		Event:   EventPriceChange,
		Deal:    DealSnapshot{ID: "D1", Name: "Widget", TotalPrice: 90, Status: "AVAILABLE"},
		BuyerID: "B1",
	}, "s3cret")
	require.NoError(t, err)

	assert.True(t, Verify(body, "s3cret", signature))
	assert.False(t, Verify(body, "wrong-secret", signature))
	assert.False(t, Verify(append(body, ' '), "s3cret", signature))
	assert.False(t, Verify(body, "s3cret", "deadbeef"))
}

func TestPayload_WireFormat(t *testing.T) {
	body, err := json.Marshal(Payload{
		Event: EventStatusChange,
		Deal: DealSnapshot{
			ID:         "D1",
			Name:       "Widget",
			TotalPrice: 100,
			Status:     "AVAILABLE",
		},
		BuyerID: "B1",
	})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))

	assert.Contains(t, raw, "event")
	assert.Contains(t, raw, "deal")
	assert.Contains(t, raw, "buyerId")

	var deal map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["deal"], &deal))
	assert.Contains(t, deal, "id")
	assert.Contains(t, deal, "name")
	assert.Contains(t, deal, "totalPrice")
	assert.Contains(t, deal, "status")
}

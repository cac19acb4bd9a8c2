package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sign computes the lowercase hex HMAC-SHA256 digest of payload keyed by
// secret. Identical bytes and key always produce identical digests.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPayload serializes v to JSON and signs the resulting bytes. It
// returns both the signature and the serialized bytes so callers can queue
// exactly what was signed.
func SignPayload(v any, secret string) (signature string, body []byte, err error) {
	body, err = json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return Sign(body, secret), body, nil
}

// Verify reports whether signature matches the HMAC-SHA256 of payload
// under secret. Comparison is constant-time.
func Verify(payload []byte, secret, signature string) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}

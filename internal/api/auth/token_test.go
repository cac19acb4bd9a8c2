package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	mgr := NewTokenManager("test-secret", time.Hour)

	token, err := mgr.Issue("user-123", "BUYER")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "BUYER", claims.Role)
}

func TestTokenManager_Parse_Invalid(t *testing.T) {
	mgr := NewTokenManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "garbage",
			token: "not-a-token",
		},
		{
			name: "wrong secret",
			token: func() string {
				other := NewTokenManager("other-secret", time.Hour)
				tok, _ := other.Issue("user-123", "BUYER")
				return tok
			}(),
		},
		{
			name: "expired",
			token: func() string {
				expired := NewTokenManager("test-secret", -time.Minute)
				tok, _ := expired.Issue("user-123", "BUYER")
				return tok
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

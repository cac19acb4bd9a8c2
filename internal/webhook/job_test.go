package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_NextDelay(t *testing.T) {
	tests := []struct {
		name     string
		policy   RetryPolicy
		attempt  int
		expected time.Duration
	}{
		{
			name: "fixed backoff is constant",
			policy: RetryPolicy{
				Attempts: 5,
				Backoff:  Backoff{Type: BackoffFixed, Delay: 60000},
			},
			attempt:  1,
			expected: time.Minute,
		},
		{
			name: "fixed backoff ignores attempt number",
			policy: RetryPolicy{
				Attempts: 5,
				Backoff:  Backoff{Type: BackoffFixed, Delay: 60000},
			},
			attempt:  4,
			expected: time.Minute,
		},
		{
			name: "exponential backoff first attempt",
			policy: RetryPolicy{
				Attempts: 5,
				Backoff:  Backoff{Type: BackoffExponential, Delay: 1000},
			},
			attempt:  1,
			expected: time.Second,
		},
		{
			name: "exponential backoff doubles",
			policy: RetryPolicy{
				Attempts: 5,
				Backoff:  Backoff{Type: BackoffExponential, Delay: 1000},
			},
			attempt:  3,
			expected: 4 * time.Second,
		},
		{
			name: "exponential backoff clamps attempt below one",
			policy: RetryPolicy{
				Attempts: 5,
				Backoff:  Backoff{Type: BackoffExponential, Delay: 1000},
			},
			attempt:  0,
			expected: time.Second,
		},
		{
			name: "unknown type behaves as fixed",
			policy: RetryPolicy{
				Attempts: 3,
				Backoff:  Backoff{Type: "", Delay: 500},
			},
			attempt:  2,
			expected: 500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.policy.NextDelay(tt.attempt))
		})
	}
}

package domain

import "errors"

// ErrMissingBuyerID is returned when a job carries no buyer id. The
// attempt fails before any HTTP call is made.
var ErrMissingBuyerID = errors.New("buyer id is required to send webhook")

// RetryableError wraps transient delivery failures that should consume a
// retry attempt
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

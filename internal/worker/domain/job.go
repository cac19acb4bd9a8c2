package domain

import (
	"github.com/ndmanh/marketplace-be/internal/webhook"
)

// JobMessage pairs a decoded notification job with the broker delivery
// tag needed to ACK or NACK it
type JobMessage struct {
	Job         *webhook.Job
	DeliveryTag uint64
}

package domain

import (
	"errors"

	"github.com/ndmanh/marketplace-be/internal/webhook"
)

const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
)

const (
	DealStatusAvailable = "AVAILABLE"
	DealStatusSold      = "SOLD"
)

const (
	AccessRequestPending  = "PENDING"
	AccessRequestApproved = "APPROVED"
	AccessRequestRejected = "REJECTED"
)

const (
	AuthorizationViewOnly = "VIEW_ONLY"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrDealNotFound          = errors.New("deal not found")
	ErrBuyerNotFound         = errors.New("buyer not found")
	ErrAccessRequestNotFound = errors.New("access request not found")
	ErrNotAuthorized         = errors.New("buyer is not authorized by this seller")
)

// DealChange captures the fields relevant for event classification before
// and after a deal update.
type DealChange struct {
	TotalPriceChanged bool
	StatusChanged     bool
	DiscountAdded     bool
}

// ClassifyDealEvent maps a deal update onto the most specific webhook event
// type. Price changes take precedence over status changes, which take
// precedence over discount additions.
func ClassifyDealEvent(change DealChange) webhook.EventType {
	switch {
	case change.TotalPriceChanged:
		return webhook.EventPriceChange
	case change.StatusChanged:
		return webhook.EventStatusChange
	case change.DiscountAdded:
		return webhook.EventDiscountAdded
	default:
		return webhook.EventDealUpdated
	}
}

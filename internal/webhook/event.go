package webhook

// EventType identifies the deal mutation that triggered a notification
type EventType string

const (
	EventNewDeal       EventType = "NEW_DEAL"
	EventPriceChange   EventType = "PRICE_CHANGE"
	EventStatusChange  EventType = "STATUS_CHANGE"
	EventDiscountAdded EventType = "DISCOUNT_ADDED"
	EventDealUpdated   EventType = "DEAL_UPDATED"
)

// DeliveryStatus is the recorded outcome of a single delivery attempt
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "PENDING"
	DeliveryStatusSuccess DeliveryStatus = "SUCCESS"
	DeliveryStatusFailed  DeliveryStatus = "FAILED"
)

package dto

type SetWebhookRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required,url"`
}

type CreateAccessRequestRequest struct {
	SellerID string `json:"seller_id" binding:"required,uuid"`
	Message  string `json:"message"`
}

type AccessRequestDTO struct {
	ID        string `json:"id"`
	BuyerID   string `json:"buyer_id"`
	SellerID  string `json:"seller_id"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type ResolveAccessRequestRequest struct {
	Approve            bool   `json:"approve"`
	AuthorizationLevel string `json:"authorization_level" binding:"omitempty,oneof=VIEW_ONLY"`
}

type ListDeliveriesRequest struct {
	EventType string `form:"event_type"`
	Status    string `form:"status"`
	PageSize  int    `form:"page_size"`
	Cursor    string `form:"cursor"`
}

type DeliveryDTO struct {
	ID        string `json:"id"`
	DealID    string `json:"deal_id"`
	EventType string `json:"event_type"`
	Status    string `json:"status"`
	Signature string `json:"signature"`
	CreatedAt string `json:"created_at"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryDTO `json:"deliveries"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

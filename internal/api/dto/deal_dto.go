package dto

type CreateItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
}

type CreateDiscountRequest struct {
	Description string  `json:"description"`
	Percentage  float64 `json:"percentage" binding:"required,gt=0,lte=100"`
}

type CreateDealRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	IsPrivate   bool                   `json:"is_private"`
	Items       []CreateItemRequest    `json:"items" binding:"required,min=1,dive"`
	Discount    *CreateDiscountRequest `json:"discount"`
}

type UpdateDealRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Status      *string                `json:"status" binding:"omitempty,oneof=AVAILABLE SOLD"`
	TotalPrice  *float64               `json:"total_price" binding:"omitempty,gt=0"`
	Discount    *CreateDiscountRequest `json:"discount"`
}

type ItemDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type DiscountDTO struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Percentage  float64 `json:"percentage"`
}

type DealDTO struct {
	ID          string       `json:"id"`
	SellerID    string       `json:"seller_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	TotalPrice  float64      `json:"total_price"`
	Status      string       `json:"status"`
	IsPrivate   bool         `json:"is_private"`
	Items       []ItemDTO    `json:"items,omitempty"`
	Discount    *DiscountDTO `json:"discount,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

type ListDealsResponse struct {
	Deals []DealDTO `json:"deals"`
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ndmanh/marketplace-be/internal/api/domain"
	"github.com/ndmanh/marketplace-be/internal/api/dto"
	"github.com/ndmanh/marketplace-be/internal/api/model"
	"github.com/ndmanh/marketplace-be/internal/api/storage"
	"github.com/ndmanh/marketplace-be/internal/webhook"
)

// SellerHandler handles seller-facing routes
type SellerHandler struct {
	logger   *slog.Logger
	storage  *storage.Storage
	notifier Notifier
}

func NewSellerHandler(deps *Dependencies) *SellerHandler {
	return &SellerHandler{
		logger:   deps.Logger,
		storage:  deps.Storage,
		notifier: deps.Notifier,
	}
}

// CreateDeal handles POST /api/v1/sellers/deals
// The total price is derived from the items; clients cannot set it directly
// at creation time.
func (h *SellerHandler) CreateDeal(c *gin.Context) {
	sellerID := c.GetString(ContextUserID)

	var req dto.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	now := time.Now()
	deal := model.Deal{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.DealStatusAvailable,
		IsPrivate:   req.IsPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items := make([]model.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.Item{
			ID:       uuid.New().String(),
			DealID:   deal.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
		deal.TotalPrice += item.Price * float64(item.Quantity)
	}

	var discount *model.Discount
	if req.Discount != nil {
		discount = &model.Discount{
			ID:          uuid.New().String(),
			DealID:      deal.ID,
			Description: req.Discount.Description,
			Percentage:  req.Discount.Percentage,
			CreatedAt:   now,
		}
	}

	if err := h.storage.CreateDeal(c.Request.Context(), &deal, items, discount); err != nil {
		h.logger.Error("Failed to create deal", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create deal",
		})
		return
	}

	h.logger.Info("Deal created",
		slog.String("deal_id", deal.ID),
		slog.String("seller_id", sellerID),
		slog.Float64("total_price", deal.TotalPrice),
	)

	h.fanOut(c, sellerID, deal.ID, webhook.EventNewDeal)

	c.JSON(http.StatusCreated, toDealResponse(&deal, items, discount))
}

// UpdateDeal handles PUT /api/v1/sellers/deals/:deal_id
// The event type is classified against the pre-update snapshot before
// the changes are persisted.
func (h *SellerHandler) UpdateDeal(c *gin.Context) {
	sellerID := c.GetString(ContextUserID)

	dealID := c.Param("deal_id")
	if _, err := uuid.Parse(dealID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "deal_id must be a valid UUID",
		})
		return
	}

	var req dto.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	deal, err := h.storage.GetDealByID(c.Request.Context(), dealID)
	if err != nil {
		if errors.Is(err, domain.ErrDealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Deal not found",
			})
			return
		}
		h.logger.Error("Failed to load deal", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update deal",
		})
		return
	}

	if deal.SellerID != sellerID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Deal not found",
		})
		return
	}

	change := domain.DealChange{}

	if req.Name != nil {
		deal.Name = *req.Name
	}
	if req.Description != nil {
		deal.Description = *req.Description
	}
	if req.TotalPrice != nil && *req.TotalPrice != deal.TotalPrice {
		deal.TotalPrice = *req.TotalPrice
		change.TotalPriceChanged = true
	}
	if req.Status != nil && *req.Status != deal.Status {
		deal.Status = *req.Status
		change.StatusChanged = true
	}

	var discount *model.Discount
	if req.Discount != nil {
		discount = &model.Discount{
			ID:          uuid.New().String(),
			DealID:      deal.ID,
			Description: req.Discount.Description,
			Percentage:  req.Discount.Percentage,
			CreatedAt:   time.Now(),
		}
		change.DiscountAdded = true
	}

	deal.UpdatedAt = time.Now()

	if err := h.storage.UpdateDeal(c.Request.Context(), deal, discount); err != nil {
		if errors.Is(err, domain.ErrDealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Deal not found",
			})
			return
		}
		h.logger.Error("Failed to update deal", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update deal",
		})
		return
	}

	event := domain.ClassifyDealEvent(change)

	h.logger.Info("Deal updated",
		slog.String("deal_id", deal.ID),
		slog.String("seller_id", sellerID),
		slog.String("event", string(event)),
	)

	h.fanOut(c, sellerID, deal.ID, event)

	items, err := h.storage.GetDealItems(c.Request.Context(), deal.ID)
	if err != nil {
		h.logger.Error("Failed to load deal items", slog.String("error", err.Error()))
		items = nil
	}

	c.JSON(http.StatusOK, toDealResponse(deal, items, discount))
}

// ResolveAccessRequest handles POST /api/v1/sellers/access-requests/:buyer_id
func (h *SellerHandler) ResolveAccessRequest(c *gin.Context) {
	sellerID := c.GetString(ContextUserID)

	buyerID := c.Param("buyer_id")
	if _, err := uuid.Parse(buyerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "buyer_id must be a valid UUID",
		})
		return
	}

	var req dto.ResolveAccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	level := req.AuthorizationLevel
	if level == "" {
		level = domain.AuthorizationViewOnly
	}

	accessRequest, err := h.storage.GetPendingAccessRequest(c.Request.Context(), buyerID, sellerID)
	if err != nil {
		if errors.Is(err, domain.ErrAccessRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No pending access request for this buyer",
			})
			return
		}
		h.logger.Error("Failed to load access request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve access request",
		})
		return
	}

	if err := h.storage.ResolveAccessRequest(c.Request.Context(), accessRequest, req.Approve, level); err != nil {
		if errors.Is(err, domain.ErrAccessRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No pending access request for this buyer",
			})
			return
		}
		h.logger.Error("Failed to resolve access request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve access request",
		})
		return
	}

	status := domain.AccessRequestRejected
	if req.Approve {
		status = domain.AccessRequestApproved
	}

	h.logger.Info("Access request resolved",
		slog.String("buyer_id", buyerID),
		slog.String("seller_id", sellerID),
		slog.String("status", status),
	)

	c.JSON(http.StatusOK, dto.AccessRequestDTO{
		ID:        accessRequest.ID,
		BuyerID:   accessRequest.BuyerID,
		SellerID:  accessRequest.SellerID,
		Status:    status,
		CreatedAt: accessRequest.CreatedAt.Format(time.RFC3339),
	})
}

// RevokeAuthorization handles DELETE /api/v1/sellers/authorizations/:buyer_id
func (h *SellerHandler) RevokeAuthorization(c *gin.Context) {
	sellerID := c.GetString(ContextUserID)

	buyerID := c.Param("buyer_id")
	if _, err := uuid.Parse(buyerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "buyer_id must be a valid UUID",
		})
		return
	}

	if err := h.storage.DeleteAuthorization(c.Request.Context(), buyerID, sellerID); err != nil {
		if errors.Is(err, domain.ErrNotAuthorized) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Buyer is not authorized",
			})
			return
		}
		h.logger.Error("Failed to revoke authorization", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to revoke authorization",
		})
		return
	}

	h.logger.Info("Authorization revoked",
		slog.String("buyer_id", buyerID),
		slog.String("seller_id", sellerID),
	)

	c.Status(http.StatusNoContent)
}

// fanOut queues one notification per authorized buyer. The producer skips
// buyers without a webhook endpoint and swallows its own failures, so the
// mutation response never depends on this.
func (h *SellerHandler) fanOut(c *gin.Context, sellerID, dealID string, event webhook.EventType) {
	buyerIDs, err := h.storage.ListAuthorizedBuyerIDs(c.Request.Context(), sellerID)
	if err != nil {
		h.logger.Error("Failed to list buyers for fan-out",
			slog.String("seller_id", sellerID),
			slog.String("deal_id", dealID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, buyerID := range buyerIDs {
		h.notifier.QueueDealNotification(buyerID, dealID, event)
	}
}

func toDealResponse(deal *model.Deal, items []model.Item, discount *model.Discount) dto.DealDTO {
	resp := dto.DealDTO{
		ID:          deal.ID,
		SellerID:    deal.SellerID,
		Name:        deal.Name,
		Description: deal.Description,
		TotalPrice:  deal.TotalPrice,
		Status:      deal.Status,
		IsPrivate:   deal.IsPrivate,
		CreatedAt:   deal.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   deal.UpdatedAt.Format(time.RFC3339),
	}

	resp.Items = make([]dto.ItemDTO, len(items))
	for i, item := range items {
		resp.Items[i] = dto.ItemDTO{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	if discount != nil {
		resp.Discount = &dto.DiscountDTO{
			ID:          discount.ID,
			Description: discount.Description,
			Percentage:  discount.Percentage,
		}
	}

	return resp
}

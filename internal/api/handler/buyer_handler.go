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
)

// BuyerHandler handles buyer-facing routes
type BuyerHandler struct {
	logger  *slog.Logger
	storage *storage.Storage
}

func NewBuyerHandler(deps *Dependencies) *BuyerHandler {
	return &BuyerHandler{
		logger:  deps.Logger,
		storage: deps.Storage,
	}
}

// ListDeals handles GET /api/v1/buyers/deals
// Returns public deals plus private deals from sellers that authorized
// the buyer.
func (h *BuyerHandler) ListDeals(c *gin.Context) {
	buyerID := c.GetString(ContextUserID)

	deals, err := h.storage.ListVisibleDeals(c.Request.Context(), buyerID)
	if err != nil {
		h.logger.Error("Failed to list deals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list deals",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ListDealsResponse{Deals: toDealDTOs(deals)})
}

// ListPrivateDeals handles GET /api/v1/buyers/deals/private
func (h *BuyerHandler) ListPrivateDeals(c *gin.Context) {
	buyerID := c.GetString(ContextUserID)

	deals, err := h.storage.ListPrivateDeals(c.Request.Context(), buyerID)
	if err != nil {
		h.logger.Error("Failed to list private deals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list deals",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ListDealsResponse{Deals: toDealDTOs(deals)})
}

// ListSellerDeals handles GET /api/v1/buyers/sellers/:seller_id/deals
func (h *BuyerHandler) ListSellerDeals(c *gin.Context) {
	buyerID := c.GetString(ContextUserID)

	sellerID := c.Param("seller_id")
	if _, err := uuid.Parse(sellerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "seller_id must be a valid UUID",
		})
		return
	}

	exists, err := h.storage.SellerExists(c.Request.Context(), sellerID)
	if err != nil {
		h.logger.Error("Failed to check seller", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list deals",
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Seller not found",
		})
		return
	}

	deals, err := h.storage.ListSellerDealsForBuyer(c.Request.Context(), buyerID, sellerID)
	if err != nil {
		h.logger.Error("Failed to list seller deals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list deals",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ListDealsResponse{Deals: toDealDTOs(deals)})
}

// SetWebhook handles PUT /api/v1/buyers/webhook
// The URL is validated by binding; an empty body is rejected, so buyers
// opt out by never registering rather than by clearing the URL.
func (h *BuyerHandler) SetWebhook(c *gin.Context) {
	buyerID := c.GetString(ContextUserID)

	var req dto.SetWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid webhook URL", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "webhook_url must be a valid URL",
		})
		return
	}

	if err := h.storage.UpdateBuyerWebhook(c.Request.Context(), buyerID, req.WebhookURL); err != nil {
		if errors.Is(err, domain.ErrBuyerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Buyer not found",
			})
			return
		}
		h.logger.Error("Failed to update webhook", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update webhook",
		})
		return
	}

	h.logger.Info("Webhook URL updated",
		slog.String("buyer_id", buyerID),
	)

	c.JSON(http.StatusOK, gin.H{
		"webhook_url": req.WebhookURL,
	})
}

// CreateAccessRequest handles POST /api/v1/buyers/access-requests
func (h *BuyerHandler) CreateAccessRequest(c *gin.Context) {
	buyerID := c.GetString(ContextUserID)

	var req dto.CreateAccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	exists, err := h.storage.SellerExists(c.Request.Context(), req.SellerID)
	if err != nil {
		h.logger.Error("Failed to check seller", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create access request",
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Seller not found",
		})
		return
	}

	pending, err := h.storage.HasPendingAccessRequest(c.Request.Context(), buyerID, req.SellerID)
	if err != nil {
		h.logger.Error("Failed to check pending request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create access request",
		})
		return
	}
	if pending {
		c.JSON(http.StatusConflict, gin.H{
			"error": "A pending access request already exists",
		})
		return
	}

	accessRequest := model.AuthorizationRequest{
		ID:        uuid.New().String(),
		BuyerID:   buyerID,
		SellerID:  req.SellerID,
		Message:   req.Message,
		Status:    domain.AccessRequestPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.storage.CreateAccessRequest(c.Request.Context(), &accessRequest); err != nil {
		h.logger.Error("Failed to create access request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create access request",
		})
		return
	}

	c.JSON(http.StatusCreated, dto.AccessRequestDTO{
		ID:        accessRequest.ID,
		BuyerID:   accessRequest.BuyerID,
		SellerID:  accessRequest.SellerID,
		Message:   accessRequest.Message,
		Status:    accessRequest.Status,
		CreatedAt: accessRequest.CreatedAt.Format(time.RFC3339),
	})
}

// ListDeliveries handles GET /api/v1/buyers/deliveries
// Lists the buyer's webhook delivery history with cursor pagination
func (h *BuyerHandler) ListDeliveries(c *gin.Context) {
	buyerID := c.GetString(ContextUserID)

	var req dto.ListDeliveriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeDeliveryCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := storage.DeliveryFilter{
		BuyerID:   buyerID,
		EventType: req.EventType,
		Status:    req.Status,
		PageSize:  req.PageSize,
		Cursor:    cursor,
	}

	deliveries, err := h.storage.ListDeliveries(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list deliveries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list deliveries",
		})
		return
	}

	hasMore := len(deliveries) > req.PageSize
	if hasMore {
		deliveries = deliveries[:req.PageSize]
	}

	deliveryResponse := make([]dto.DeliveryDTO, len(deliveries))
	for i, d := range deliveries {
		deliveryResponse[i] = dto.DeliveryDTO{
			ID:        d.ID,
			DealID:    d.DealID,
			EventType: d.EventType,
			Status:    d.Status,
			Signature: d.Signature,
			CreatedAt: d.CreatedAt.Format(time.RFC3339),
		}
	}

	var nextCursor string
	if hasMore {
		last := deliveries[len(deliveries)-1]
		nextCursor = EncodeDeliveryCursor(&storage.DeliveryCursor{
			CreatedAt:  last.CreatedAt,
			DeliveryID: last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListDeliveriesResponse{
		Deliveries: deliveryResponse,
		NextCursor: nextCursor,
	})
}

func toDealDTOs(deals []model.Deal) []dto.DealDTO {
	out := make([]dto.DealDTO, len(deals))
	for i, d := range deals {
		out[i] = dto.DealDTO{
			ID:          d.ID,
			SellerID:    d.SellerID,
			Name:        d.Name,
			Description: d.Description,
			TotalPrice:  d.TotalPrice,
			Status:      d.Status,
			IsPrivate:   d.IsPrivate,
			CreatedAt:   d.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   d.UpdatedAt.Format(time.RFC3339),
		}
	}
	return out
}

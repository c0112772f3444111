package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

// CartHandler serves cart lifecycle, cart resolution and stock operations
type CartHandler struct {
	carts  services.CartService
	logger *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts services.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// CreateCart godoc
// @Summary Create an anonymous cart
// @Tags carts
// @Produce json
// @Success 201 {object} models.SuccessResponse
// @Router /storefront/carts [post]
func (h *CartHandler) CreateCart(c *gin.Context) {
	cart, err := h.carts.CreateCart(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "Failed to create cart")
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: cart})
}

// GetCartItems godoc
// @Summary Resolve cart line items
// @Description Returns the cart's lines oldest first, each with its stored unit price. An unknown or malformed cart id yields an empty list.
// @Tags carts
// @Produce json
// @Param cartId path string true "Cart ID"
// @Success 200 {object} models.CartItemsResponse
// @Router /storefront/carts/{cartId}/items [get]
func (h *CartHandler) GetCartItems(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		c.JSON(http.StatusOK, models.CartItemsResponse{Success: true, Data: []models.CartItemView{}})
		return
	}

	views, err := h.carts.ResolveCartItems(c.Request.Context(), cartID)
	if err != nil {
		h.internalError(c, err, "Failed to resolve cart items")
		return
	}
	c.JSON(http.StatusOK, models.CartItemsResponse{Success: true, Data: views})
}

// AddItem godoc
// @Summary Add a line item to a cart
// @Description Exactly one of variantId/bundleId must be set. The unit price is snapshotted from the catalog at insert time.
// @Tags carts
// @Accept json
// @Produce json
// @Param cartId path string true "Cart ID"
// @Param request body models.AddCartItemRequest true "Item to add"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /storefront/carts/{cartId}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.validationError(c, "cartId", "invalid cart id")
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, "", err.Error())
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), cartID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemReference):
			h.validationError(c, "variantId", err.Error())
		case errors.Is(err, services.ErrSizeRequired):
			h.validationError(c, "sizeId", err.Error())
		case errors.Is(err, services.ErrCartNotFound), errors.Is(err, services.ErrItemNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success:   false,
				Error:     models.Error{Code: "NOT_FOUND", Message: err.Error()},
				RequestID: c.GetString("requestID"),
			})
		default:
			h.internalError(c, err, "Failed to add cart item")
		}
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: item})
}

// UpdateItem godoc
// @Summary Change a line item quantity
// @Tags carts
// @Accept json
// @Produce json
// @Param cartId path string true "Cart ID"
// @Param itemId path int true "Cart item ID"
// @Param request body models.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/carts/{cartId}/items/{itemId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.validationError(c, "cartId", "invalid cart id")
		return
	}
	itemID, ok := parseID(c.Param("itemId"))
	if !ok {
		h.validationError(c, "itemId", "invalid item id")
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, "quantity", err.Error())
		return
	}

	updated, err := h.carts.UpdateItemQuantity(c.Request.Context(), cartID, itemID, req.Quantity)
	if err != nil {
		h.internalError(c, err, "Failed to update cart item")
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "NOT_FOUND", Message: "cart item not found"},
			RequestID: c.GetString("requestID"),
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// RemoveItem godoc
// @Summary Remove a line item from a cart
// @Tags carts
// @Produce json
// @Param cartId path string true "Cart ID"
// @Param itemId path int true "Cart item ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/carts/{cartId}/items/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.validationError(c, "cartId", "invalid cart id")
		return
	}
	itemID, ok := parseID(c.Param("itemId"))
	if !ok {
		h.validationError(c, "itemId", "invalid item id")
		return
	}

	removed, err := h.carts.RemoveItem(c.Request.Context(), cartID, itemID)
	if err != nil {
		h.internalError(c, err, "Failed to remove cart item")
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "NOT_FOUND", Message: "cart item not found"},
			RequestID: c.GetString("requestID"),
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// StockCheck godoc
// @Summary Advisory stock check for cart items
// @Description Pure read: no locks or reservations. Unknown ids are absent from the results.
// @Tags carts
// @Accept json
// @Produce json
// @Param request body models.StockCheckRequest true "Cart item ids"
// @Success 200 {object} models.StockCheckResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /storefront/cart/stock-check [post]
func (h *CartHandler) StockCheck(c *gin.Context) {
	var req models.StockCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, "cartItemIds", err.Error())
		return
	}

	result, err := h.carts.ValidateStockBatch(c.Request.Context(), req.CartItemIDs)
	if err != nil {
		h.internalError(c, err, "Failed to check stock")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CommitStock godoc
// @Summary Atomically deduct stock for a cart
// @Description Applies all deductions in one transaction with conditional decrements. On shortfall nothing is deducted and the limiting items are returned.
// @Tags carts
// @Produce json
// @Param cartId path string true "Cart ID"
// @Success 200 {object} models.StockCommitResponse
// @Router /storefront/carts/{cartId}/commit-stock [post]
func (h *CartHandler) CommitStock(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.validationError(c, "cartId", "invalid cart id")
		return
	}

	result, err := h.carts.CommitStock(c.Request.Context(), cartID)
	if err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success:   false,
				Error:     models.Error{Code: "NOT_FOUND", Message: err.Error()},
				RequestID: c.GetString("requestID"),
			})
			return
		}
		h.internalError(c, err, "Failed to commit stock")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) validationError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Field:   field,
		},
		RequestID: c.GetString("requestID"),
	})
}

func (h *CartHandler) internalError(c *gin.Context, err error, message string) {
	h.logger.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: message,
		},
		RequestID: c.GetString("requestID"),
	})
}

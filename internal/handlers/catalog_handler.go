package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

// CatalogHandler serves storefront item resolution
type CatalogHandler struct {
	catalog services.CatalogService
	logger  *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog services.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ResolveItem godoc
// @Summary Resolve a storefront item
// @Description Resolves an id against products first, then bundles. Returns null data when neither matches.
// @Tags storefront
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.ItemViewResponse
// @Router /storefront/items/{id} [get]
func (h *CatalogHandler) ResolveItem(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		// Malformed ids resolve to nothing, same as unknown ids
		c.JSON(http.StatusOK, models.ItemViewResponse{Success: true, Data: nil})
		return
	}

	view, err := h.catalog.ResolveItem(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err, "Failed to resolve item")
		return
	}
	c.JSON(http.StatusOK, models.ItemViewResponse{Success: true, Data: view})
}

// ResolveProduct godoc
// @Summary Resolve a product view
// @Tags storefront
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Router /storefront/products/{id} [get]
func (h *CatalogHandler) ResolveProduct(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: nil})
		return
	}

	view, err := h.catalog.ResolveProduct(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err, "Failed to resolve product")
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: nil})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: view})
}

// ResolveBundle godoc
// @Summary Resolve a bundle view
// @Tags storefront
// @Produce json
// @Param id path int true "Bundle ID"
// @Success 200 {object} models.SuccessResponse
// @Router /storefront/bundles/{id} [get]
func (h *CatalogHandler) ResolveBundle(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: nil})
		return
	}

	view, err := h.catalog.ResolveBundle(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err, "Failed to resolve bundle")
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: nil})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: view})
}

func (h *CatalogHandler) internalError(c *gin.Context, err error, message string) {
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

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

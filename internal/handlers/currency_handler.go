package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/currency"
	"catalog-service/internal/models"
)

// CurrencyHandler serves exchange-rate lookups for storefront pricing
type CurrencyHandler struct {
	rates  *currency.RateProvider
	logger *logrus.Logger
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(rates *currency.RateProvider, logger *logrus.Logger) *CurrencyHandler {
	return &CurrencyHandler{rates: rates, logger: logger}
}

// GetRates godoc
// @Summary Exchange rates for a base currency
// @Tags currency
// @Produce json
// @Param base query string false "Base currency" default(USD)
// @Success 200 {object} models.SuccessResponse
// @Router /storefront/currency/rates [get]
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	base := c.DefaultQuery("base", "USD")

	rates, err := h.rates.GetRates(c.Request.Context(), base)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch exchange rates")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "RATES_UNAVAILABLE", Message: "exchange rates are currently unavailable"},
			RequestID: c.GetString("requestID"),
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: rates})
}

// Convert godoc
// @Summary Convert an amount between currencies
// @Tags currency
// @Produce json
// @Param from query string true "Source currency"
// @Param to query string true "Target currency"
// @Param amount query number true "Amount to convert"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /storefront/currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	amountRaw := c.Query("amount")
	if from == "" || to == "" || amountRaw == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "VALIDATION_ERROR", Message: "from, to and amount are required"},
			RequestID: c.GetString("requestID"),
		})
		return
	}
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "VALIDATION_ERROR", Message: "amount must be a number", Field: "amount"},
			RequestID: c.GetString("requestID"),
		})
		return
	}

	converted, err := h.rates.Convert(c.Request.Context(), from, to, amount)
	if err != nil {
		h.logger.WithError(err).Error("Failed to convert currency")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "RATES_UNAVAILABLE", Message: "exchange rates are currently unavailable"},
			RequestID: c.GetString("requestID"),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: gin.H{
		"from":      from,
		"to":        to,
		"amount":    amount,
		"converted": converted,
	}})
}

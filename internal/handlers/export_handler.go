package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

// ExportHandler serves the denormalized catalog spreadsheet
type ExportHandler struct {
	catalog services.CatalogService
	logger  *logrus.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(catalog services.CatalogService, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{catalog: catalog, logger: logger}
}

var exportHeaders = []string{
	"Product ID", "Product Name", "Base Price",
	"Variant ID", "Variant SKU", "Color", "Size", "Stock",
}

// ExportCatalog godoc
// @Summary Export the catalog as a spreadsheet
// @Description One row per (product, variant, size) with current stock.
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /export/catalog.xlsx [get]
func (h *ExportHandler) ExportCatalog(c *gin.Context) {
	rows, err := h.catalog.ExportRows(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog export rows")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success:   false,
			Error:     models.Error{Code: "INTERNAL_ERROR", Message: "Failed to export catalog"},
			RequestID: c.GetString("requestID"),
		})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Catalog"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, row := range rows {
		rowNum := i + 2
		values := []interface{}{
			row.ProductID,
			row.ProductName,
			row.BasePrice,
			row.VariantID,
			deref(row.VariantSKU),
			deref(row.ColorName),
			row.SizeName,
			row.StockQuantity,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("catalog-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to stream catalog export")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

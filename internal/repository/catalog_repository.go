package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// CatalogRepository reads products and bundles for storefront resolution.
// Absence is reported as (nil, nil), never as an error.
type CatalogRepository interface {
	GetProductByID(ctx context.Context, id uint) (*models.Product, error)
	GetBundleByID(ctx context.Context, id uint) (*models.Bundle, error)
	GetVariantByID(ctx context.Context, id uint) (*models.ProductVariant, error)
	ListExportRows(ctx context.Context) ([]CatalogExportRow, error)
}

// CatalogExportRow is one denormalized line of the catalog export
type CatalogExportRow struct {
	ProductID     uint    `json:"productId"`
	ProductName   string  `json:"productName"`
	BasePrice     float64 `json:"basePrice"`
	VariantID     uint    `json:"variantId"`
	VariantSKU    *string `json:"variantSku"`
	ColorName     *string `json:"colorName"`
	SizeName      string  `json:"sizeName"`
	StockQuantity int     `json:"stockQuantity"`
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a Postgres-backed CatalogRepository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// GetProductByID loads an active product with its variants, colors, per-size
// stock and media. Soft-deleted variants are excluded by gorm automatically.
func (r *catalogRepository) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variants.id ASC")
		}).
		Preload("Variants.Color").
		Preload("Variants.Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("variant_sizes.size_id ASC")
		}).
		Preload("Variants.Sizes.Size").
		Preload("Variants.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("variant_images.position ASC")
		}).
		Preload("Variants.Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("variant_videos.position ASC")
		}).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &product, nil
}

// GetBundleByID loads an active bundle with its constituent variants (and
// their products, colors and stock) plus bundle media.
func (r *catalogRepository) GetBundleByID(ctx context.Context, id uint) (*models.Bundle, error) {
	var bundle models.Bundle
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_items.variant_id ASC")
		}).
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Preload("Items.Variant.Color").
		Preload("Items.Variant.Sizes").
		Preload("Items.Size").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_images.position ASC")
		}).
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_videos.position ASC")
		}).
		First(&bundle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch bundle %d: %w", id, err)
	}
	return &bundle, nil
}

// GetVariantByID loads a variant with its parent product, used when
// snapshotting a cart item's unit price.
func (r *catalogRepository) GetVariantByID(ctx context.Context, id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Sizes").
		First(&variant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch variant %d: %w", id, err)
	}
	return &variant, nil
}

// ListExportRows returns the denormalized catalog for spreadsheet export,
// one row per (product, variant, size) with current stock.
func (r *catalogRepository) ListExportRows(ctx context.Context) ([]CatalogExportRow, error) {
	var rows []CatalogExportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS product_id,
		       p.name AS product_name,
		       p.base_price AS base_price,
		       pv.id AS variant_id,
		       pv.sku AS variant_sku,
		       c.name AS color_name,
		       s.name AS size_name,
		       vs.stock_quantity AS stock_quantity
		FROM products p
		JOIN product_variants pv ON pv.product_id = p.id AND pv.deleted_at IS NULL
		LEFT JOIN colors c ON c.id = pv.color_id
		JOIN variant_sizes vs ON vs.variant_id = pv.id
		JOIN sizes s ON s.id = vs.size_id
		WHERE p.deleted_at IS NULL AND p.is_active = true
		ORDER BY p.id, pv.id, s.position
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch export rows: %w", err)
	}
	return rows, nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable product with size/color variants
type Product struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	Name        string            `json:"name" gorm:"not null;index"`
	Description *string           `json:"description,omitempty"`
	BasePrice   float64           `json:"basePrice" gorm:"not null"`
	SKUPrefix   *string           `json:"skuPrefix,omitempty" gorm:"column:sku_prefix"`
	IsActive    bool              `json:"isActive" gorm:"not null;default:true;index"`
	Variants    []*ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt    `json:"deletedAt,omitempty" gorm:"index"`
}

// Color represents a variant color option
type Color struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null"`
	HexCode *string `json:"hexCode,omitempty" gorm:"column:hex_code"`
}

// Size represents a named size, ordered by Position for display
type Size struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Position int    `json:"position" gorm:"not null;default:0"`
}

// ProductVariant represents a concrete color variant of a product.
// Per-size stock lives in VariantSize rows, never on the variant itself.
type ProductVariant struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ProductID uint            `json:"productId" gorm:"not null;index"`
	ColorID   *uint           `json:"colorId,omitempty" gorm:"index"`
	SKU       *string         `json:"sku,omitempty" gorm:"index"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Color     *Color          `json:"color,omitempty" gorm:"foreignKey:ColorID"`
	Sizes     []*VariantSize  `json:"sizes,omitempty" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	Images    []*VariantImage `json:"images,omitempty" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	Videos    []*VariantVideo `json:"videos,omitempty" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `json:"deletedAt,omitempty" gorm:"index"`
}

// VariantSize is the inventory truth: stock per (variant, size) pair
type VariantSize struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	VariantID     uint      `json:"variantId" gorm:"not null;uniqueIndex:idx_variant_sizes_variant_size"`
	SizeID        uint      `json:"sizeId" gorm:"not null;uniqueIndex:idx_variant_sizes_variant_size"`
	StockQuantity int       `json:"stockQuantity" gorm:"not null;default:0"`
	Size          *Size     `json:"size,omitempty" gorm:"foreignKey:SizeID"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VariantImage represents a gallery image attached to a variant
type VariantImage struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	VariantID uint    `json:"variantId" gorm:"not null;index"`
	URL       string  `json:"url" gorm:"not null"`
	AltText   *string `json:"altText,omitempty" gorm:"column:alt_text"`
	Position  int     `json:"position" gorm:"not null;default:0"`
	IsPrimary bool    `json:"isPrimary" gorm:"not null;default:false"`
}

// VariantVideo represents a promotional video attached to a variant
type VariantVideo struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	VariantID    uint    `json:"variantId" gorm:"not null;index"`
	URL          string  `json:"url" gorm:"not null"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" gorm:"column:thumbnail_url"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Duration     *int    `json:"duration,omitempty"` // seconds
	Position     int     `json:"position" gorm:"not null;default:0"`
	IsPrimary    bool    `json:"isPrimary" gorm:"not null;default:false"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the Color model
func (Color) TableName() string {
	return "colors"
}

// TableName returns the table name for the Size model
func (Size) TableName() string {
	return "sizes"
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// TableName returns the table name for the VariantSize model
func (VariantSize) TableName() string {
	return "variant_sizes"
}

// TableName returns the table name for the VariantImage model
func (VariantImage) TableName() string {
	return "variant_images"
}

// TableName returns the table name for the VariantVideo model
func (VariantVideo) TableName() string {
	return "variant_videos"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// BundleType represents how a bundle's constituents were chosen
type BundleType string

const (
	BundleTypeFixed   BundleType = "FIXED"
	BundleTypeCurated BundleType = "CURATED"
)

// Bundle represents a fixed-price grouping of product variants sold together
type Bundle struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null;index"`
	Description *string        `json:"description,omitempty"`
	BundlePrice float64        `json:"bundlePrice" gorm:"not null"`
	BundleType  BundleType     `json:"bundleType" gorm:"not null;default:'FIXED'"`
	IsActive    bool           `json:"isActive" gorm:"not null;default:true;index"`
	Items       []*BundleItem  `json:"items,omitempty" gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
	Images      []*BundleImage `json:"images,omitempty" gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
	Videos      []*BundleVideo `json:"videos,omitempty" gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// BundleItem ties a bundle to one of its constituent variants.
// A nil SizeID means the buyer picks the size at purchase time; stock for
// such an item is the sum across the variant's sizes.
type BundleItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	BundleID  uint            `json:"bundleId" gorm:"not null;index"`
	VariantID uint            `json:"variantId" gorm:"not null;index"`
	SizeID    *uint           `json:"sizeId,omitempty"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	Variant   *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	Size      *Size           `json:"size,omitempty" gorm:"foreignKey:SizeID"`
}

// BundleImage represents a gallery image attached to a bundle
type BundleImage struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	BundleID  uint    `json:"bundleId" gorm:"not null;index"`
	URL       string  `json:"url" gorm:"not null"`
	AltText   *string `json:"altText,omitempty" gorm:"column:alt_text"`
	Position  int     `json:"position" gorm:"not null;default:0"`
	IsPrimary bool    `json:"isPrimary" gorm:"not null;default:false"`
}

// BundleVideo represents a promotional video attached to a bundle
type BundleVideo struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	BundleID     uint    `json:"bundleId" gorm:"not null;index"`
	URL          string  `json:"url" gorm:"not null"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" gorm:"column:thumbnail_url"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Duration     *int    `json:"duration,omitempty"` // seconds
	Position     int     `json:"position" gorm:"not null;default:0"`
	IsPrimary    bool    `json:"isPrimary" gorm:"not null;default:false"`
}

// TableName returns the table name for the Bundle model
func (Bundle) TableName() string {
	return "bundles"
}

// TableName returns the table name for the BundleItem model
func (BundleItem) TableName() string {
	return "bundle_items"
}

// TableName returns the table name for the BundleImage model
func (BundleImage) TableName() string {
	return "bundle_images"
}

// TableName returns the table name for the BundleVideo model
func (BundleVideo) TableName() string {
	return "bundle_videos"
}

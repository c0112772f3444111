package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart represents an anonymous browser cart
type Cart struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Items     []*CartItem    `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// CartItem is a line item referencing either a variant or a bundle,
// never both. UnitPrice is a snapshot taken when the item was added and is
// never recomputed from the catalog.
type CartItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	CartID    uuid.UUID       `json:"cartId" gorm:"type:uuid;not null;index"`
	VariantID *uint           `json:"variantId,omitempty" gorm:"index"`
	BundleID  *uint           `json:"bundleId,omitempty" gorm:"index"`
	SizeID    *uint           `json:"sizeId,omitempty"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice float64         `json:"unitPrice" gorm:"not null"`
	Variant   *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	Bundle    *Bundle         `json:"bundle,omitempty" gorm:"foreignKey:BundleID"`
	Size      *Size           `json:"size,omitempty" gorm:"foreignKey:SizeID"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// TableName returns the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}

// AddCartItemRequest represents a request to add a line item to a cart.
// Exactly one of VariantID / BundleID must be set.
type AddCartItemRequest struct {
	VariantID *uint `json:"variantId,omitempty"`
	BundleID  *uint `json:"bundleId,omitempty"`
	SizeID    *uint `json:"sizeId,omitempty"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents a request to change a line item quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// StockCheckRequest asks for availability of a set of cart items
type StockCheckRequest struct {
	CartItemIDs []uint `json:"cartItemIds" binding:"required,min=1"`
}

// StockCheckResult reports availability for a single cart item.
// For bundle items AvailableStock is the limiting constituent's stock.
type StockCheckResult struct {
	CartItemID        uint   `json:"cartItemId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
	IsAvailable       bool   `json:"isAvailable"`
	ItemName          string `json:"itemName,omitempty"`
}

// StockCheckResponse carries the advisory stock check results.
// The check takes no locks; stock may change before checkout commits.
type StockCheckResponse struct {
	Success    bool               `json:"success"`
	AllInStock bool               `json:"allInStock"`
	Results    []StockCheckResult `json:"results"`
	Message    *string            `json:"message,omitempty"`
}

// StockCommitResponse reports the outcome of an atomic stock commit.
// On failure Shortfalls lists every item that could not be satisfied and no
// stock was deducted.
type StockCommitResponse struct {
	Success    bool               `json:"success"`
	Committed  bool               `json:"committed"`
	Shortfalls []StockCheckResult `json:"shortfalls,omitempty"`
	Message    *string            `json:"message,omitempty"`
}

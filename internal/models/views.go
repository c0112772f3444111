package models

import "time"

// ItemType discriminates resolved item payloads
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeBundle  ItemType = "bundle"
)

// ImageView is one gallery entry in a resolved view, ordered by position
type ImageView struct {
	URL       string  `json:"url"`
	AltText   *string `json:"altText,omitempty"`
	Position  int     `json:"position"`
	MediaType string  `json:"mediaType"`
}

// VideoView is one promotional video entry in a resolved view
type VideoView struct {
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Duration     *int    `json:"duration,omitempty"`
	Position     int     `json:"position"`
}

// VariantSummary is one variant row inside a ProductView, ordered by
// variant id. TotalStock is the sum of the variant's per-size stock.
type VariantSummary struct {
	VariantID  uint    `json:"variantId"`
	SKU        *string `json:"sku,omitempty"`
	ColorID    *uint   `json:"colorId,omitempty"`
	ColorName  *string `json:"colorName,omitempty"`
	ColorCode  *string `json:"colorCode,omitempty"`
	TotalStock int     `json:"totalStock"`
}

// BundleItemSummary describes one constituent of a BundleView in terms of
// the product it came from rather than the variant's own identity. A nil
// SizeName means the size is chosen at purchase time.
type BundleItemSummary struct {
	VariantID      uint    `json:"variantId"`
	ProductName    *string `json:"productName,omitempty"`
	ColorName      *string `json:"colorName,omitempty"`
	SizeName       *string `json:"sizeName,omitempty"`
	Quantity       int     `json:"quantity"`
	AvailableStock int     `json:"availableStock"`
}

// ProductView is the resolved storefront shape of a product
type ProductView struct {
	Type        ItemType         `json:"type"`
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Price       float64          `json:"price"`
	SKUPrefix   *string          `json:"skuPrefix,omitempty"`
	IsActive    bool             `json:"isActive"`
	Variants    []VariantSummary `json:"variants"`
	Images      []ImageView      `json:"images"`
	Videos      []VideoView      `json:"videos"`
	TotalStock  int              `json:"totalStock"`
}

// BundleView is the resolved storefront shape of a bundle. TotalStock is
// the minimum available stock across constituents, since the bundle is only
// as available as its scarcest part.
type BundleView struct {
	Type        ItemType            `json:"type"`
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	BundlePrice float64             `json:"bundlePrice"`
	BundleType  BundleType          `json:"bundleType"`
	IsActive    bool                `json:"isActive"`
	Items       []BundleItemSummary `json:"items"`
	Images      []ImageView         `json:"images"`
	Videos      []VideoView         `json:"videos"`
	TotalStock  int                 `json:"totalStock"`
}

// ItemView wraps whichever side of the product/bundle resolution matched.
// Exactly one of Product/Bundle is non-nil; both nil means no match.
type ItemView struct {
	Type    ItemType     `json:"type"`
	Product *ProductView `json:"product,omitempty"`
	Bundle  *BundleView  `json:"bundle,omitempty"`
}

// CartItemView is one resolved cart line. UnitPrice comes from the cart
// item row; catalog prices are never consulted. When the referenced variant
// or bundle has been deleted the payload side is nil but the line survives.
type CartItemView struct {
	CartItemID uint         `json:"cartItemId"`
	Type       ItemType     `json:"type"`
	Quantity   int          `json:"quantity"`
	UnitPrice  float64      `json:"unitPrice"`
	SizeName   *string      `json:"sizeName,omitempty"`
	Product    *ProductView `json:"product,omitempty"`
	Bundle     *BundleView  `json:"bundle,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// ItemViewResponse wraps a resolve_item result. Data is null when the id
// matched neither an active product nor an active bundle.
type ItemViewResponse struct {
	Success bool      `json:"success"`
	Data    *ItemView `json:"data"`
	Message *string   `json:"message,omitempty"`
}

// CartItemsResponse wraps resolved cart lines in FIFO order
type CartItemsResponse struct {
	Success bool           `json:"success"`
	Data    []CartItemView `json:"data"`
	Message *string        `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

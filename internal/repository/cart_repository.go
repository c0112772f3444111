package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// VariantStockRow is the raw stock lookup result for one variant cart item.
// AvailableStock is the matching VariantSize quantity, or the sum across
// sizes when the item carries no size.
type VariantStockRow struct {
	CartItemID        uint `json:"cartItemId"`
	RequestedQuantity int  `json:"requestedQuantity"`
	AvailableStock    int  `json:"availableStock"`
}

// StockDeduction is one (variant, size) decrement of a stock commit.
// A nil SizeID means the quantity may be split across the variant's sizes.
type StockDeduction struct {
	CartItemID uint
	VariantID  uint
	SizeID     *uint
	Quantity   int
}

// ErrInsufficientStock is returned by CommitStock when any deduction cannot
// be satisfied; the transaction has been rolled back in full.
var ErrInsufficientStock = errors.New("insufficient stock")

// CartRepository persists carts and line items and performs stock reads
// and the commit-time decrement.
type CartRepository interface {
	CreateCart(ctx context.Context) (*models.Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetCartItems(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error)
	GetItemsByIDs(ctx context.Context, ids []uint) ([]*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID uint, quantity int) (bool, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, itemID uint) (bool, error)
	VariantStockForItems(ctx context.Context, ids []uint) ([]VariantStockRow, error)
	CommitStock(ctx context.Context, deductions []StockDeduction) ([]models.StockCheckResult, []StockDeduction, error)
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a Postgres-backed CartRepository
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{ID: uuid.New()}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch cart %s: %w", id, err)
	}
	return &cart, nil
}

// GetCartItems returns the cart's live line items oldest first. Catalog
// preloads honor soft deletes, so a deleted variant or bundle comes back
// nil on the item rather than dropping the row.
func (r *cartRepository) GetCartItems(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error) {
	var items []*models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Preload("Variant").
		Preload("Variant.Product").
		Preload("Variant.Color").
		Preload("Variant.Sizes").
		Preload("Variant.Sizes.Size").
		Preload("Variant.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("variant_images.position ASC")
		}).
		Preload("Variant.Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("variant_videos.position ASC")
		}).
		Preload("Bundle").
		Preload("Bundle.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_items.variant_id ASC")
		}).
		Preload("Bundle.Items.Variant").
		Preload("Bundle.Items.Variant.Product").
		Preload("Bundle.Items.Variant.Color").
		Preload("Bundle.Items.Variant.Sizes").
		Preload("Bundle.Items.Size").
		Preload("Bundle.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_images.position ASC")
		}).
		Preload("Bundle.Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_videos.position ASC")
		}).
		Preload("Size").
		Order("cart_items.created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items for %s: %w", cartID, err)
	}
	return items, nil
}

// GetItemsByIDs loads live cart items for a stock check, with enough of the
// bundle side preloaded to compute constituent stock.
func (r *cartRepository) GetItemsByIDs(ctx context.Context, ids []uint) ([]*models.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []*models.CartItem
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Variant").
		Preload("Variant.Product").
		Preload("Bundle").
		Preload("Bundle.Items").
		Preload("Bundle.Items.Variant").
		Preload("Bundle.Items.Variant.Sizes").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// UpdateItemQuantity changes a line item's quantity. Returns false when the
// item does not exist in the cart.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID uint, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update cart item %d: %w", itemID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RemoveItem soft deletes a line item. Returns false when the item does not
// exist in the cart.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, itemID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove cart item %d: %w", itemID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// VariantStockForItems resolves available stock for variant-backed cart
// items in one round trip. Items whose variant has been soft deleted simply
// produce no row; the caller reports them as unavailable.
func (r *cartRepository) VariantStockForItems(ctx context.Context, ids []uint) ([]VariantStockRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []VariantStockRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT ci.id AS cart_item_id,
		       ci.quantity AS requested_quantity,
		       COALESCE(SUM(vs.stock_quantity), 0) AS available_stock
		FROM cart_items ci
		JOIN product_variants pv ON pv.id = ci.variant_id AND pv.deleted_at IS NULL
		LEFT JOIN variant_sizes vs ON vs.variant_id = ci.variant_id
		  AND (ci.size_id IS NULL OR vs.size_id = ci.size_id)
		WHERE ci.id = ANY(?)
		  AND ci.variant_id IS NOT NULL
		  AND ci.deleted_at IS NULL
		GROUP BY ci.id, ci.quantity
	`, pq.Array(ids)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check variant stock: %w", err)
	}
	return rows, nil
}

// CommitStock applies all deductions in one transaction. Each decrement is
// conditional on sufficient stock; any miss rolls back the whole batch and
// the shortfall list is returned with ErrInsufficientStock. Deductions with
// no fixed size are split greedily across the variant's sizes under
// SELECT FOR UPDATE. The second return value lists pairs whose stock
// reached zero during the commit.
func (r *cartRepository) CommitStock(ctx context.Context, deductions []StockDeduction) ([]models.StockCheckResult, []StockDeduction, error) {
	if len(deductions) == 0 {
		return nil, nil, nil
	}

	var shortfalls []models.StockCheckResult
	var depleted []StockDeduction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deductions {
			if d.SizeID != nil {
				var updated []struct {
					StockQuantity int
				}
				if err := tx.Raw(`
					UPDATE variant_sizes
					SET stock_quantity = stock_quantity - ?, updated_at = NOW()
					WHERE variant_id = ? AND size_id = ? AND stock_quantity >= ?
					RETURNING stock_quantity
				`, d.Quantity, d.VariantID, *d.SizeID, d.Quantity).Scan(&updated).Error; err != nil {
					return fmt.Errorf("failed to deduct stock for variant %d: %w", d.VariantID, err)
				}
				if len(updated) == 0 {
					shortfalls = append(shortfalls, r.shortfallRow(tx, d))
					return ErrInsufficientStock
				}
				if updated[0].StockQuantity == 0 {
					depleted = append(depleted, d)
				}
				continue
			}

			// No fixed size: lock the variant's size rows and drain them
			// largest first until the quantity is covered.
			var sizeRows []models.VariantSize
			if err := tx.Raw(`
				SELECT id, variant_id, size_id, stock_quantity
				FROM variant_sizes
				WHERE variant_id = ?
				ORDER BY stock_quantity DESC, size_id ASC
				FOR UPDATE
			`, d.VariantID).Scan(&sizeRows).Error; err != nil {
				return fmt.Errorf("failed to lock sizes for variant %d: %w", d.VariantID, err)
			}

			remaining := d.Quantity
			for _, row := range sizeRows {
				if remaining == 0 {
					break
				}
				take := row.StockQuantity
				if take > remaining {
					take = remaining
				}
				if take == 0 {
					continue
				}
				if err := tx.Exec(`
					UPDATE variant_sizes
					SET stock_quantity = stock_quantity - ?, updated_at = NOW()
					WHERE id = ?
				`, take, row.ID).Error; err != nil {
					return fmt.Errorf("failed to deduct stock for variant %d: %w", d.VariantID, err)
				}
				if take == row.StockQuantity {
					sizeID := row.SizeID
					depleted = append(depleted, StockDeduction{
						CartItemID: d.CartItemID,
						VariantID:  d.VariantID,
						SizeID:     &sizeID,
						Quantity:   take,
					})
				}
				remaining -= take
			}
			if remaining > 0 {
				shortfalls = append(shortfalls, r.shortfallRow(tx, d))
				return ErrInsufficientStock
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return shortfalls, nil, ErrInsufficientStock
		}
		return nil, nil, err
	}
	return nil, depleted, nil
}

// shortfallRow reads current availability for a failed deduction so the
// caller can report the actual quantity on hand.
func (r *cartRepository) shortfallRow(tx *gorm.DB, d StockDeduction) models.StockCheckResult {
	var available int
	query := tx.Model(&models.VariantSize{}).
		Select("COALESCE(SUM(stock_quantity), 0)").
		Where("variant_id = ?", d.VariantID)
	if d.SizeID != nil {
		query = query.Where("size_id = ?", *d.SizeID)
	}
	_ = query.Scan(&available).Error
	return models.StockCheckResult{
		CartItemID:        d.CartItemID,
		RequestedQuantity: d.Quantity,
		AvailableStock:    available,
		IsAvailable:       false,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// Validation errors surfaced to the handler layer as 400s
var (
	ErrItemReference = errors.New("exactly one of variantId and bundleId must be set")
	ErrSizeRequired  = errors.New("variant items require a sizeId")
	ErrCartNotFound  = errors.New("cart not found")
	ErrItemNotFound  = errors.New("referenced catalog item not found")
)

// CartService owns cart lifecycle, cart resolution, the advisory stock
// check and the commit-time stock decrement.
type CartService interface {
	CreateCart(ctx context.Context) (*models.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID uint, quantity int) (bool, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, itemID uint) (bool, error)
	ResolveCartItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItemView, error)
	ValidateStockBatch(ctx context.Context, cartItemIDs []uint) (*models.StockCheckResponse, error)
	CommitStock(ctx context.Context, cartID uuid.UUID) (*models.StockCommitResponse, error)
}

type cartService struct {
	carts     repository.CartRepository
	catalog   repository.CatalogRepository
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewCartService creates a CartService. The publisher may be nil when NATS
// is not configured; audit events are then skipped.
func NewCartService(carts repository.CartRepository, catalog repository.CatalogRepository, publisher *events.Publisher, logger *logrus.Logger) CartService {
	return &cartService{
		carts:     carts,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger.WithField("component", "cart-service"),
	}
}

func (s *cartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart, err := s.carts.CreateCart(ctx)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		go func() {
			if err := s.publisher.PublishCartCreated(context.Background(), cart.ID.String()); err != nil {
				s.logger.WithError(err).Warn("Failed to publish cart.created event")
			}
		}()
	}
	return cart, nil
}

// AddItem validates the variant/bundle reference and snapshots the unit
// price from the catalog. The snapshot is never updated afterwards, even if
// catalog prices change.
func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error) {
	if (req.VariantID == nil) == (req.BundleID == nil) {
		return nil, ErrItemReference
	}

	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	item := &models.CartItem{
		CartID:    cartID,
		VariantID: req.VariantID,
		BundleID:  req.BundleID,
		SizeID:    req.SizeID,
		Quantity:  req.Quantity,
	}

	switch {
	case req.VariantID != nil:
		if req.SizeID == nil {
			return nil, ErrSizeRequired
		}
		variant, err := s.catalog.GetVariantByID(ctx, *req.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || variant.Product == nil {
			return nil, ErrItemNotFound
		}
		item.UnitPrice = variant.Product.BasePrice
	case req.BundleID != nil:
		bundle, err := s.catalog.GetBundleByID(ctx, *req.BundleID)
		if err != nil {
			return nil, err
		}
		if bundle == nil {
			return nil, ErrItemNotFound
		}
		item.UnitPrice = bundle.BundlePrice
	}

	if err := s.carts.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID uint, quantity int) (bool, error) {
	return s.carts.UpdateItemQuantity(ctx, cartID, itemID, quantity)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID uuid.UUID, itemID uint) (bool, error) {
	return s.carts.RemoveItem(ctx, cartID, itemID)
}

// ResolveCartItems returns the cart's lines oldest first. Each line carries
// the stored unit price and a resolved payload; lines whose catalog side
// has been deleted keep their price and quantity with a nil payload.
func (s *cartService) ResolveCartItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItemView, error) {
	items, err := s.carts.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	views := make([]models.CartItemView, 0, len(items))
	for _, item := range items {
		views = append(views, BuildCartItemView(item))
	}
	return views, nil
}

// BuildCartItemView assembles one resolved cart line. Pure function over
// the preloaded entity graph.
func BuildCartItemView(item *models.CartItem) models.CartItemView {
	view := models.CartItemView{
		CartItemID: item.ID,
		Quantity:   item.Quantity,
		UnitPrice:  item.UnitPrice,
		CreatedAt:  item.CreatedAt,
	}
	if item.Size != nil {
		view.SizeName = &item.Size.Name
	}

	switch {
	case item.BundleID != nil:
		view.Type = models.ItemTypeBundle
		if item.Bundle != nil {
			view.Bundle = BuildBundleView(item.Bundle)
		}
	default:
		view.Type = models.ItemTypeProduct
		if item.Variant != nil && item.Variant.Product != nil {
			product := item.Variant.Product
			product.Variants = []*models.ProductVariant{item.Variant}
			view.Product = BuildProductView(product)
		}
	}
	return view
}

// ValidateStockBatch is advisory: it takes no locks, so concurrent
// checkouts can both pass and still fail at commit time. Unknown ids are
// simply absent from the results.
func (s *cartService) ValidateStockBatch(ctx context.Context, cartItemIDs []uint) (*models.StockCheckResponse, error) {
	items, err := s.carts.GetItemsByIDs(ctx, cartItemIDs)
	if err != nil {
		return nil, err
	}

	variantItemIDs := make([]uint, 0, len(items))
	var bundleItems []*models.CartItem
	names := make(map[uint]string)
	for _, item := range items {
		switch {
		case item.VariantID != nil:
			variantItemIDs = append(variantItemIDs, item.ID)
			if item.Variant != nil && item.Variant.Product != nil {
				names[item.ID] = item.Variant.Product.Name
			}
		case item.BundleID != nil:
			bundleItems = append(bundleItems, item)
		}
	}

	results := make([]models.StockCheckResult, 0, len(items))

	rows, err := s.carts.VariantStockForItems(ctx, variantItemIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(rows))
	for _, row := range rows {
		seen[row.CartItemID] = true
		results = append(results, models.StockCheckResult{
			CartItemID:        row.CartItemID,
			RequestedQuantity: row.RequestedQuantity,
			AvailableStock:    row.AvailableStock,
			IsAvailable:       row.AvailableStock >= row.RequestedQuantity,
			ItemName:          names[row.CartItemID],
		})
	}
	// Variant items that produced no stock row reference a deleted variant
	for _, item := range items {
		if item.VariantID != nil && !seen[item.ID] {
			results = append(results, models.StockCheckResult{
				CartItemID:        item.ID,
				RequestedQuantity: item.Quantity,
				AvailableStock:    0,
				IsAvailable:       false,
			})
		}
	}

	for _, item := range bundleItems {
		available := bundleAvailableStock(item.Bundle)
		name := ""
		if item.Bundle != nil {
			name = item.Bundle.Name
		}
		results = append(results, models.StockCheckResult{
			CartItemID:        item.ID,
			RequestedQuantity: item.Quantity,
			AvailableStock:    available,
			IsAvailable:       available >= item.Quantity,
			ItemName:          name,
		})
	}

	allInStock := true
	for _, result := range results {
		if !result.IsAvailable {
			allInStock = false
			break
		}
	}

	return &models.StockCheckResponse{
		Success:    true,
		AllInStock: allInStock,
		Results:    results,
	}, nil
}

// CommitStock turns the cart's lines into conditional decrements applied in
// one transaction, then publishes the audit events. On shortfall nothing is
// deducted and the limiting items are reported.
func (s *cartService) CommitStock(ctx context.Context, cartID uuid.UUID) (*models.StockCommitResponse, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	items, err := s.carts.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	var deductions []repository.StockDeduction
	var deadLines []models.StockCheckResult
	for _, item := range items {
		switch {
		case item.VariantID != nil:
			deductions = append(deductions, repository.StockDeduction{
				CartItemID: item.ID,
				VariantID:  *item.VariantID,
				SizeID:     item.SizeID,
				Quantity:   item.Quantity,
			})
		case item.BundleID != nil && item.Bundle != nil:
			for _, constituent := range item.Bundle.Items {
				deductions = append(deductions, repository.StockDeduction{
					CartItemID: item.ID,
					VariantID:  constituent.VariantID,
					SizeID:     constituent.SizeID,
					Quantity:   constituent.Quantity * item.Quantity,
				})
			}
		case item.BundleID != nil:
			// The referenced bundle was deleted after the line was added.
			// Committing must not quietly drop the line.
			deadLines = append(deadLines, models.StockCheckResult{
				CartItemID:        item.ID,
				RequestedQuantity: item.Quantity,
				AvailableStock:    0,
				IsAvailable:       false,
			})
		}
	}
	if len(deadLines) > 0 {
		message := "cart references one or more deleted bundles"
		return &models.StockCommitResponse{
			Success:    true,
			Committed:  false,
			Shortfalls: deadLines,
			Message:    &message,
		}, nil
	}

	shortfalls, depleted, err := s.carts.CommitStock(ctx, deductions)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			message := "insufficient stock for one or more items"
			return &models.StockCommitResponse{
				Success:    true,
				Committed:  false,
				Shortfalls: shortfalls,
				Message:    &message,
			}, nil
		}
		return nil, fmt.Errorf("stock commit failed for cart %s: %w", cartID, err)
	}

	s.publishCommit(cartID, deductions, depleted)

	return &models.StockCommitResponse{Success: true, Committed: true}, nil
}

func (s *cartService) publishCommit(cartID uuid.UUID, deductions, depleted []repository.StockDeduction) {
	if s.publisher == nil || len(deductions) == 0 {
		return
	}
	go func() {
		ctx := context.Background()
		if err := s.publisher.PublishStockCommitted(ctx, cartID.String(), toMovements(deductions)); err != nil {
			s.logger.WithError(err).Warn("Failed to publish stock.committed event")
		}
		if len(depleted) > 0 {
			if err := s.publisher.PublishStockDepleted(ctx, cartID.String(), toMovements(depleted)); err != nil {
				s.logger.WithError(err).Warn("Failed to publish stock.depleted event")
			}
		}
	}()
}

func toMovements(deductions []repository.StockDeduction) []events.StockMovement {
	movements := make([]events.StockMovement, 0, len(deductions))
	for _, d := range deductions {
		movements = append(movements, events.StockMovement{
			CartItemID: d.CartItemID,
			VariantID:  d.VariantID,
			SizeID:     d.SizeID,
			Quantity:   d.Quantity,
		})
	}
	return movements
}

// bundleAvailableStock is the plain minimum across constituents, matching
// the bundle view's total stock.
func bundleAvailableStock(bundle *models.Bundle) int {
	if bundle == nil || len(bundle.Items) == 0 {
		return 0
	}
	min := 0
	for i, item := range bundle.Items {
		stock := BundleItemStock(item)
		if i == 0 || stock < min {
			min = stock
		}
	}
	return min
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"catalog-service/internal/cache"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

var _ repository.CatalogRepository = (*MockCatalogRepository)(nil)

func (m *MockCatalogRepository) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetBundleByID(ctx context.Context, id uint) (*models.Bundle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bundle), args.Error(1)
}

func (m *MockCatalogRepository) GetVariantByID(ctx context.Context, id uint) (*models.ProductVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func (m *MockCatalogRepository) ListExportRows(ctx context.Context) ([]repository.CatalogExportRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.CatalogExportRow), args.Error(1)
}

func newTestCatalogService(repo repository.CatalogRepository, viewCache cache.Cache) CatalogService {
	return NewCatalogService(repo, viewCache, time.Minute, logrus.New())
}

func sizeStock(sizeID uint, name string, stock int) *models.VariantSize {
	return &models.VariantSize{
		SizeID:        sizeID,
		StockQuantity: stock,
		Size:          &models.Size{ID: sizeID, Name: name},
	}
}

func classicTShirt() *models.Product {
	black := &models.Color{ID: 1, Name: "Black"}
	return &models.Product{
		ID:        10,
		Name:      "Classic T-Shirt",
		BasePrice: 29.99,
		IsActive:  true,
		Variants: []*models.ProductVariant{
			{
				ID:      100,
				ColorID: &black.ID,
				Color:   black,
				Sizes: []*models.VariantSize{
					sizeStock(1, "S", 10),
					sizeStock(2, "M", 15),
					sizeStock(3, "L", 20),
					sizeStock(4, "XL", 12),
				},
			},
		},
	}
}

// ===========================================
// View Assembly Tests
// ===========================================

func TestBuildProductView_SumsStockAcrossSizes(t *testing.T) {
	view := BuildProductView(classicTShirt())

	assert.Equal(t, models.ItemTypeProduct, view.Type)
	assert.Equal(t, 29.99, view.Price)
	assert.Equal(t, 57, view.TotalStock)
	assert.Len(t, view.Variants, 1)
	assert.Equal(t, 57, view.Variants[0].TotalStock)
	assert.Equal(t, "Black", *view.Variants[0].ColorName)
}

func TestBuildProductView_ZeroVariants(t *testing.T) {
	view := BuildProductView(&models.Product{ID: 1, Name: "Ghost", IsActive: true})

	assert.Equal(t, 0, view.TotalStock)
	assert.Empty(t, view.Variants)
	assert.NotNil(t, view.Variants)
	assert.Empty(t, view.Images)
	assert.Empty(t, view.Videos)
}

func TestBuildProductView_CapsListsButSumsAllStock(t *testing.T) {
	product := &models.Product{ID: 2, Name: "Hoodie", IsActive: true}
	for i := uint(1); i <= 7; i++ {
		product.Variants = append(product.Variants, &models.ProductVariant{
			ID:    i,
			Sizes: []*models.VariantSize{sizeStock(1, "M", 10)},
		})
	}

	view := BuildProductView(product)

	assert.Len(t, view.Variants, MaxVariantsPerView)
	assert.Equal(t, 70, view.TotalStock)
}

func TestBuildProductView_CapsMedia(t *testing.T) {
	variant := &models.ProductVariant{ID: 1}
	for i := 0; i < 10; i++ {
		variant.Images = append(variant.Images, &models.VariantImage{URL: "img", Position: i, IsPrimary: true})
		variant.Videos = append(variant.Videos, &models.VariantVideo{URL: "vid", Position: i, IsPrimary: true})
	}
	product := &models.Product{ID: 3, Name: "Cap", IsActive: true, Variants: []*models.ProductVariant{variant}}

	view := BuildProductView(product)

	assert.Len(t, view.Images, MaxImagesPerView)
	assert.Len(t, view.Videos, MaxVideosPerView)
	assert.Equal(t, 0, view.Images[0].Position)
	assert.Equal(t, "image", view.Images[0].MediaType)
}

func TestBuildProductView_OnlyPrimaryMediaOrderedByPosition(t *testing.T) {
	first := &models.ProductVariant{ID: 1, Images: []*models.VariantImage{
		{URL: "detail-shot", Position: 0},
		{URL: "hero-back", Position: 3, IsPrimary: true},
	}}
	second := &models.ProductVariant{ID: 2, Images: []*models.VariantImage{
		{URL: "hero-front", Position: 1, IsPrimary: true},
	}}
	product := &models.Product{ID: 4, Name: "Jacket", IsActive: true, Variants: []*models.ProductVariant{first, second}}

	view := BuildProductView(product)

	assert.Len(t, view.Images, 2)
	assert.Equal(t, "hero-front", view.Images[0].URL)
	assert.Equal(t, 1, view.Images[0].Position)
	assert.Equal(t, "hero-back", view.Images[1].URL)
	assert.Equal(t, 3, view.Images[1].Position)
}

func TestBuildBundleView_OnlyPrimaryMedia(t *testing.T) {
	bundle := &models.Bundle{
		ID:       21,
		Name:     "Media Pack",
		IsActive: true,
		Images: []*models.BundleImage{
			{URL: "lifestyle", Position: 0},
			{URL: "box", Position: 1, IsPrimary: true},
		},
		Videos: []*models.BundleVideo{
			{URL: "unboxing", Position: 0, IsPrimary: true},
			{URL: "outtakes", Position: 1},
		},
	}

	view := BuildBundleView(bundle)

	assert.Len(t, view.Images, 1)
	assert.Equal(t, "box", view.Images[0].URL)
	assert.Len(t, view.Videos, 1)
	assert.Equal(t, "unboxing", view.Videos[0].URL)
}

func TestBuildBundleView_StockIsMinimumAcrossConstituents(t *testing.T) {
	bundle := &models.Bundle{
		ID:          20,
		Name:        "Starter Pack",
		BundlePrice: 49.99,
		BundleType:  models.BundleTypeFixed,
		IsActive:    true,
		Items: []*models.BundleItem{
			{
				VariantID: 1,
				Quantity:  1,
				Variant: &models.ProductVariant{
					ID:      1,
					Product: &models.Product{Name: "Tee"},
					Sizes:   []*models.VariantSize{sizeStock(1, "M", 20)},
				},
			},
			{
				VariantID: 2,
				Quantity:  1,
				Variant: &models.ProductVariant{
					ID:      2,
					Product: &models.Product{Name: "Socks"},
					Sizes:   []*models.VariantSize{sizeStock(1, "M", 5)},
				},
			},
		},
	}

	view := BuildBundleView(bundle)

	assert.Equal(t, 5, view.TotalStock)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, "Tee", *view.Items[0].ProductName)
	assert.Equal(t, 20, view.Items[0].AvailableStock)
}

func TestBuildBundleView_ZeroItems(t *testing.T) {
	view := BuildBundleView(&models.Bundle{ID: 21, Name: "Empty", IsActive: true})

	assert.Equal(t, 0, view.TotalStock)
	assert.Empty(t, view.Items)
}

func TestBundleItemStock_NilSizeSumsAcrossSizes(t *testing.T) {
	item := &models.BundleItem{
		VariantID: 1,
		Quantity:  1,
		Variant: &models.ProductVariant{
			ID: 1,
			Sizes: []*models.VariantSize{
				sizeStock(1, "S", 3),
				sizeStock(2, "M", 4),
			},
		},
	}

	assert.Equal(t, 7, BundleItemStock(item))
}

func TestBundleItemStock_DeletedVariantIsUnavailable(t *testing.T) {
	assert.Equal(t, 0, BundleItemStock(&models.BundleItem{VariantID: 9, Quantity: 1}))
}

// ===========================================
// Resolution Tests
// ===========================================

func TestResolveItem_ProductTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCatalogRepository)
	service := newTestCatalogService(mockRepo, nil)

	mockRepo.On("GetProductByID", ctx, uint(10)).Return(classicTShirt(), nil)

	view, err := service.ResolveItem(ctx, 10)

	assert.NoError(t, err)
	assert.NotNil(t, view)
	assert.Equal(t, models.ItemTypeProduct, view.Type)
	assert.NotNil(t, view.Product)
	assert.Nil(t, view.Bundle)
	// The bundle side is never consulted when a product matches
	mockRepo.AssertNotCalled(t, "GetBundleByID", ctx, uint(10))
	mockRepo.AssertExpectations(t)
}

func TestResolveItem_FallsBackToBundle(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCatalogRepository)
	service := newTestCatalogService(mockRepo, nil)

	bundle := &models.Bundle{ID: 30, Name: "Pack", IsActive: true}
	mockRepo.On("GetProductByID", ctx, uint(30)).Return(nil, nil)
	mockRepo.On("GetBundleByID", ctx, uint(30)).Return(bundle, nil)

	view, err := service.ResolveItem(ctx, 30)

	assert.NoError(t, err)
	assert.NotNil(t, view)
	assert.Equal(t, models.ItemTypeBundle, view.Type)
	assert.NotNil(t, view.Bundle)
	mockRepo.AssertExpectations(t)
}

func TestResolveItem_NoMatchReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCatalogRepository)
	service := newTestCatalogService(mockRepo, nil)

	mockRepo.On("GetProductByID", ctx, uint(404)).Return(nil, nil)
	mockRepo.On("GetBundleByID", ctx, uint(404)).Return(nil, nil)

	view, err := service.ResolveItem(ctx, 404)

	assert.NoError(t, err)
	assert.Nil(t, view)
	mockRepo.AssertExpectations(t)
}

func TestResolveItem_SecondCallServedFromCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCatalogRepository)
	service := newTestCatalogService(mockRepo, cache.NewMemoryCache(0))

	mockRepo.On("GetProductByID", ctx, uint(10)).Return(classicTShirt(), nil).Once()

	first, err := service.ResolveItem(ctx, 10)
	assert.NoError(t, err)
	second, err := service.ResolveItem(ctx, 10)
	assert.NoError(t, err)

	assert.Equal(t, first.Product.TotalStock, second.Product.TotalStock)
	mockRepo.AssertExpectations(t)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-service/internal/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.Color{},
		&models.Size{},
		&models.ProductVariant{},
		&models.VariantSize{},
		&models.VariantImage{},
		&models.VariantVideo{},
		&models.Bundle{},
		&models.BundleItem{},
		&models.BundleImage{},
		&models.BundleVideo{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to seed test row: %v", err)
	}
}

func TestGetProductByID_ExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	gone := &models.Product{ID: 1, Name: "Retired Tee", BasePrice: 19.99, IsActive: true}
	kept := &models.Product{ID: 2, Name: "Current Tee", BasePrice: 24.99, IsActive: true}
	mustCreate(t, db, gone)
	mustCreate(t, db, kept)
	if err := db.Delete(gone).Error; err != nil {
		t.Fatalf("failed to soft-delete product: %v", err)
	}

	product, err := repo.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, product)

	product, err = repo.GetProductByID(ctx, 2)
	assert.NoError(t, err)
	assert.NotNil(t, product)
	assert.Equal(t, "Current Tee", product.Name)
}

func TestGetProductByID_ExcludesInactive(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	mustCreate(t, db, &models.Product{ID: 1, Name: "Draft Tee", BasePrice: 19.99, IsActive: false})

	product, err := repo.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestGetProductByID_OmitsDeletedVariantsAndOrdersByID(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	mustCreate(t, db, &models.Product{ID: 1, Name: "Hoodie", BasePrice: 49.99, IsActive: true})
	// Inserted out of id order on purpose.
	mustCreate(t, db, &models.ProductVariant{ID: 3, ProductID: 1})
	mustCreate(t, db, &models.ProductVariant{ID: 1, ProductID: 1})
	deleted := &models.ProductVariant{ID: 2, ProductID: 1}
	mustCreate(t, db, deleted)
	if err := db.Delete(deleted).Error; err != nil {
		t.Fatalf("failed to soft-delete variant: %v", err)
	}

	product, err := repo.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.NotNil(t, product)
	assert.Len(t, product.Variants, 2)
	assert.Equal(t, uint(1), product.Variants[0].ID)
	assert.Equal(t, uint(3), product.Variants[1].ID)
}

func TestGetBundleByID_ExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	bundle := &models.Bundle{ID: 10, Name: "Starter Pack", BundlePrice: 59.99, BundleType: models.BundleTypeFixed, IsActive: true}
	mustCreate(t, db, bundle)
	if err := db.Delete(bundle).Error; err != nil {
		t.Fatalf("failed to soft-delete bundle: %v", err)
	}

	got, err := repo.GetBundleByID(ctx, 10)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetBundleByID_DeletedConstituentVariantNotPreloaded(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	mustCreate(t, db, &models.Product{ID: 1, Name: "Hoodie", BasePrice: 49.99, IsActive: true})
	variant := &models.ProductVariant{ID: 1, ProductID: 1}
	mustCreate(t, db, variant)
	mustCreate(t, db, &models.Bundle{ID: 10, Name: "Starter Pack", BundlePrice: 59.99, BundleType: models.BundleTypeFixed, IsActive: true})
	mustCreate(t, db, &models.BundleItem{ID: 1, BundleID: 10, VariantID: 1, Quantity: 2})
	if err := db.Delete(variant).Error; err != nil {
		t.Fatalf("failed to soft-delete variant: %v", err)
	}

	got, err := repo.GetBundleByID(ctx, 10)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].Variant)
}

func TestGetVariantByID_ExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	mustCreate(t, db, &models.Product{ID: 1, Name: "Hoodie", BasePrice: 49.99, IsActive: true})
	variant := &models.ProductVariant{ID: 1, ProductID: 1}
	mustCreate(t, db, variant)
	if err := db.Delete(variant).Error; err != nil {
		t.Fatalf("failed to soft-delete variant: %v", err)
	}

	got, err := repo.GetVariantByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListExportRows_SkipsDeletedRows(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogTestDB(t)
	repo := NewCatalogRepository(db)

	mustCreate(t, db, &models.Size{ID: 1, Name: "M", Position: 1})
	mustCreate(t, db, &models.Product{ID: 1, Name: "Current Tee", BasePrice: 24.99, IsActive: true})
	mustCreate(t, db, &models.ProductVariant{ID: 1, ProductID: 1})
	mustCreate(t, db, &models.VariantSize{VariantID: 1, SizeID: 1, StockQuantity: 12})

	retired := &models.Product{ID: 2, Name: "Retired Tee", BasePrice: 19.99, IsActive: true}
	mustCreate(t, db, retired)
	mustCreate(t, db, &models.ProductVariant{ID: 2, ProductID: 2})
	mustCreate(t, db, &models.VariantSize{VariantID: 2, SizeID: 1, StockQuantity: 5})
	if err := db.Delete(retired).Error; err != nil {
		t.Fatalf("failed to soft-delete product: %v", err)
	}

	droppedVariant := &models.ProductVariant{ID: 3, ProductID: 1}
	mustCreate(t, db, droppedVariant)
	mustCreate(t, db, &models.VariantSize{VariantID: 3, SizeID: 1, StockQuantity: 7})
	if err := db.Delete(droppedVariant).Error; err != nil {
		t.Fatalf("failed to soft-delete variant: %v", err)
	}

	rows, err := repo.ListExportRows(ctx)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, uint(1), rows[0].ProductID)
	assert.Equal(t, uint(1), rows[0].VariantID)
	assert.Equal(t, 12, rows[0].StockQuantity)
}

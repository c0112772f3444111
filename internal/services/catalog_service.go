package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/cache"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// Response-size caps on nested lists. Callers needing the full catalog use
// the export endpoint instead.
const (
	MaxVariantsPerView = 5
	MaxImagesPerView   = 4
	MaxVideosPerView   = 3
)

// CatalogService resolves storefront item views. All methods report absence
// as a nil view with a nil error.
type CatalogService interface {
	ResolveItem(ctx context.Context, id uint) (*models.ItemView, error)
	ResolveProduct(ctx context.Context, id uint) (*models.ProductView, error)
	ResolveBundle(ctx context.Context, id uint) (*models.BundleView, error)
	ExportRows(ctx context.Context) ([]repository.CatalogExportRow, error)
}

type catalogService struct {
	repo   repository.CatalogRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Entry
}

// NewCatalogService creates a CatalogService. The cache may be nil, which
// disables view caching.
func NewCatalogService(repo repository.CatalogRepository, viewCache cache.Cache, ttl time.Duration, logger *logrus.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		cache:  viewCache,
		ttl:    ttl,
		logger: logger.WithField("component", "catalog-service"),
	}
}

// ResolveItem resolves an id that may belong to either id-space. Products
// take precedence: an id matching both a product and a bundle resolves as
// the product.
func (s *catalogService) ResolveItem(ctx context.Context, id uint) (*models.ItemView, error) {
	if view, ok := s.cachedItem(ctx, fmt.Sprintf("item:%d", id)); ok {
		return view, nil
	}

	product, err := s.ResolveProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product != nil {
		view := &models.ItemView{Type: models.ItemTypeProduct, Product: product}
		s.storeItem(ctx, fmt.Sprintf("item:%d", id), view)
		return view, nil
	}

	bundle, err := s.ResolveBundle(ctx, id)
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		view := &models.ItemView{Type: models.ItemTypeBundle, Bundle: bundle}
		s.storeItem(ctx, fmt.Sprintf("item:%d", id), view)
		return view, nil
	}

	return nil, nil
}

func (s *catalogService) ResolveProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return BuildProductView(product), nil
}

func (s *catalogService) ResolveBundle(ctx context.Context, id uint) (*models.BundleView, error) {
	bundle, err := s.repo.GetBundleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, nil
	}
	return BuildBundleView(bundle), nil
}

func (s *catalogService) ExportRows(ctx context.Context) ([]repository.CatalogExportRow, error) {
	return s.repo.ListExportRows(ctx)
}

func (s *catalogService) cachedItem(ctx context.Context, key string) (*models.ItemView, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var view models.ItemView
	if err := json.Unmarshal(data, &view); err != nil {
		s.cache.Delete(ctx, key)
		return nil, false
	}
	return &view, true
}

func (s *catalogService) storeItem(ctx context.Context, key string, view *models.ItemView) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal view for cache")
		return
	}
	s.cache.Set(ctx, key, data, s.ttl)
}

// BuildProductView assembles the storefront view of a loaded product.
// Pure function over the preloaded entity graph.
func BuildProductView(p *models.Product) *models.ProductView {
	view := &models.ProductView{
		Type:        models.ItemTypeProduct,
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.BasePrice,
		SKUPrefix:   p.SKUPrefix,
		IsActive:    p.IsActive,
		Variants:    make([]models.VariantSummary, 0, len(p.Variants)),
		Images:      []models.ImageView{},
		Videos:      []models.VideoView{},
	}

	for _, variant := range p.Variants {
		stock := VariantTotalStock(variant)
		view.TotalStock += stock

		if len(view.Variants) < MaxVariantsPerView {
			summary := models.VariantSummary{
				VariantID:  variant.ID,
				SKU:        variant.SKU,
				ColorID:    variant.ColorID,
				TotalStock: stock,
			}
			if variant.Color != nil {
				summary.ColorName = &variant.Color.Name
				summary.ColorCode = variant.Color.HexCode
			}
			view.Variants = append(view.Variants, summary)
		}

		view.Images = appendPrimaryImages(view.Images, variant.Images)
		view.Videos = appendPrimaryVideos(view.Videos, variant.Videos)
	}
	view.Images = sortAndCapImages(view.Images, MaxImagesPerView)
	view.Videos = sortAndCapVideos(view.Videos, MaxVideosPerView)

	return view
}

// BuildBundleView assembles the storefront view of a loaded bundle. The
// bundle's total stock is the minimum availability across constituents: it
// is only as available as its scarcest part.
func BuildBundleView(b *models.Bundle) *models.BundleView {
	view := &models.BundleView{
		Type:        models.ItemTypeBundle,
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		BundlePrice: b.BundlePrice,
		BundleType:  b.BundleType,
		IsActive:    b.IsActive,
		Items:       make([]models.BundleItemSummary, 0, len(b.Items)),
		Images:      []models.ImageView{},
		Videos:      []models.VideoView{},
	}

	minStock := 0
	for i, item := range b.Items {
		stock := BundleItemStock(item)
		if i == 0 || stock < minStock {
			minStock = stock
		}

		if len(view.Items) < MaxVariantsPerView {
			summary := models.BundleItemSummary{
				VariantID:      item.VariantID,
				Quantity:       item.Quantity,
				AvailableStock: stock,
			}
			if item.Variant != nil {
				if item.Variant.Product != nil {
					summary.ProductName = &item.Variant.Product.Name
				}
				if item.Variant.Color != nil {
					summary.ColorName = &item.Variant.Color.Name
				}
			}
			if item.Size != nil {
				summary.SizeName = &item.Size.Name
			}
			view.Items = append(view.Items, summary)
		}
	}
	if len(b.Items) > 0 {
		view.TotalStock = minStock
	}

	for _, img := range b.Images {
		if !img.IsPrimary {
			continue
		}
		view.Images = append(view.Images, models.ImageView{
			URL:       img.URL,
			AltText:   img.AltText,
			Position:  img.Position,
			MediaType: "image",
		})
	}
	for _, vid := range b.Videos {
		if !vid.IsPrimary {
			continue
		}
		view.Videos = append(view.Videos, videoView(vid.URL, vid.ThumbnailURL, vid.Title, vid.Description, vid.Duration, vid.Position))
	}
	view.Images = sortAndCapImages(view.Images, MaxImagesPerView)
	view.Videos = sortAndCapVideos(view.Videos, MaxVideosPerView)

	return view
}

// VariantTotalStock sums per-size stock for one variant
func VariantTotalStock(v *models.ProductVariant) int {
	total := 0
	for _, size := range v.Sizes {
		total += size.StockQuantity
	}
	return total
}

// BundleItemStock is the availability of one bundle constituent: the
// matching size's stock, or the variant total when no size is fixed.
// A constituent whose variant has been deleted is unavailable.
func BundleItemStock(item *models.BundleItem) int {
	if item.Variant == nil {
		return 0
	}
	if item.SizeID == nil {
		return VariantTotalStock(item.Variant)
	}
	for _, size := range item.Variant.Sizes {
		if size.SizeID == *item.SizeID {
			return size.StockQuantity
		}
	}
	return 0
}

// Gallery views carry primary media only, merged across the owning rows and
// ordered by position before capping.
func appendPrimaryImages(dst []models.ImageView, images []*models.VariantImage) []models.ImageView {
	for _, img := range images {
		if !img.IsPrimary {
			continue
		}
		dst = append(dst, models.ImageView{
			URL:       img.URL,
			AltText:   img.AltText,
			Position:  img.Position,
			MediaType: "image",
		})
	}
	return dst
}

func appendPrimaryVideos(dst []models.VideoView, videos []*models.VariantVideo) []models.VideoView {
	for _, vid := range videos {
		if !vid.IsPrimary {
			continue
		}
		dst = append(dst, videoView(vid.URL, vid.ThumbnailURL, vid.Title, vid.Description, vid.Duration, vid.Position))
	}
	return dst
}

func sortAndCapImages(images []models.ImageView, limit int) []models.ImageView {
	sort.SliceStable(images, func(i, j int) bool { return images[i].Position < images[j].Position })
	if len(images) > limit {
		images = images[:limit]
	}
	return images
}

func sortAndCapVideos(videos []models.VideoView, limit int) []models.VideoView {
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].Position < videos[j].Position })
	if len(videos) > limit {
		videos = videos[:limit]
	}
	return videos
}

func videoView(url string, thumbnail, title, description *string, duration *int, position int) models.VideoView {
	return models.VideoView{
		URL:          url,
		ThumbnailURL: thumbnail,
		Title:        title,
		Description:  description,
		Duration:     duration,
		Position:     position,
	}
}

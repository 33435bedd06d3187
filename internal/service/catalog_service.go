package service

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/entity"
	"storefront/internal/pagination"
	"storefront/internal/repository"
)

// CatalogService serves product reads and owner-side product creation. A
// Redis display cache fronts single-product reads when configured; the
// cache is never used for pricing snapshots feeding a mutation.
type CatalogService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	cache    repository.ProductCache // nil when no cache is configured
}

func NewCatalogService(products repository.ProductRepository, reviews repository.ReviewRepository, cache repository.ProductCache) *CatalogService {
	return &CatalogService{products: products, reviews: reviews, cache: cache}
}

// GetProduct returns one product with its seller name and rating summary.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, entity.RatingSummary, error) {
	var product *entity.Product

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			slog.Warn("Product cache read failed", "product_id", id, "err", err)
		}
		product = cached
	}

	if product == nil {
		var err error
		product, err = s.products.FindByID(ctx, id)
		if err != nil {
			return nil, entity.RatingSummary{}, err
		}
		if product == nil {
			return nil, entity.RatingSummary{}, &entity.NotFoundError{Entity: "product", ID: id}
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, product); err != nil {
				slog.Warn("Product cache write failed", "product_id", id, "err", err)
			}
		}
	}

	summary, err := s.reviews.RatingSummary(ctx, id)
	if err != nil {
		return nil, entity.RatingSummary{}, err
	}
	return product, summary, nil
}

// ListProducts returns a catalog page.
func (s *CatalogService) ListProducts(ctx context.Context, page, size int) ([]entity.Product, pagination.Page, error) {
	params := pagination.Normalize(page, size)
	products, total, err := s.products.List(ctx, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if total == 0 {
		return nil, pagination.Page{}, &entity.NotFoundError{Entity: "products"}
	}
	return products, pagination.NewPage(params, total), nil
}

// CreateProduct inserts a product for the given seller.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID int64, p *entity.Product) error {
	if p.Name == "" {
		return &entity.PreconditionError{Msg: "product name required"}
	}
	if p.Price < 0 {
		return &entity.PreconditionError{Msg: "product price must not be negative"}
	}
	if p.Stock < 0 {
		return &entity.PreconditionError{Msg: "product stock must not be negative"}
	}

	p.SellerID = sellerID
	if err := s.products.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, p.ID); err != nil {
			slog.Warn("Product cache invalidation failed", "product_id", p.ID, "err", err)
		}
	}

	slog.Info("Product created", "product_id", p.ID, "seller_id", sellerID)
	return nil
}

package service

import (
	"context"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/pagination"
	"storefront/internal/repository"
)

// WishlistService manages (customer, product) wish-list entries. Entries
// are also consumed as a side effect of order placement; that path lives
// inside the placement transaction, not here.
type WishlistService struct {
	wishlist repository.WishlistRepository
	products repository.ProductRepository
}

func NewWishlistService(wishlist repository.WishlistRepository, products repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products}
}

func (s *WishlistService) Add(ctx context.Context, customerID, productID int64) (*entity.WishlistEntry, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, &entity.NotFoundError{Entity: "product", ID: productID}
	}

	entry := &entity.WishlistEntry{CustomerID: customerID, ProductID: productID}
	if err := s.wishlist.Add(ctx, entry); err != nil {
		return nil, err
	}
	entry.Product = product
	return entry, nil
}

func (s *WishlistService) List(ctx context.Context, customerID int64, page, size int) ([]entity.WishlistEntry, pagination.Page, error) {
	params := pagination.Normalize(page, size)
	entries, total, err := s.wishlist.List(ctx, customerID, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if total == 0 {
		return nil, pagination.Page{}, &entity.NotFoundError{Entity: "wishlist items"}
	}
	return entries, pagination.NewPage(params, total), nil
}

func (s *WishlistService) Remove(ctx context.Context, customerID, productID int64) error {
	removed, err := s.wishlist.Remove(ctx, customerID, productID)
	if err != nil {
		return err
	}
	if !removed {
		return &entity.NotFoundError{Entity: "wishlist item", ID: productID}
	}
	return nil
}

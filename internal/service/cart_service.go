package service

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/entity"
	"storefront/internal/pagination"
	"storefront/internal/repository"
)

// CartService implements the cart merge logic: adding a product that is
// already in the cart increments the existing line instead of creating a
// second one, and the line total is always recomputed from the current
// price, never carried forward.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// AddToCart creates or increments the (customer, product) cart line. Stock
// is not reserved here; that happens at order placement.
func (s *CartService) AddToCart(ctx context.Context, customerID, productID int64, quantity int) (*entity.CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, &entity.NotFoundError{Entity: "product", ID: productID}
	}

	line, err := s.carts.FindLine(ctx, customerID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cart line: %w", err)
	}

	if line != nil {
		line.Quantity += quantity
		line.Total = float64(line.Quantity) * product.Price
		if err := s.carts.UpdateLine(ctx, line); err != nil {
			return nil, err
		}
	} else {
		line = &entity.CartLine{
			CustomerID: customerID,
			ProductID:  productID,
			Quantity:   quantity,
			Total:      float64(quantity) * product.Price,
		}
		if err := s.carts.CreateLine(ctx, line); err != nil {
			return nil, err
		}
	}

	slog.Info("Cart line merged", "customer_id", customerID, "product_id", productID, "quantity", line.Quantity)

	line.Product = product
	return line, nil
}

// ListCart returns the customer's cart lines with product display snapshots.
func (s *CartService) ListCart(ctx context.Context, customerID int64, page, size int) ([]entity.CartLine, pagination.Page, error) {
	params := pagination.Normalize(page, size)
	lines, total, err := s.carts.ListLines(ctx, customerID, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if total == 0 {
		return nil, pagination.Page{}, &entity.NotFoundError{Entity: "cart items"}
	}
	return lines, pagination.NewPage(params, total), nil
}

// RemoveFromCart deletes a single cart line owned by the customer.
func (s *CartService) RemoveFromCart(ctx context.Context, customerID, lineID int64) error {
	removed, err := s.carts.DeleteLine(ctx, customerID, lineID)
	if err != nil {
		return err
	}
	if !removed {
		return &entity.NotFoundError{Entity: "cart item", ID: lineID}
	}
	return nil
}

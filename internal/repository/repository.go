package repository

import (
	"context"

	"storefront/internal/entity"
)

// ProductRepository handles persistence for products. FindByIDs is the
// pricing snapshot read used by order placement: the price and stock it
// returns are what get persisted, never recomputed later. Soft-deleted
// products are excluded from every read.
type ProductRepository interface {
	// FindByID returns (nil, nil) when the product is absent or soft-deleted.
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	// FindByIDs returns the matching non-deleted products; missing ids are
	// simply absent from the result and detected by the caller.
	FindByIDs(ctx context.Context, ids []int64) ([]entity.Product, error)
	List(ctx context.Context, offset, limit int) ([]entity.Product, int, error)
	Create(ctx context.Context, p *entity.Product) error
}

// CartRepository handles persistence for cart lines.
type CartRepository interface {
	// FindLine returns (nil, nil) when the customer has no line for the product.
	FindLine(ctx context.Context, customerID, productID int64) (*entity.CartLine, error)
	CreateLine(ctx context.Context, line *entity.CartLine) error
	UpdateLine(ctx context.Context, line *entity.CartLine) error
	// DeleteLine reports whether a line was actually removed.
	DeleteLine(ctx context.Context, customerID, lineID int64) (bool, error)
	ListLines(ctx context.Context, customerID int64, offset, limit int) ([]entity.CartLine, int, error)
}

// OrderRepository handles persistence for orders. Create is the order
// placement transaction: order header, lines, conditional stock decrements,
// and wish-list cleanup commit or roll back as one unit.
type OrderRepository interface {
	// Create fills in the ids and timestamps of order and lines. A decrement
	// that would take stock negative aborts the whole transaction and is
	// returned as *entity.InsufficientStockError.
	Create(ctx context.Context, order *entity.Order, lines []entity.OrderLine) error
	// FindByID returns (nil, nil) unless the order exists and belongs to the customer.
	FindByID(ctx context.Context, customerID, orderID int64) (*entity.Order, error)
	List(ctx context.Context, customerID int64, offset, limit int) ([]entity.Order, int, error)
	// FindLine returns the line and the owning order's customer id, or
	// (nil, 0, nil) when the line does not exist.
	FindLine(ctx context.Context, lineID int64) (*entity.OrderLine, int64, error)
	// SetLineStatus transitions a line from one status to another and
	// reports whether the transition applied.
	SetLineStatus(ctx context.Context, lineID int64, from, to entity.LineStatus) (bool, error)
}

// AddressRepository resolves customer shipping addresses.
type AddressRepository interface {
	// FindPrimaryByCustomer returns (nil, nil) when the customer has no address.
	FindPrimaryByCustomer(ctx context.Context, customerID int64) (*entity.Address, error)
	Create(ctx context.Context, a *entity.Address) error
}

// WishlistRepository handles persistence for wish-list entries.
type WishlistRepository interface {
	// Add returns *entity.ConflictError when the entry already exists.
	Add(ctx context.Context, e *entity.WishlistEntry) error
	List(ctx context.Context, customerID int64, offset, limit int) ([]entity.WishlistEntry, int, error)
	Remove(ctx context.Context, customerID, productID int64) (bool, error)
}

// ReviewRepository handles persistence for reviews and the review side
// effect on order line status.
type ReviewRepository interface {
	// CreateForLine inserts the review and flips the line from DELIVERED to
	// COMPLETED in one transaction. A line no longer in DELIVERED yields
	// *entity.PreconditionError; a duplicate review yields *entity.ConflictError.
	CreateForLine(ctx context.Context, r *entity.Review) error
	ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.Review, int, error)
	RatingSummary(ctx context.Context, productID int64) (entity.RatingSummary, error)
}

// ProductCache is the optional read-through display cache in front of
// ProductRepository. It is never consulted for pricing snapshots feeding a
// mutation.
type ProductCache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, id int64) (*entity.Product, error)
	Set(ctx context.Context, p *entity.Product) error
	Invalidate(ctx context.Context, id int64) error
}

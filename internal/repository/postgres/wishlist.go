package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new WishlistRepository backed by Postgres.
func NewWishlistRepository(db *sql.DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, e *entity.WishlistEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO wishlist_entries (customer_id, product_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		e.CustomerID, e.ProductID,
	).Scan(&e.ID, &e.CreatedAt)
	if isUniqueViolation(err) {
		return &entity.ConflictError{Msg: fmt.Sprintf("product %d is already in the wishlist", e.ProductID)}
	}
	if err != nil {
		return fmt.Errorf("failed to insert wishlist entry: %w", err)
	}
	return nil
}

func (r *wishlistRepository) List(ctx context.Context, customerID int64, offset, limit int) ([]entity.WishlistEntry, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM wishlist_entries WHERE customer_id = $1", customerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist entries: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.customer_id, w.product_id, w.created_at,
		        p.name, p.price, p.image_url, p.stock, s.name
		 FROM wishlist_entries w
		 JOIN products p ON p.id = w.product_id
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE w.customer_id = $1
		 ORDER BY w.id
		 OFFSET $2 LIMIT $3`, customerID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query wishlist entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.WishlistEntry
	for rows.Next() {
		var e entity.WishlistEntry
		var p entity.Product
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.ProductID, &e.CreatedAt,
			&p.Name, &p.Price, &p.ImageURL, &p.Stock, &p.SellerName); err != nil {
			return nil, 0, fmt.Errorf("failed to scan wishlist entry: %w", err)
		}
		p.ID = e.ProductID
		e.Product = &p
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *wishlistRepository) Remove(ctx context.Context, customerID, productID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM wishlist_entries WHERE customer_id = $1 AND product_id = $2",
		customerID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete wishlist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (code 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindLine(ctx context.Context, customerID, productID int64) (*entity.CartLine, error) {
	var line entity.CartLine
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, product_id, quantity, total, created_at, updated_at
		 FROM cart_lines WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID,
	).Scan(&line.ID, &line.CustomerID, &line.ProductID, &line.Quantity,
		&line.Total, &line.CreatedAt, &line.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart line: %w", err)
	}
	return &line, nil
}

func (r *cartRepository) CreateLine(ctx context.Context, line *entity.CartLine) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_lines (customer_id, product_id, quantity, total)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		line.CustomerID, line.ProductID, line.Quantity, line.Total,
	).Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateLine(ctx context.Context, line *entity.CartLine) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE cart_lines SET quantity = $1, total = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		line.Quantity, line.Total, line.ID,
	).Scan(&line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, customerID, lineID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_lines WHERE id = $1 AND customer_id = $2",
		lineID, customerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete cart line: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *cartRepository) ListLines(ctx context.Context, customerID int64, offset, limit int) ([]entity.CartLine, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cart_lines WHERE customer_id = $1", customerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cart lines: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.customer_id, c.product_id, c.quantity, c.total, c.created_at, c.updated_at,
		        p.name, p.price, p.image_url, p.stock, s.name
		 FROM cart_lines c
		 JOIN products p ON p.id = c.product_id
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE c.customer_id = $1
		 ORDER BY c.id
		 OFFSET $2 LIMIT $3`, customerID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.CartLine
	for rows.Next() {
		var line entity.CartLine
		var p entity.Product
		if err := rows.Scan(&line.ID, &line.CustomerID, &line.ProductID, &line.Quantity,
			&line.Total, &line.CreatedAt, &line.UpdatedAt,
			&p.Name, &p.Price, &p.ImageURL, &p.Stock, &p.SellerName); err != nil {
			return nil, 0, fmt.Errorf("failed to scan cart line: %w", err)
		}
		p.ID = line.ProductID
		line.Product = &p
		lines = append(lines, line)
	}
	return lines, total, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create runs the order placement transaction. The stock decrement is
// conditional (stock >= quantity), so a concurrent placement that raced the
// pre-check past zero is caught here and rolls everything back.
func (r *orderRepository) Create(ctx context.Context, order *entity.Order, lines []entity.OrderLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (customer_id, address_id) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		order.CustomerID, order.AddressID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	productIDs := make([]int64, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		line.OrderID = order.ID
		productIDs = append(productIDs, line.ProductID)

		err = tx.QueryRowContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, quantity, price, status)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			line.OrderID, line.ProductID, line.Quantity, line.Price, entity.LineStatusPending,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
		line.Status = entity.LineStatusPending

		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
			line.Quantity, line.ProductID,
		)
		if err != nil {
			return fmt.Errorf("failed to update product stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			// Lost the race against a concurrent placement.
			name := line.ProductName
			if name == "" {
				name = fmt.Sprintf("%d", line.ProductID)
			}
			return &entity.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      name,
				Available: -1,
				Requested: line.Quantity,
			}
		}
	}

	for _, pid := range productIDs {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM wishlist_entries WHERE customer_id = $1 AND product_id = $2",
			order.CustomerID, pid,
		)
		if err != nil {
			return fmt.Errorf("failed to delete wishlist entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.Lines = lines
	return nil
}

const lineColumns = `l.id, l.order_id, l.product_id, p.name, s.name, l.price, l.quantity, l.status`

func (r *orderRepository) findLines(ctx context.Context, orderID int64) ([]entity.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lineColumns+` FROM order_lines l
		 JOIN products p ON p.id = l.product_id
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE l.order_id = $1
		 ORDER BY l.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
			&l.SellerName, &l.Price, &l.Quantity, &l.Status); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *orderRepository) FindByID(ctx context.Context, customerID, orderID int64) (*entity.Order, error) {
	var o entity.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, address_id, created_at, updated_at
		 FROM orders WHERE id = $1 AND customer_id = $2`,
		orderID, customerID,
	).Scan(&o.ID, &o.CustomerID, &o.AddressID, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if o.Lines, err = r.findLines(ctx, o.ID); err != nil {
		return nil, err
	}
	for _, l := range o.Lines {
		o.TotalPrice += l.Price * float64(l.Quantity)
		o.TotalQuantity += l.Quantity
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, customerID int64, offset, limit int) ([]entity.Order, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE customer_id = $1", customerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, address_id, created_at, updated_at
		 FROM orders WHERE customer_id = $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`, customerID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.AddressID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		if orders[i].Lines, err = r.findLines(ctx, orders[i].ID); err != nil {
			return nil, 0, err
		}
		for _, l := range orders[i].Lines {
			orders[i].TotalPrice += l.Price * float64(l.Quantity)
			orders[i].TotalQuantity += l.Quantity
		}
	}
	return orders, total, nil
}

func (r *orderRepository) FindLine(ctx context.Context, lineID int64) (*entity.OrderLine, int64, error) {
	var l entity.OrderLine
	var customerID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT `+lineColumns+`, o.customer_id FROM order_lines l
		 JOIN orders o ON o.id = l.order_id
		 JOIN products p ON p.id = l.product_id
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE l.id = $1`, lineID,
	).Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.SellerName,
		&l.Price, &l.Quantity, &l.Status, &customerID)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query order line: %w", err)
	}
	return &l, customerID, nil
}

func (r *orderRepository) SetLineStatus(ctx context.Context, lineID int64, from, to entity.LineStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE order_lines SET status = $1 WHERE id = $2 AND status = $3",
		to, lineID, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update order line status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

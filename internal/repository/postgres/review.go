package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository backed by Postgres.
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// CreateForLine inserts the review and moves the order line from DELIVERED
// to COMPLETED in the same transaction. The status flip is conditional, so
// a concurrent review that got there first rolls this one back.
func (r *reviewRepository) CreateForLine(ctx context.Context, rev *entity.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO reviews (customer_id, product_id, order_line_id, rating, comment)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		rev.CustomerID, rev.ProductID, rev.OrderLineID, rev.Rating, rev.Comment,
	).Scan(&rev.ID, &rev.CreatedAt)
	if isUniqueViolation(err) {
		return &entity.ConflictError{Msg: fmt.Sprintf("order line %d already reviewed", rev.OrderLineID)}
	}
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE order_lines SET status = $1 WHERE id = $2 AND status = $3",
		entity.LineStatusCompleted, rev.OrderLineID, entity.LineStatusDelivered,
	)
	if err != nil {
		return fmt.Errorf("failed to update order line status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return &entity.PreconditionError{
			Msg: fmt.Sprintf("order line %d is not delivered yet", rev.OrderLineID),
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.Review, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE product_id = $1", productID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, product_id, order_line_id, rating, comment, created_at
		 FROM reviews WHERE product_id = $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`, productID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		var rev entity.Review
		if err := rows.Scan(&rev.ID, &rev.CustomerID, &rev.ProductID,
			&rev.OrderLineID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, total, rows.Err()
}

func (r *reviewRepository) RatingSummary(ctx context.Context, productID int64) (entity.RatingSummary, error) {
	var summary entity.RatingSummary
	var sum sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), SUM(rating) FROM reviews WHERE product_id = $1",
		productID,
	).Scan(&summary.ReviewCount, &sum)
	if err != nil {
		return entity.RatingSummary{}, fmt.Errorf("failed to query rating summary: %w", err)
	}
	if summary.ReviewCount > 0 && sum.Valid {
		summary.Average = sum.Float64 / float64(summary.ReviewCount)
	}
	return summary, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/entity"
	"storefront/internal/pagination"
	"storefront/internal/repository"
)

// ReviewService gates review submission on the order line lifecycle: only a
// DELIVERED line can be reviewed, and a successful review flips it to
// COMPLETED.
type ReviewService struct {
	reviews repository.ReviewRepository
	orders  repository.OrderRepository
}

func NewReviewService(reviews repository.ReviewRepository, orders repository.OrderRepository) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders}
}

// SubmitReview validates ownership and line status, then persists the
// review and the COMPLETED transition as one unit.
func (s *ReviewService) SubmitReview(ctx context.Context, customerID, orderLineID int64, rating int, comment string) (*entity.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &entity.PreconditionError{Msg: fmt.Sprintf("rating must be between 1 and 5, got %d", rating)}
	}

	line, ownerID, err := s.orders.FindLine(ctx, orderLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order line: %w", err)
	}
	if line == nil || ownerID != customerID {
		return nil, &entity.NotFoundError{Entity: "order line", ID: orderLineID}
	}

	switch line.Status {
	case entity.LineStatusDelivered:
		// eligible
	case entity.LineStatusCompleted:
		return nil, &entity.ConflictError{Msg: fmt.Sprintf("order line %d already reviewed", orderLineID)}
	default:
		return nil, &entity.PreconditionError{Msg: fmt.Sprintf("order line %d is not delivered yet", orderLineID)}
	}

	review := &entity.Review{
		CustomerID:  customerID,
		ProductID:   line.ProductID,
		OrderLineID: orderLineID,
		Rating:      rating,
		Comment:     comment,
	}
	if err := s.reviews.CreateForLine(ctx, review); err != nil {
		return nil, err
	}

	slog.Info("Review submitted", "order_line_id", orderLineID, "product_id", line.ProductID, "rating", rating)
	return review, nil
}

// ListReviews returns a product's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, productID int64, page, size int) ([]entity.Review, pagination.Page, error) {
	params := pagination.Normalize(page, size)
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if total == 0 {
		return nil, pagination.Page{}, &entity.NotFoundError{Entity: "reviews"}
	}
	return reviews, pagination.NewPage(params, total), nil
}

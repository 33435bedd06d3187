package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storefront/internal/entity"
	"storefront/internal/messaging"
	"storefront/internal/pagination"
	"storefront/internal/repository"
)

// TopicOrdersPlaced carries OrderPlaced events for downstream consumers.
// TopicOrdersDelivered carries fulfillment notifications back in.
const (
	TopicOrdersPlaced    = "orders.placed"
	TopicOrdersDelivered = "orders.delivered"
)

// OrderService orchestrates order placement and order reads. Every check
// that can fail runs before the placement transaction; the conditional
// stock decrement inside the transaction is the only check that can still
// fail afterwards, and it reports the same InsufficientStock error.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	addresses repository.AddressRepository
	publisher messaging.Publisher
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	addresses repository.AddressRepository,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		addresses: addresses,
		publisher: publisher,
	}
}

// PlaceOrder converts the requested items into a committed order. The whole
// batch succeeds or fails: a missing product or an insufficient line rejects
// everything, and no partial rows survive a failure inside the transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID int64, items []entity.OrderItemRequest) (*entity.Order, error) {
	slog.Info("Service: Placing order", "customer_id", customerID, "items", len(items))

	if len(items) == 0 {
		return nil, &entity.PreconditionError{Msg: "order must have at least one item"}
	}
	for i := range items {
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
	}

	address, err := s.addresses.FindPrimaryByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address: %w", err)
	}
	if address == nil {
		return nil, &entity.PreconditionError{Msg: "address required before placing an order"}
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	byID := make(map[int64]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// Requested quantity per product, so duplicate items for the same
	// product are checked against stock as a whole.
	requested := make(map[int64]int, len(ids))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, &entity.NotFoundError{Entity: "product", ID: item.ProductID}
		}
		requested[item.ProductID] += item.Quantity
		if requested[item.ProductID] > product.Stock {
			return nil, &entity.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: requested[item.ProductID],
			}
		}
	}

	order := &entity.Order{
		CustomerID: customerID,
		AddressID:  address.ID,
	}
	lines := make([]entity.OrderLine, 0, len(items))
	for _, item := range items {
		product := byID[item.ProductID]
		lines = append(lines, entity.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			SellerName:  product.SellerName,
			Price:       product.Price,
			Quantity:    item.Quantity,
			Status:      entity.LineStatusPending,
		})
	}

	if err := s.orders.Create(ctx, order, lines); err != nil {
		return nil, err
	}

	event := entity.OrderPlaced{
		EventID:    uuid.New().String(),
		OrderID:    order.ID,
		CustomerID: customerID,
		PlacedAt:   time.Now(),
	}
	for _, line := range order.Lines {
		order.TotalPrice += line.Price * float64(line.Quantity)
		order.TotalQuantity += line.Quantity
		event.Items = append(event.Items, entity.OrderPlacedItem{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	event.TotalPrice = order.TotalPrice
	event.TotalQuantity = order.TotalQuantity

	if err := s.publisher.PublishEvent(ctx, TopicOrdersPlaced, fmt.Sprintf("%d", order.ID), event); err != nil {
		// The order is committed; a publish failure must not undo it.
		slog.Error("Failed to publish OrderPlaced event", "order_id", order.ID, "err", err)
	}

	slog.Info("Order placed", "order_id", order.ID, "total_price", order.TotalPrice, "total_quantity", order.TotalQuantity)
	return order, nil
}

// CreateAddress registers a shipping address for the customer. An address
// must exist before the customer can place an order.
func (s *OrderService) CreateAddress(ctx context.Context, customerID int64, a *entity.Address) error {
	if a.Street == "" || a.City == "" {
		return &entity.PreconditionError{Msg: "street and city are required"}
	}
	a.CustomerID = customerID
	return s.addresses.Create(ctx, a)
}

// GetOrder returns one of the customer's orders with its lines.
func (s *OrderService) GetOrder(ctx context.Context, customerID, orderID int64) (*entity.Order, error) {
	order, err := s.orders.FindByID(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &entity.NotFoundError{Entity: "order", ID: orderID}
	}
	return order, nil
}

// ListOrders returns the customer's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, customerID int64, page, size int) ([]entity.Order, pagination.Page, error) {
	params := pagination.Normalize(page, size)
	orders, total, err := s.orders.List(ctx, customerID, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if total == 0 {
		return nil, pagination.Page{}, &entity.NotFoundError{Entity: "orders"}
	}
	return orders, pagination.NewPage(params, total), nil
}

// HandleOrderLineDelivered applies the external fulfillment transition
// PENDING -> DELIVERED. Any other source state is left untouched.
func (s *OrderService) HandleOrderLineDelivered(ctx context.Context, event *entity.OrderLineDelivered) error {
	applied, err := s.orders.SetLineStatus(ctx, event.OrderLineID, entity.LineStatusPending, entity.LineStatusDelivered)
	if err != nil {
		return fmt.Errorf("failed to mark order line delivered: %w", err)
	}
	if !applied {
		slog.Warn("Delivered event ignored, line not pending", "order_line_id", event.OrderLineID)
		return nil
	}
	slog.Info("Order line delivered", "order_line_id", event.OrderLineID)
	return nil
}

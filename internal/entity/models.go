package entity

import (
	"time"
)

// LineStatus is the lifecycle state of an order line.
// PENDING is set at placement; DELIVERED is applied by the external
// fulfillment event; COMPLETED is set when the customer reviews the line.
type LineStatus string

const (
	LineStatusPending   LineStatus = "PENDING"
	LineStatusDelivered LineStatus = "DELIVERED"
	LineStatusCompleted LineStatus = "COMPLETED"
)

// Product represents a product in the store. Stock is decremented only by
// order placement and is never allowed to go negative.
type Product struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	SellerName  string    `json:"seller_name,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RatingSummary aggregates the reviews of a product.
type RatingSummary struct {
	ReviewCount int     `json:"review_count"`
	Average     float64 `json:"average"`
}

// CartLine is one (customer, product) entry in a cart. Total is a cached
// derivation (quantity × price at last mutation), never independently entered.
type CartLine struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"-"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Product is the denormalized display snapshot for cart listings.
	Product *Product `json:"product,omitempty"`
}

// Address is a customer shipping address. Orders reference the address id.
type Address struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"-"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Province   string    `json:"province"`
	PostalCode string    `json:"postal_code"`
	Primary    bool      `json:"primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// Order is a placed customer order. Totals are derived from the lines, not
// stored on the header.
type Order struct {
	ID            int64       `json:"id"`
	CustomerID    int64       `json:"-"`
	AddressID     int64       `json:"address_id"`
	TotalPrice    float64     `json:"total_price"`
	TotalQuantity int         `json:"total_quantity"`
	Lines         []OrderLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderLine is a line item within an order. Price is frozen at placement
// time and must not track later product price changes.
type OrderLine struct {
	ID          int64      `json:"id"`
	OrderID     int64      `json:"order_id"`
	ProductID   int64      `json:"product_id"`
	ProductName string     `json:"product_name"`
	SellerName  string     `json:"seller_name"`
	Price       float64    `json:"price"`
	Quantity    int        `json:"quantity"`
	Status      LineStatus `json:"status"`
}

// WishlistEntry is a (customer, product) pair. Placement of the product
// consumes the entry.
type WishlistEntry struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"-"`
	ProductID  int64     `json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`

	Product *Product `json:"product,omitempty"`
}

// Review is a customer review of a delivered order line's product.
type Review struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	ProductID   int64     `json:"product_id"`
	OrderLineID int64     `json:"order_line_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Commands ---

// OrderItemRequest is one requested (product, quantity) pair of a placement.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// --- Events ---

// OrderPlacedItem is the per-line payload of an OrderPlaced event.
type OrderPlacedItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderPlaced is emitted after an order has been committed.
type OrderPlaced struct {
	EventID       string            `json:"event_id"`
	OrderID       int64             `json:"order_id"`
	CustomerID    int64             `json:"customer_id"`
	Items         []OrderPlacedItem `json:"items"`
	TotalPrice    float64           `json:"total_price"`
	TotalQuantity int               `json:"total_quantity"`
	PlacedAt      time.Time         `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderLineDelivered is consumed from the fulfillment system and moves a
// line from PENDING to DELIVERED.
type OrderLineDelivered struct {
	EventID     string    `json:"event_id"`
	OrderLineID int64     `json:"order_line_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

func (e OrderLineDelivered) EventType() string { return "OrderLineDelivered" }

package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/entity"
)

// In-memory fakes for the repository interfaces. They apply the same
// observable semantics as the Postgres implementations (conditional stock
// decrement, wish-list consumption, status CAS) so the services can be
// exercised without a database.

type fakeProductRepo struct {
	products map[int64]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[int64]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []int64) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, offset, limit int) ([]entity.Product, int, error) {
	var out []entity.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	p.ID = int64(len(r.products) + 1)
	r.products[p.ID] = p
	return nil
}

type fakeCartRepo struct {
	lines  map[int64]*entity.CartLine
	nextID int64
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: make(map[int64]*entity.CartLine)}
}

func (r *fakeCartRepo) FindLine(_ context.Context, customerID, productID int64) (*entity.CartLine, error) {
	for _, l := range r.lines {
		if l.CustomerID == customerID && l.ProductID == productID {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) CreateLine(_ context.Context, line *entity.CartLine) error {
	r.nextID++
	line.ID = r.nextID
	line.CreatedAt = time.Now()
	line.UpdatedAt = line.CreatedAt
	r.lines[line.ID] = line
	return nil
}

func (r *fakeCartRepo) UpdateLine(_ context.Context, line *entity.CartLine) error {
	line.UpdatedAt = time.Now()
	r.lines[line.ID] = line
	return nil
}

func (r *fakeCartRepo) DeleteLine(_ context.Context, customerID, lineID int64) (bool, error) {
	if l, ok := r.lines[lineID]; ok && l.CustomerID == customerID {
		delete(r.lines, lineID)
		return true, nil
	}
	return false, nil
}

func (r *fakeCartRepo) ListLines(_ context.Context, customerID int64, offset, limit int) ([]entity.CartLine, int, error) {
	var out []entity.CartLine
	for _, l := range r.lines {
		if l.CustomerID == customerID {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

type fakeAddressRepo struct {
	byCustomer map[int64]*entity.Address
}

func newFakeAddressRepo(addresses ...*entity.Address) *fakeAddressRepo {
	r := &fakeAddressRepo{byCustomer: make(map[int64]*entity.Address)}
	for _, a := range addresses {
		r.byCustomer[a.CustomerID] = a
	}
	return r
}

func (r *fakeAddressRepo) FindPrimaryByCustomer(_ context.Context, customerID int64) (*entity.Address, error) {
	return r.byCustomer[customerID], nil
}

func (r *fakeAddressRepo) Create(_ context.Context, a *entity.Address) error {
	a.ID = int64(len(r.byCustomer) + 1)
	r.byCustomer[a.CustomerID] = a
	return nil
}

type fakeWishlistRepo struct {
	entries []*entity.WishlistEntry
	nextID  int64
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{}
}

func (r *fakeWishlistRepo) Add(_ context.Context, e *entity.WishlistEntry) error {
	for _, existing := range r.entries {
		if existing.CustomerID == e.CustomerID && existing.ProductID == e.ProductID {
			return &entity.ConflictError{Msg: fmt.Sprintf("product %d is already in the wishlist", e.ProductID)}
		}
	}
	r.nextID++
	e.ID = r.nextID
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeWishlistRepo) List(_ context.Context, customerID int64, offset, limit int) ([]entity.WishlistEntry, int, error) {
	var out []entity.WishlistEntry
	for _, e := range r.entries {
		if e.CustomerID == customerID {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (r *fakeWishlistRepo) Remove(_ context.Context, customerID, productID int64) (bool, error) {
	for i, e := range r.entries {
		if e.CustomerID == customerID && e.ProductID == productID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWishlistRepo) has(customerID, productID int64) bool {
	for _, e := range r.entries {
		if e.CustomerID == customerID && e.ProductID == productID {
			return true
		}
	}
	return false
}

// fakeOrderRepo mimics the placement transaction against the product and
// wishlist fakes: decrement fails atomically, wish-list entries for ordered
// products are consumed, nothing survives a failure.
type fakeOrderRepo struct {
	products *fakeProductRepo
	wishlist *fakeWishlistRepo

	orders     []*entity.Order
	lines      map[int64]*entity.OrderLine
	lineOwners map[int64]int64

	nextOrderID int64
	nextLineID  int64
}

func newFakeOrderRepo(products *fakeProductRepo, wishlist *fakeWishlistRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		products:   products,
		wishlist:   wishlist,
		lines:      make(map[int64]*entity.OrderLine),
		lineOwners: make(map[int64]int64),
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *entity.Order, lines []entity.OrderLine) error {
	for _, line := range lines {
		p := r.products.products[line.ProductID]
		if p == nil || p.Stock < line.Quantity {
			name := ""
			if p != nil {
				name = p.Name
			}
			return &entity.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      name,
				Available: -1,
				Requested: line.Quantity,
			}
		}
	}

	r.nextOrderID++
	order.ID = r.nextOrderID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	for i := range lines {
		r.nextLineID++
		lines[i].ID = r.nextLineID
		lines[i].OrderID = order.ID
		lines[i].Status = entity.LineStatusPending

		r.products.products[lines[i].ProductID].Stock -= lines[i].Quantity
		if r.wishlist != nil {
			r.wishlist.Remove(context.Background(), order.CustomerID, lines[i].ProductID)
		}

		stored := lines[i]
		r.lines[stored.ID] = &stored
		r.lineOwners[stored.ID] = order.CustomerID
	}

	order.Lines = lines
	r.orders = append(r.orders, order)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, customerID, orderID int64) (*entity.Order, error) {
	for _, o := range r.orders {
		if o.ID == orderID && o.CustomerID == customerID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) List(_ context.Context, customerID int64, offset, limit int) ([]entity.Order, int, error) {
	var out []entity.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) FindLine(_ context.Context, lineID int64) (*entity.OrderLine, int64, error) {
	line, ok := r.lines[lineID]
	if !ok {
		return nil, 0, nil
	}
	copied := *line
	return &copied, r.lineOwners[lineID], nil
}

func (r *fakeOrderRepo) SetLineStatus(_ context.Context, lineID int64, from, to entity.LineStatus) (bool, error) {
	line, ok := r.lines[lineID]
	if !ok || line.Status != from {
		return false, nil
	}
	line.Status = to
	return true, nil
}

type fakeReviewRepo struct {
	orders   *fakeOrderRepo
	reviews  []*entity.Review
	reviewed map[int64]bool
}

func newFakeReviewRepo(orders *fakeOrderRepo) *fakeReviewRepo {
	return &fakeReviewRepo{orders: orders, reviewed: make(map[int64]bool)}
}

func (r *fakeReviewRepo) CreateForLine(ctx context.Context, rev *entity.Review) error {
	if r.reviewed[rev.OrderLineID] {
		return &entity.ConflictError{Msg: fmt.Sprintf("order line %d already reviewed", rev.OrderLineID)}
	}
	applied, err := r.orders.SetLineStatus(ctx, rev.OrderLineID, entity.LineStatusDelivered, entity.LineStatusCompleted)
	if err != nil {
		return err
	}
	if !applied {
		return &entity.PreconditionError{Msg: fmt.Sprintf("order line %d is not delivered yet", rev.OrderLineID)}
	}
	rev.ID = int64(len(r.reviews) + 1)
	r.reviewed[rev.OrderLineID] = true
	r.reviews = append(r.reviews, rev)
	return nil
}

func (r *fakeReviewRepo) ListByProduct(_ context.Context, productID int64, offset, limit int) ([]entity.Review, int, error) {
	var out []entity.Review
	for _, rev := range r.reviews {
		if rev.ProductID == productID {
			out = append(out, *rev)
		}
	}
	return out, len(out), nil
}

func (r *fakeReviewRepo) RatingSummary(_ context.Context, productID int64) (entity.RatingSummary, error) {
	var summary entity.RatingSummary
	var sum int
	for _, rev := range r.reviews {
		if rev.ProductID == productID {
			summary.ReviewCount++
			sum += rev.Rating
		}
	}
	if summary.ReviewCount > 0 {
		summary.Average = float64(sum) / float64(summary.ReviewCount)
	}
	return summary, nil
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

type fakeProductCache struct {
	entries     map[int64]*entity.Product
	hits        int
	invalidated []int64
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: make(map[int64]*entity.Product)}
}

func (c *fakeProductCache) Get(_ context.Context, id int64) (*entity.Product, error) {
	if p, ok := c.entries[id]; ok {
		c.hits++
		return p, nil
	}
	return nil, nil
}

func (c *fakeProductCache) Set(_ context.Context, p *entity.Product) error {
	c.entries[p.ID] = p
	return nil
}

func (c *fakeProductCache) Invalidate(_ context.Context, id int64) error {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

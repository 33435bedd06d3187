package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"storefront/internal/entity"
	"storefront/internal/pagination"
	"storefront/internal/service"
)

// Handler handles HTTP requests for the application. Identity is an opaque
// authenticated principal: the upstream gateway resolves the customer and
// forwards the id in the X-Customer-ID header.
type Handler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	reviews  *service.ReviewService
	wishlist *service.WishlistService
}

func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	orders *service.OrderService,
	reviews *service.ReviewService,
	wishlist *service.WishlistService,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		reviews:  reviews,
		wishlist: wishlist,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/products", h.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products", h.handleCreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id:[0-9]+}", h.handleGetProduct).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id:[0-9]+}/reviews", h.handleListReviews).Methods(http.MethodGet)

	r.HandleFunc("/api/cart", h.handleAddToCart).Methods(http.MethodPost)
	r.HandleFunc("/api/cart", h.handleListCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/{id:[0-9]+}", h.handleRemoveFromCart).Methods(http.MethodDelete)

	r.HandleFunc("/api/orders", h.handlePlaceOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id:[0-9]+}", h.handleGetOrder).Methods(http.MethodGet)

	r.HandleFunc("/api/reviews", h.handleSubmitReview).Methods(http.MethodPost)

	r.HandleFunc("/api/wishlist", h.handleAddToWishlist).Methods(http.MethodPost)
	r.HandleFunc("/api/wishlist", h.handleListWishlist).Methods(http.MethodGet)
	r.HandleFunc("/api/wishlist/{product_id:[0-9]+}", h.handleRemoveFromWishlist).Methods(http.MethodDelete)

	r.HandleFunc("/api/addresses", h.handleCreateAddress).Methods(http.MethodPost)
}

// --- Catalog ---

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	products, pg, err := h.catalog.ListProducts(r.Context(), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: products, Pagination: pg})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	product, summary, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		*entity.Product
		Rating entity.RatingSummary `json:"rating"`
	}{product, summary})
}

type createProductRequest struct {
	SellerID    int64   `json:"seller_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product := &entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if err := h.catalog.CreateProduct(r.Context(), req.SellerID, product); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	reviews, pg, err := h.reviews.ListReviews(r.Context(), pathID(r, "id"), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: reviews, Pagination: pg})
}

// --- Cart ---

type addToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID < 1 {
		http.Error(w, "product_id must be a positive integer", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		http.Error(w, "quantity must be a positive integer", http.StatusBadRequest)
		return
	}

	line, err := h.cart.AddToCart(r.Context(), customerID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

func (h *Handler) handleListCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	lines, pg, err := h.cart.ListCart(r.Context(), customerID, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: lines, Pagination: pg})
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.cart.RemoveFromCart(r.Context(), customerID, pathID(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Orders ---

type placeOrderRequest struct {
	Items []entity.OrderItemRequest `json:"items"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, item := range req.Items {
		if item.ProductID < 1 {
			http.Error(w, "product_id must be a positive integer", http.StatusBadRequest)
			return
		}
		if item.Quantity < 0 {
			http.Error(w, "quantity must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	order, err := h.orders.PlaceOrder(r.Context(), customerID, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	orders, pg, err := h.orders.ListOrders(r.Context(), customerID, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: orders, Pagination: pg})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), customerID, pathID(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// --- Reviews ---

type submitReviewRequest struct {
	OrderLineID int64  `json:"order_line_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.reviews.SubmitReview(r.Context(), customerID, req.OrderLineID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

// --- Wishlist ---

type addToWishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *Handler) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	var req addToWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.wishlist.Add(r.Context(), customerID, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	page, size := pageParams(r)
	entries, pg, err := h.wishlist.List(r.Context(), customerID, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: entries, Pagination: pg})
}

func (h *Handler) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.wishlist.Remove(r.Context(), customerID, pathID(r, "product_id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Addresses ---

func (h *Handler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFromRequest(w, r)
	if !ok {
		return
	}

	var addr entity.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.orders.CreateAddress(r.Context(), customerID, &addr); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, addr)
}

// --- Helpers ---

type pagedResponse struct {
	Data       any             `json:"data"`
	Pagination pagination.Page `json:"pagination"`
}

func customerFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Customer-ID"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "missing or invalid customer identity", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	return page, size
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case entity.IsNotFound(err):
		status = http.StatusNotFound
		msg = err.Error()
	case entity.IsConflict(err):
		status = http.StatusConflict
		msg = err.Error()
	case entity.IsPrecondition(err):
		status = http.StatusBadRequest
		msg = err.Error()
	default:
		slog.Error("Request failed", "err", err)
	}

	respondJSON(w, status, errorResponse{Error: msg})
}

// EnableCORS is a middleware to allow a browser frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Customer-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

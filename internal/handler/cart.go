package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartStore defines the database methods needed by cart handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CartStore interface {
	ListCartItemsByUser(ctx context.Context, userID uuid.UUID) ([]database.ListCartItemsByUserRow, error)
	GetCartItem(ctx context.Context, id uuid.UUID) (database.CartItem, error)
	GetCartItemByUserAndProduct(ctx context.Context, arg database.GetCartItemByUserAndProductParams) (database.CartItem, error)
	CreateCartItem(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	DeleteCartItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
}

// CartHandler handles the authenticated shopping cart endpoints.
type CartHandler struct {
	store CartStore
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(store CartStore) *CartHandler {
	return &CartHandler{store: store}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// cartLineResponse is a cart row joined against current product state.
type cartLineResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"productId"`
	Quantity      int32     `json:"quantity"`
	ProductName   string    `json:"productName"`
	ProductSlug   string    `json:"productSlug"`
	UnitPrice     int64     `json:"unitPrice"`
	LineTotal     int64     `json:"lineTotal"`
	ImageURL      *string   `json:"imageUrl"`
	StockQuantity int32     `json:"stockQuantity"`
	InStock       bool      `json:"inStock"`
}

type cartResponse struct {
	Items      []cartLineResponse `json:"items"`
	TotalItems int32              `json:"totalItems"`
	Subtotal   int64              `json:"subtotal"`
}

func toCartItemResponse(ci database.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:        ci.ID,
		ProductID: ci.ProductID,
		Quantity:  ci.Quantity,
		CreatedAt: ci.CreatedAt,
		UpdatedAt: ci.UpdatedAt,
	}
}

// --- Handlers ---

// List handles GET /cart, returning the user's cart with computed totals.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	rows, err := h.store.ListCartItemsByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list cart items: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	items := make([]cartLineResponse, len(rows))
	var totalItems int32
	var subtotal int64
	for i, row := range rows {
		line := cartLineResponse{
			ID:            row.ID,
			ProductID:     row.ProductID,
			Quantity:      row.Quantity,
			ProductName:   row.ProductName,
			ProductSlug:   row.ProductSlug,
			UnitPrice:     row.ProductPrice,
			LineTotal:     row.ProductPrice * int64(row.Quantity),
			StockQuantity: row.StockQuantity,
			InStock:       row.InStock,
		}
		if row.ProductImage.Valid {
			line.ImageURL = &row.ProductImage.String
		}
		items[i] = line
		totalItems += row.Quantity
		subtotal += line.LineTotal
	}

	writeJSON(w, http.StatusOK, cartResponse{Items: items, TotalItems: totalItems, Subtotal: subtotal})
}

// Add handles POST /cart. Adding a product already in the cart increments the
// existing row; the combined quantity is re-validated against current stock.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PRODUCT_ID", "productId is required")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_PRODUCT_ID", "productId is not a valid ID")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_QUANTITY", "quantity must be at least 1")
		return
	}

	product, err := h.store.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if !product.InStock {
		writeError(w, http.StatusBadRequest, "PRODUCT_NOT_ACTIVE", "product is not available for purchase")
		return
	}

	existing, err := h.store.GetCartItemByUserAndProduct(r.Context(), database.GetCartItemByUserAndProductParams{
		UserID:    claims.UserID,
		ProductID: productID,
	})
	switch {
	case err == nil:
		combined := existing.Quantity + req.Quantity
		if combined > product.StockQuantity {
			writeError(w, http.StatusBadRequest, "INSUFFICIENT_STOCK",
				fmt.Sprintf("only %d of %q in stock", product.StockQuantity, product.Name))
			return
		}
		updated, err := h.store.UpdateCartItemQuantity(r.Context(), database.UpdateCartItemQuantityParams{
			ID:       existing.ID,
			Quantity: combined,
		})
		if err != nil {
			log.Printf("ERROR: update cart item: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toCartItemResponse(updated))
	case errors.Is(err, pgx.ErrNoRows):
		if req.Quantity > product.StockQuantity {
			writeError(w, http.StatusBadRequest, "INSUFFICIENT_STOCK",
				fmt.Sprintf("only %d of %q in stock", product.StockQuantity, product.Name))
			return
		}
		created, err := h.store.CreateCartItem(r.Context(), database.CreateCartItemParams{
			UserID:    claims.UserID,
			ProductID: productID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			log.Printf("ERROR: create cart item: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, toCartItemResponse(created))
	default:
		log.Printf("ERROR: get cart item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// Update handles PUT /cart/{id}, replacing the quantity of an owned cart row.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid cart item ID")
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_QUANTITY", "quantity must be at least 1")
		return
	}

	item, err := h.store.GetCartItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "cart item not found")
			return
		}
		log.Printf("ERROR: get cart item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if item.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "cart item belongs to another user")
		return
	}

	product, err := h.store.GetProduct(r.Context(), item.ProductID)
	if err != nil {
		log.Printf("ERROR: get product: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if req.Quantity > product.StockQuantity {
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_STOCK",
			fmt.Sprintf("only %d of %q in stock", product.StockQuantity, product.Name))
		return
	}

	updated, err := h.store.UpdateCartItemQuantity(r.Context(), database.UpdateCartItemQuantityParams{
		ID:       id,
		Quantity: req.Quantity,
	})
	if err != nil {
		log.Printf("ERROR: update cart item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toCartItemResponse(updated))
}

// Delete handles DELETE /cart/{id} for an owned cart row.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid cart item ID")
		return
	}

	item, err := h.store.GetCartItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "cart item not found")
			return
		}
		log.Printf("ERROR: get cart item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if item.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "cart item belongs to another user")
		return
	}

	if _, err := h.store.DeleteCartItem(r.Context(), id); err != nil {
		log.Printf("ERROR: delete cart item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

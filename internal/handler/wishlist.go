package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WishlistStore defines the database methods needed by wishlist handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type WishlistStore interface {
	ListWishlistByUser(ctx context.Context, userID uuid.UUID) ([]database.ListWishlistByUserRow, error)
	CreateWishlistItem(ctx context.Context, arg database.CreateWishlistItemParams) (database.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, arg database.DeleteWishlistItemParams) (uuid.UUID, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
}

// WishlistHandler handles the authenticated wishlist endpoints.
type WishlistHandler struct {
	store WishlistStore
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(store WishlistStore) *WishlistHandler {
	return &WishlistHandler{store: store}
}

// RegisterRoutes registers wishlist endpoints on the given Chi router.
func (h *WishlistHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{productId}", h.Remove)
}

// --- Request / Response types ---

type addWishlistRequest struct {
	ProductID string `json:"productId"`
}

type wishlistItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"productId"`
	ProductName  string    `json:"productName"`
	ProductSlug  string    `json:"productSlug"`
	ProductPrice int64     `json:"productPrice"`
	ImageURL     *string   `json:"imageUrl"`
	InStock      bool      `json:"inStock"`
	CreatedAt    time.Time `json:"createdAt"`
}

// --- Handlers ---

// List handles GET /wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	rows, err := h.store.ListWishlistByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list wishlist: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]wishlistItemResponse, len(rows))
	for i, row := range rows {
		item := wishlistItemResponse{
			ID:           row.ID,
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			ProductSlug:  row.ProductSlug,
			ProductPrice: row.ProductPrice,
			InStock:      row.InStock,
			CreatedAt:    row.CreatedAt,
		}
		if row.ProductImage.Valid {
			item.ImageURL = &row.ProductImage.String
		}
		resp[i] = item
	}

	writeJSON(w, http.StatusOK, resp)
}

// Add handles POST /wishlist. The unique (user, product) constraint turns a
// repeated add into a 409.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req addWishlistRequest
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

	if _, err := h.store.GetProduct(r.Context(), productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	item, err := h.store.CreateWishlistItem(r.Context(), database.CreateWishlistItemParams{
		UserID:    claims.UserID,
		ProductID: productID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "DUPLICATE_WISHLIST_ITEM", "product is already in the wishlist")
			return
		}
		log.Printf("ERROR: create wishlist item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        item.ID,
		"productId": item.ProductID,
		"createdAt": item.CreatedAt,
	})
}

// Remove handles DELETE /wishlist/{productId}.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid product ID")
		return
	}

	if _, err := h.store.DeleteWishlistItem(r.Context(), database.DeleteWishlistItemParams{
		UserID:    claims.UserID,
		ProductID: productID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "product is not in the wishlist")
			return
		}
		log.Printf("ERROR: delete wishlist item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

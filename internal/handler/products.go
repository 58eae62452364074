package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error)
	CountProducts(ctx context.Context, arg database.CountProductsParams) (int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
}

// ProductHandler handles the public product catalog endpoints.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// --- Response types ---

type productResponse struct {
	ID            uuid.UUID  `json:"id"`
	CategoryID    *uuid.UUID `json:"categoryId"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   *string    `json:"description"`
	Price         int64      `json:"price"`
	OriginalPrice *int64     `json:"originalPrice"`
	StockQuantity int32      `json:"stockQuantity"`
	InStock       bool       `json:"inStock"`
	ImageURL      *string    `json:"imageUrl"`
	Badge         *string    `json:"badge"`
	Rating        *float64   `json:"rating"`
	ReviewCount   int32      `json:"reviewCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		InStock:       p.InStock,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.CategoryID.Valid {
		id := uuid.UUID(p.CategoryID.Bytes)
		resp.CategoryID = &id
	}
	if p.Description.Valid {
		resp.Description = &p.Description.String
	}
	if p.OriginalPrice.Valid {
		resp.OriginalPrice = &p.OriginalPrice.Int64
	}
	if p.ImageUrl.Valid {
		resp.ImageURL = &p.ImageUrl.String
	}
	if p.Badge.Valid {
		resp.Badge = &p.Badge.String
	}
	if p.Rating.Valid {
		resp.Rating = &p.Rating.Float64
	}
	return resp
}

// --- Helpers ---

// parsePagination reads page/limit query params. Limit defaults to 20 and is
// capped at 100; page is 1-based. Malformed or non-positive values are
// rejected with a 400 written to w, signalled by ok=false.
func parsePagination(w http.ResponseWriter, r *http.Request) (page, limit int, ok bool) {
	page = 1
	if s := r.URL.Query().Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
			return 0, 0, false
		}
		page = v
	}
	limit = 20
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return 0, 0, false
		}
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, true
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isValidProductSort(s string) bool {
	switch s {
	case enum.SortPriceAsc, enum.SortPriceDesc, enum.SortName, enum.SortNewest:
		return true
	}
	return false
}

// --- Handlers ---

// List handles GET /products with optional category, search, price range,
// sort, and pagination filters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	minPrice := pgtype.Int8{}
	if s := q.Get("minPrice"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_MIN_PRICE", "minPrice must be a non-negative integer")
			return
		}
		minPrice = pgtype.Int8{Int64: v, Valid: true}
	}

	maxPrice := pgtype.Int8{}
	if s := q.Get("maxPrice"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_MAX_PRICE", "maxPrice must be a non-negative integer")
			return
		}
		maxPrice = pgtype.Int8{Int64: v, Valid: true}
	}

	sortBy := pgtype.Text{}
	if s := q.Get("sort"); s != "" {
		if !isValidProductSort(s) {
			writeError(w, http.StatusBadRequest, "INVALID_SORT", "invalid sort key")
			return
		}
		sortBy = pgtype.Text{String: s, Valid: true}
	}

	products, err := h.store.ListProducts(r.Context(), database.ListProductsParams{
		CategorySlug: optionalText(q.Get("category")),
		Search:       optionalText(q.Get("search")),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		SortBy:       sortBy,
		Limit:        int32(limit),
		Offset:       int32((page - 1) * limit),
	})
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	total, err := h.store.CountProducts(r.Context(), database.CountProductsParams{
		CategorySlug: optionalText(q.Get("category")),
		Search:       optionalText(q.Get("search")),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
	})
	if err != nil {
		log.Printf("ERROR: count products: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, productListResponse{
		Products: resp,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid product ID")
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

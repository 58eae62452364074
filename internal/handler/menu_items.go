package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// MenuItemStore defines the database methods needed by menu-item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuItemStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	CountMenuItems(ctx context.Context, arg database.CountMenuItemsParams) (int64, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
}

// MenuItemHandler handles the public menu-item endpoints.
type MenuItemHandler struct {
	store MenuItemStore
}

// NewMenuItemHandler creates a new MenuItemHandler.
func NewMenuItemHandler(store MenuItemStore) *MenuItemHandler {
	return &MenuItemHandler{store: store}
}

// RegisterRoutes registers menu-item endpoints on the given Chi router.
func (h *MenuItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// --- Response types ---

type menuItemResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurantId"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        int64     `json:"price"`
	Category     string    `json:"category"`
	ImageURL     *string   `json:"imageUrl"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
}

type menuItemListResponse struct {
	MenuItems []menuItemResponse `json:"menuItems"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

type menuItemDetailResponse struct {
	menuItemResponse
	Restaurant restaurantResponse `json:"restaurant"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Price:        m.Price,
		Category:     m.Category,
		IsAvailable:  m.IsAvailable,
		CreatedAt:    m.CreatedAt,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.ImageUrl.Valid {
		resp.ImageURL = &m.ImageUrl.String
	}
	return resp
}

// --- Handlers ---

// List handles GET /menu-items with restaurant, category, search,
// availability, and pagination filters.
func (h *MenuItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	restaurantID := pgtype.UUID{}
	if s := q.Get("restaurantId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_RESTAURANT_ID", "invalid restaurantId")
			return
		}
		restaurantID = pgtype.UUID{Bytes: id, Valid: true}
	}

	available := pgtype.Bool{}
	if s := q.Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_AVAILABLE", "available must be true or false")
			return
		}
		available = pgtype.Bool{Bool: v, Valid: true}
	}

	items, err := h.store.ListMenuItems(r.Context(), database.ListMenuItemsParams{
		RestaurantID: restaurantID,
		Category:     optionalText(q.Get("category")),
		Search:       optionalText(q.Get("search")),
		Available:    available,
		Limit:        int32(limit),
		Offset:       int32((page - 1) * limit),
	})
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	total, err := h.store.CountMenuItems(r.Context(), database.CountMenuItemsParams{
		RestaurantID: restaurantID,
		Category:     optionalText(q.Get("category")),
		Search:       optionalText(q.Get("search")),
		Available:    available,
	})
	if err != nil {
		log.Printf("ERROR: count menu items: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}

	writeJSON(w, http.StatusOK, menuItemListResponse{
		MenuItems: resp,
		Total:     total,
		Page:      page,
		Limit:     limit,
	})
}

// Get handles GET /menu-items/{id}, embedding the owning restaurant.
func (h *MenuItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid menu item ID")
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "menu item not found")
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), item.RestaurantID)
	if err != nil {
		log.Printf("ERROR: get restaurant for menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, menuItemDetailResponse{
		menuItemResponse: toMenuItemResponse(item),
		Restaurant:       toRestaurantResponse(restaurant),
	})
}

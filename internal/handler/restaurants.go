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

// RestaurantStore defines the database methods needed by restaurant handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type RestaurantStore interface {
	ListRestaurants(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error)
	CountRestaurants(ctx context.Context, arg database.CountRestaurantsParams) (int64, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
}

// RestaurantHandler handles the public restaurant endpoints.
type RestaurantHandler struct {
	store RestaurantStore
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(store RestaurantStore) *RestaurantHandler {
	return &RestaurantHandler{store: store}
}

// RegisterRoutes registers restaurant endpoints on the given Chi router.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// --- Response types ---

type restaurantResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Cuisine      string    `json:"cuisine"`
	Description  *string   `json:"description"`
	ImageURL     *string   `json:"imageUrl"`
	IsOpen       bool      `json:"isOpen"`
	MinimumOrder int64     `json:"minimumOrder"`
	DeliveryFee  int64     `json:"deliveryFee"`
	DeliveryTime string    `json:"deliveryTime"`
	Rating       *float64  `json:"rating"`
	CreatedAt    time.Time `json:"createdAt"`
}

type restaurantListResponse struct {
	Restaurants []restaurantResponse `json:"restaurants"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

// restaurantDetailResponse embeds the menu grouped by its free-text category.
type restaurantDetailResponse struct {
	restaurantResponse
	Menu map[string][]menuItemResponse `json:"menu"`
}

func toRestaurantResponse(r database.Restaurant) restaurantResponse {
	resp := restaurantResponse{
		ID:           r.ID,
		Name:         r.Name,
		Slug:         r.Slug,
		Cuisine:      r.Cuisine,
		IsOpen:       r.IsOpen,
		MinimumOrder: r.MinimumOrder,
		DeliveryFee:  r.DeliveryFee,
		DeliveryTime: r.DeliveryTime,
		CreatedAt:    r.CreatedAt,
	}
	if r.Description.Valid {
		resp.Description = &r.Description.String
	}
	if r.ImageUrl.Valid {
		resp.ImageURL = &r.ImageUrl.String
	}
	if r.Rating.Valid {
		resp.Rating = &r.Rating.Float64
	}
	return resp
}

// --- Handlers ---

// List handles GET /restaurants with cuisine, open, search, sort, and
// pagination filters.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	isOpen := pgtype.Bool{}
	if s := q.Get("isOpen"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_IS_OPEN", "isOpen must be true or false")
			return
		}
		isOpen = pgtype.Bool{Bool: v, Valid: true}
	}

	sortKey := q.Get("sort")
	sortBy := pgtype.Text{}
	switch sortKey {
	case "", "name":
	case "delivery_fee", "minimum_order", "rating", "delivery_time":
		sortBy = pgtype.Text{String: sortKey, Valid: true}
	default:
		writeError(w, http.StatusBadRequest, "INVALID_SORT", "invalid sort key")
		return
	}

	restaurants, err := h.store.ListRestaurants(r.Context(), database.ListRestaurantsParams{
		Cuisine: optionalText(q.Get("cuisine")),
		IsOpen:  isOpen,
		Search:  optionalText(q.Get("search")),
		SortBy:  sortBy,
		Limit:   int32(limit),
		Offset:  int32((page - 1) * limit),
	})
	if err != nil {
		log.Printf("ERROR: list restaurants: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	total, err := h.store.CountRestaurants(r.Context(), database.CountRestaurantsParams{
		Cuisine: optionalText(q.Get("cuisine")),
		IsOpen:  isOpen,
		Search:  optionalText(q.Get("search")),
	})
	if err != nil {
		log.Printf("ERROR: count restaurants: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]restaurantResponse, len(restaurants))
	for i, rest := range restaurants {
		resp[i] = toRestaurantResponse(rest)
	}

	writeJSON(w, http.StatusOK, restaurantListResponse{
		Restaurants: resp,
		Total:       total,
		Page:        page,
		Limit:       limit,
	})
}

// Get handles GET /restaurants/{id}, returning the restaurant with its menu
// grouped by category.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid restaurant ID")
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "restaurant not found")
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	menuItems, err := h.store.ListMenuItemsByRestaurant(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	menu := make(map[string][]menuItemResponse)
	for _, mi := range menuItems {
		menu[mi.Category] = append(menu[mi.Category], toMenuItemResponse(mi))
	}

	writeJSON(w, http.StatusOK, restaurantDetailResponse{
		restaurantResponse: toRestaurantResponse(restaurant),
		Menu:               menu,
	})
}

package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Mock RestaurantStore ---

type mockRestaurantStore struct {
	listRestaurantsFn  func(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error)
	countRestaurantsFn func(ctx context.Context, arg database.CountRestaurantsParams) (int64, error)
	getRestaurantFn    func(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	listMenuItemsFn    func(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
}

func (m *mockRestaurantStore) ListRestaurants(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error) {
	if m.listRestaurantsFn != nil {
		return m.listRestaurantsFn(ctx, arg)
	}
	return nil, nil
}

func (m *mockRestaurantStore) CountRestaurants(ctx context.Context, arg database.CountRestaurantsParams) (int64, error) {
	if m.countRestaurantsFn != nil {
		return m.countRestaurantsFn(ctx, arg)
	}
	return 0, nil
}

func (m *mockRestaurantStore) GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error) {
	if m.getRestaurantFn != nil {
		return m.getRestaurantFn(ctx, id)
	}
	return database.Restaurant{}, pgx.ErrNoRows
}

func (m *mockRestaurantStore) ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error) {
	if m.listMenuItemsFn != nil {
		return m.listMenuItemsFn(ctx, restaurantID)
	}
	return nil, nil
}

func setupRestaurantRouter(store *mockRestaurantStore) *chi.Mux {
	h := handler.NewRestaurantHandler(store)
	r := chi.NewRouter()
	r.Route("/restaurants", h.RegisterRoutes)
	return r
}

func namedRestaurant(name, deliveryTime string) database.Restaurant {
	return database.Restaurant{
		ID:           uuid.New(),
		Name:         name,
		Slug:         name,
		Cuisine:      "pizza",
		IsOpen:       true,
		MinimumOrder: 5000,
		DeliveryFee:  500,
		DeliveryTime: deliveryTime,
	}
}

// --- Tests ---

func TestRestaurantList_Public(t *testing.T) {
	store := &mockRestaurantStore{
		listRestaurantsFn: func(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error) {
			return []database.Restaurant{namedRestaurant("a", "25-35"), namedRestaurant("b", "20-30")}, nil
		},
		countRestaurantsFn: func(ctx context.Context, arg database.CountRestaurantsParams) (int64, error) {
			return 2, nil
		},
	}

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["total"].(float64) != 2 {
		t.Errorf("total: got %v", resp["total"])
	}
}

func TestRestaurantList_InvalidIsOpen(t *testing.T) {
	router := setupRestaurantRouter(&mockRestaurantStore{})
	rr := doRequest(t, router, "GET", "/restaurants?isOpen=maybe", nil)
	wantErrorCode(t, rr, http.StatusBadRequest, "INVALID_IS_OPEN")
}

func TestRestaurantList_InvalidSort(t *testing.T) {
	router := setupRestaurantRouter(&mockRestaurantStore{})
	rr := doRequest(t, router, "GET", "/restaurants?sort=vibes", nil)
	wantErrorCode(t, rr, http.StatusBadRequest, "INVALID_SORT")
}

// delivery_time ordering runs in the query so that it holds across pages;
// the handler only forwards the sort key along with the page window.
func TestRestaurantList_SortByDeliveryTime(t *testing.T) {
	var got database.ListRestaurantsParams
	store := &mockRestaurantStore{
		listRestaurantsFn: func(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error) {
			got = arg
			return []database.Restaurant{
				namedRestaurant("fast", "20-30"),
				namedRestaurant("medium", "25-35"),
			}, nil
		},
	}

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants?sort=delivery_time&page=2&limit=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if !got.SortBy.Valid || got.SortBy.String != "delivery_time" {
		t.Errorf("sort: got %+v", got.SortBy)
	}
	if got.Limit != 2 || got.Offset != 2 {
		t.Errorf("window: got limit=%d offset=%d, want limit=2 offset=2", got.Limit, got.Offset)
	}

	resp := decodeJSON(t, rr)
	list := resp["restaurants"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("restaurants: got %d, want 2", len(list))
	}
	if name := list[0].(map[string]interface{})["name"]; name != "fast" {
		t.Errorf("order must come from the store untouched: got %v first", name)
	}
}

func TestRestaurantList_SQLSortsForwarded(t *testing.T) {
	var got database.ListRestaurantsParams
	store := &mockRestaurantStore{
		listRestaurantsFn: func(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error) {
			got = arg
			return nil, nil
		},
	}

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants?sort=delivery_fee", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if !got.SortBy.Valid || got.SortBy.String != "delivery_fee" {
		t.Errorf("sort: got %+v", got.SortBy)
	}
}

func TestRestaurantGet_GroupsMenuByCategory(t *testing.T) {
	restaurant := namedRestaurant("Campus Pizza Co", "25-35")

	store := &mockRestaurantStore{
		getRestaurantFn: func(ctx context.Context, id uuid.UUID) (database.Restaurant, error) {
			return restaurant, nil
		},
		listMenuItemsFn: func(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error) {
			return []database.MenuItem{
				{ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Margherita", Category: "Pizza", Price: 3500, IsAvailable: true},
				{ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Pepperoni", Category: "Pizza", Price: 4000, IsAvailable: true},
				{ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Cola", Category: "Drinks", Price: 600, IsAvailable: true},
			}, nil
		},
	}

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants/"+restaurant.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	if resp["name"] != "Campus Pizza Co" {
		t.Errorf("name: got %v", resp["name"])
	}
	menu := resp["menu"].(map[string]interface{})
	if len(menu["Pizza"].([]interface{})) != 2 {
		t.Errorf("pizza items: got %v", menu["Pizza"])
	}
	if len(menu["Drinks"].([]interface{})) != 1 {
		t.Errorf("drink items: got %v", menu["Drinks"])
	}
}

func TestRestaurantGet_NotFound(t *testing.T) {
	router := setupRestaurantRouter(&mockRestaurantStore{})
	rr := doRequest(t, router, "GET", "/restaurants/"+uuid.NewString(), nil)
	wantErrorCode(t, rr, http.StatusNotFound, "RESTAURANT_NOT_FOUND")
}

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

// --- Mock ProductStore ---

type mockProductStore struct {
	listProductsFn  func(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error)
	countProductsFn func(ctx context.Context, arg database.CountProductsParams) (int64, error)
	getProductFn    func(ctx context.Context, id uuid.UUID) (database.Product, error)
}

func (m *mockProductStore) ListProducts(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx, arg)
	}
	return nil, nil
}

func (m *mockProductStore) CountProducts(ctx context.Context, arg database.CountProductsParams) (int64, error) {
	if m.countProductsFn != nil {
		return m.countProductsFn(ctx, arg)
	}
	return 0, nil
}

func (m *mockProductStore) GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, id)
	}
	return database.Product{}, pgx.ErrNoRows
}

func setupProductRouter(store *mockProductStore) *chi.Mux {
	h := handler.NewProductHandler(store)
	r := chi.NewRouter()
	r.Route("/products", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestProductList_Public(t *testing.T) {
	store := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
			return []database.Product{testProduct("lamp", 1500, 3), testProduct("mouse", 1800, 5)}, nil
		},
		countProductsFn: func(ctx context.Context, arg database.CountProductsParams) (int64, error) {
			return 2, nil
		},
	}

	router := setupProductRouter(store)
	rr := doRequest(t, router, "GET", "/products", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	if resp["total"].(float64) != 2 {
		t.Errorf("total: got %v", resp["total"])
	}
	if resp["page"].(float64) != 1 || resp["limit"].(float64) != 20 {
		t.Errorf("pagination defaults: page=%v limit=%v", resp["page"], resp["limit"])
	}
	if len(resp["products"].([]interface{})) != 2 {
		t.Errorf("products: got %v", resp["products"])
	}
}

func TestProductList_PaginationForwarded(t *testing.T) {
	var got database.ListProductsParams
	store := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
			got = arg
			return nil, nil
		},
	}

	router := setupProductRouter(store)
	rr := doRequest(t, router, "GET", "/products?page=3&limit=10", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got.Limit != 10 || got.Offset != 20 {
		t.Errorf("limit/offset: got %d/%d, want 10/20", got.Limit, got.Offset)
	}
}

func TestProductList_InvalidPagination(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"page not a number", "page=abc", "INVALID_PAGE"},
		{"page zero", "page=0", "INVALID_PAGE"},
		{"negative page", "page=-1", "INVALID_PAGE"},
		{"limit not a number", "limit=abc", "INVALID_LIMIT"},
		{"limit zero", "limit=0", "INVALID_LIMIT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			store := &mockProductStore{
				listProductsFn: func(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
					called = true
					return nil, nil
				},
			}
			router := setupProductRouter(store)
			rr := doRequest(t, router, "GET", "/products?"+tc.query, nil)
			wantErrorCode(t, rr, http.StatusBadRequest, tc.wantCode)
			if called {
				t.Error("store must not be reached on malformed pagination")
			}
		})
	}
}

func TestProductList_LimitCapped(t *testing.T) {
	var got database.ListProductsParams
	store := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
			got = arg
			return nil, nil
		},
	}

	router := setupProductRouter(store)
	rr := doRequest(t, router, "GET", "/products?limit=500", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got.Limit != 100 {
		t.Errorf("limit: got %d, want 100", got.Limit)
	}
}

func TestProductList_InvalidMinPrice(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})

	for _, v := range []string{"abc", "-5"} {
		rr := doRequest(t, router, "GET", "/products?minPrice="+v, nil)
		wantErrorCode(t, rr, http.StatusBadRequest, "INVALID_MIN_PRICE")
	}
}

func TestProductList_InvalidSort(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})
	rr := doRequest(t, router, "GET", "/products?sort=sneaky", nil)
	wantErrorCode(t, rr, http.StatusBadRequest, "INVALID_SORT")
}

func TestProductList_FiltersForwarded(t *testing.T) {
	var got database.ListProductsParams
	store := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
			got = arg
			return nil, nil
		},
	}

	router := setupProductRouter(store)
	rr := doRequest(t, router, "GET", "/products?category=electronics&search=lamp&minPrice=100&maxPrice=2000&sort=price_asc", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got.CategorySlug.String != "electronics" || !got.CategorySlug.Valid {
		t.Errorf("category: got %+v", got.CategorySlug)
	}
	if got.Search.String != "lamp" {
		t.Errorf("search: got %+v", got.Search)
	}
	if got.MinPrice.Int64 != 100 || got.MaxPrice.Int64 != 2000 {
		t.Errorf("price range: got %+v / %+v", got.MinPrice, got.MaxPrice)
	}
	if got.SortBy.String != "price_asc" {
		t.Errorf("sort: got %+v", got.SortBy)
	}
}

func TestProductGet_Success(t *testing.T) {
	product := testProduct("lamp", 1500, 3)
	store := &mockProductStore{
		getProductFn: func(ctx context.Context, id uuid.UUID) (database.Product, error) {
			if id != product.ID {
				t.Errorf("fetched wrong product: %v", id)
			}
			return product, nil
		},
	}

	router := setupProductRouter(store)
	rr := doRequest(t, router, "GET", "/products/"+product.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["name"] != "lamp" || resp["price"].(float64) != 1500 {
		t.Errorf("product: got %v", resp)
	}
}

func TestProductGet_NotFound(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})
	rr := doRequest(t, router, "GET", "/products/"+uuid.NewString(), nil)
	wantErrorCode(t, rr, http.StatusNotFound, "PRODUCT_NOT_FOUND")
}

func TestProductGet_InvalidID(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})
	rr := doRequest(t, router, "GET", "/products/not-a-uuid", nil)
	wantErrorCode(t, rr, http.StatusBadRequest, "INVALID_ID")
}

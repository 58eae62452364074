package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/handler"
	"github.com/campusmart/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type mockReportStore struct {
	orderStatsFn     func(ctx context.Context, userID uuid.UUID) (database.OrderStatsRow, error)
	foodOrderStatsFn func(ctx context.Context, userID uuid.UUID) (database.OrderStatsRow, error)
}

func (m *mockReportStore) GetOrderStatsByUser(ctx context.Context, userID uuid.UUID) (database.OrderStatsRow, error) {
	if m.orderStatsFn != nil {
		return m.orderStatsFn(ctx, userID)
	}
	return database.OrderStatsRow{}, nil
}

func (m *mockReportStore) GetFoodOrderStatsByUser(ctx context.Context, userID uuid.UUID) (database.OrderStatsRow, error) {
	if m.foodOrderStatsFn != nil {
		return m.foodOrderStatsFn(ctx, userID)
	}
	return database.OrderStatsRow{}, nil
}

func setupReportRouter(store *mockReportStore) *chi.Mux {
	h := handler.NewReportHandler(store)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		r.Route("/reports", h.RegisterRoutes)
	})
	return r
}

func TestReportSummary_CombinesVerticals(t *testing.T) {
	userID := uuid.New()
	store := &mockReportStore{
		orderStatsFn: func(ctx context.Context, uid uuid.UUID) (database.OrderStatsRow, error) {
			if uid != userID {
				t.Errorf("stats for wrong user: %v", uid)
			}
			return database.OrderStatsRow{OrderCount: 2, TotalSpent: 23600}, nil
		},
		foodOrderStatsFn: func(ctx context.Context, uid uuid.UUID) (database.OrderStatsRow, error) {
			return database.OrderStatsRow{OrderCount: 1, TotalSpent: 9200}, nil
		},
	}

	router := setupReportRouter(store)
	rr := doAuthRequest(t, router, "GET", "/reports/summary", nil, userID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	if resp["marketplaceOrders"].(float64) != 2 || resp["foodOrders"].(float64) != 1 {
		t.Errorf("counts: got %v", resp)
	}
	if resp["totalOrders"].(float64) != 3 {
		t.Errorf("totalOrders: got %v", resp["totalOrders"])
	}
	if resp["totalSpent"].(float64) != 32800 {
		t.Errorf("totalSpent: got %v", resp["totalSpent"])
	}
	// 32800 / 3 rounded to two places.
	if resp["averageOrderValue"] != "10933.33" {
		t.Errorf("averageOrderValue: got %v, want 10933.33", resp["averageOrderValue"])
	}
}

func TestReportSummary_NoOrders(t *testing.T) {
	router := setupReportRouter(&mockReportStore{})
	rr := doAuthRequest(t, router, "GET", "/reports/summary", nil, uuid.New())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	if resp["totalOrders"].(float64) != 0 {
		t.Errorf("totalOrders: got %v", resp["totalOrders"])
	}
	if resp["averageOrderValue"] != "0.00" {
		t.Errorf("averageOrderValue: got %v, want 0.00", resp["averageOrderValue"])
	}
}

func TestReportSummary_Unauthenticated(t *testing.T) {
	router := setupReportRouter(&mockReportStore{})
	rr := doRequest(t, router, "GET", "/reports/summary", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

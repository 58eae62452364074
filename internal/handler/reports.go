package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportStore defines the database methods needed by the spending summary.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	GetOrderStatsByUser(ctx context.Context, userID uuid.UUID) (database.OrderStatsRow, error)
	GetFoodOrderStatsByUser(ctx context.Context, userID uuid.UUID) (database.OrderStatsRow, error)
}

// ReportHandler handles the authenticated spending summary endpoint.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
}

type spendingSummaryResponse struct {
	MarketplaceOrders int64  `json:"marketplaceOrders"`
	MarketplaceSpent  int64  `json:"marketplaceSpent"`
	FoodOrders        int64  `json:"foodOrders"`
	FoodSpent         int64  `json:"foodSpent"`
	TotalOrders       int64  `json:"totalOrders"`
	TotalSpent        int64  `json:"totalSpent"`
	AverageOrderValue string `json:"averageOrderValue"`
}

// Summary handles GET /reports/summary. Cancelled orders are excluded from
// both counts and totals. The average is exact decimal division rounded to
// two places, not float arithmetic.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	orders, err := h.store.GetOrderStatsByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: get order stats: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	foodOrders, err := h.store.GetFoodOrderStatsByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: get food order stats: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	totalOrders := orders.OrderCount + foodOrders.OrderCount
	totalSpent := orders.TotalSpent + foodOrders.TotalSpent

	average := decimal.Zero
	if totalOrders > 0 {
		average = decimal.NewFromInt(totalSpent).DivRound(decimal.NewFromInt(totalOrders), 2)
	}

	writeJSON(w, http.StatusOK, spendingSummaryResponse{
		MarketplaceOrders: orders.OrderCount,
		MarketplaceSpent:  orders.TotalSpent,
		FoodOrders:        foodOrders.OrderCount,
		FoodSpent:         foodOrders.TotalSpent,
		TotalOrders:       totalOrders,
		TotalSpent:        totalSpent,
		AverageOrderValue: average.StringFixed(2),
	})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/enum"
	"github.com/campusmart/api/internal/middleware"
	"github.com/campusmart/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderStore defines the database methods needed to read and cancel orders.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
}

// OrderCreator places an order from the user's cart.
// Satisfied by *service.OrderService.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderHandler handles the authenticated marketplace order endpoints.
type OrderHandler struct {
	store   OrderStore
	creator OrderCreator
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, creator OrderCreator) *OrderHandler {
	return &OrderHandler{store: store, creator: creator}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/cancel", h.Cancel)
}

// --- Request / Response types ---

// createOrderRequest carries the delivery details for checkout. The userId
// fields exist only to reject clients that try to order on behalf of someone
// else; the order always belongs to the authenticated user.
type createOrderRequest struct {
	DeliveryAddress string  `json:"deliveryAddress"`
	DeliveryPhone   string  `json:"deliveryPhone"`
	DeliveryNotes   string  `json:"deliveryNotes"`
	DeliveryFee     int64   `json:"deliveryFee"`
	UserID          *string `json:"userId"`
	UserIDSnake     *string `json:"user_id"`
}

type orderItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"productId"`
	ProductName  string    `json:"productName"`
	ProductImage *string   `json:"productImage"`
	Quantity     int32     `json:"quantity"`
	UnitPrice    int64     `json:"unitPrice"`
	TotalPrice   int64     `json:"totalPrice"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	Subtotal        int64               `json:"subtotal"`
	DeliveryFee     int64               `json:"deliveryFee"`
	Total           int64               `json:"total"`
	DeliveryAddress string              `json:"deliveryAddress"`
	DeliveryPhone   string              `json:"deliveryPhone"`
	DeliveryNotes   *string             `json:"deliveryNotes"`
	Items           []orderItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toOrderItemResponse(oi database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:          oi.ID,
		ProductID:   oi.ProductID,
		ProductName: oi.ProductName,
		Quantity:    oi.Quantity,
		UnitPrice:   oi.UnitPrice,
		TotalPrice:  oi.TotalPrice,
	}
	if oi.ProductImage.Valid {
		resp.ProductImage = &oi.ProductImage.String
	}
	return resp
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		Total:           o.Total,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryPhone:   o.DeliveryPhone,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.DeliveryNotes.Valid {
		resp.DeliveryNotes = &o.DeliveryNotes.String
	}
	for _, oi := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(oi))
	}
	return resp
}

// --- Handlers ---

// List handles GET /orders for the authenticated user.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	orders, err := h.store.ListOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		resp = append(resp, toOrderResponse(o, items))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /orders, placing an order from the user's cart.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.UserID != nil || req.UserIDSnake != nil {
		writeError(w, http.StatusBadRequest, "USER_ID_NOT_ALLOWED", "userId cannot be set by the client")
		return
	}

	result, err := h.creator.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:          claims.UserID,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryPhone:   req.DeliveryPhone,
		DeliveryNotes:   req.DeliveryNotes,
		DeliveryFee:     req.DeliveryFee,
	})
	if err != nil {
		var unavailable *service.ProductUnavailableError
		var insufficient *service.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrMissingDeliveryAddress):
			writeError(w, http.StatusBadRequest, "MISSING_DELIVERY_ADDRESS", err.Error())
		case errors.Is(err, service.ErrMissingDeliveryPhone):
			writeError(w, http.StatusBadRequest, "MISSING_DELIVERY_PHONE", err.Error())
		case errors.Is(err, service.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "EMPTY_CART", err.Error())
		case errors.As(err, &unavailable):
			writeError(w, http.StatusBadRequest, "PRODUCT_NOT_ACTIVE", err.Error())
		case errors.As(err, &insufficient):
			writeError(w, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error())
		default:
			log.Printf("ERROR: create order: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order, result.Items))
}

// Get handles GET /orders/{id} for the owning user.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if order.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "order belongs to another user")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// Cancel handles POST /orders/{id}/cancel. The update is conditional on the
// order still being pending; a miss is re-fetched to report the exact reason.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	order, err := h.store.CancelOrder(r.Context(), database.CancelOrderParams{ID: id, UserID: claims.UserID})
	if err == nil {
		writeJSON(w, http.StatusOK, toOrderResponse(order, nil))
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: cancel order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	current, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if current.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "order belongs to another user")
		return
	}
	if current.Status == enum.OrderStatusCancelled {
		writeError(w, http.StatusBadRequest, "ALREADY_CANCELLED", "order is already cancelled")
		return
	}
	writeError(w, http.StatusBadRequest, "CANNOT_CANCEL", "order can no longer be cancelled")
}

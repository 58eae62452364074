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
	"github.com/campusmart/api/internal/enum"
	"github.com/campusmart/api/internal/middleware"
	"github.com/campusmart/api/internal/service"
	"github.com/campusmart/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FoodOrderStore defines the database methods needed to read and mutate food
// orders. Satisfied by *database.Queries; narrow interface for testability.
type FoodOrderStore interface {
	ListFoodOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.FoodOrder, error)
	ListFoodOrderItemsByOrder(ctx context.Context, foodOrderID uuid.UUID) ([]database.FoodOrderItem, error)
	GetFoodOrder(ctx context.Context, id uuid.UUID) (database.FoodOrder, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	UpdateFoodOrderStatus(ctx context.Context, arg database.UpdateFoodOrderStatusParams) (database.FoodOrder, error)
	CancelFoodOrder(ctx context.Context, arg database.CancelFoodOrderParams) (database.FoodOrder, error)
}

// FoodOrderCreator places a food order. Satisfied by *service.FoodOrderService.
type FoodOrderCreator interface {
	CreateFoodOrder(ctx context.Context, req service.CreateFoodOrderRequest) (*service.CreateFoodOrderResult, error)
}

// StatusNotifier pushes order events to the owner's open WebSocket
// connections. Satisfied by *ws.Hub; may be nil when no hub is running.
type StatusNotifier interface {
	BroadcastToUser(userID uuid.UUID, event ws.Event)
}

// FoodOrderHandler handles the authenticated food-order endpoints.
type FoodOrderHandler struct {
	store    FoodOrderStore
	creator  FoodOrderCreator
	notifier StatusNotifier
}

// NewFoodOrderHandler creates a new FoodOrderHandler.
func NewFoodOrderHandler(store FoodOrderStore, creator FoodOrderCreator, notifier StatusNotifier) *FoodOrderHandler {
	return &FoodOrderHandler{store: store, creator: creator, notifier: notifier}
}

// RegisterRoutes registers food-order endpoints on the given Chi router.
func (h *FoodOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
}

// allowedTransitions restricts PATCH to the forward fulfillment sequence.
// Cancellation goes through the dedicated cancel endpoint.
var allowedTransitions = map[string]string{
	enum.FoodOrderStatusPending:        enum.FoodOrderStatusConfirmed,
	enum.FoodOrderStatusConfirmed:      enum.FoodOrderStatusPreparing,
	enum.FoodOrderStatusPreparing:      enum.FoodOrderStatusReady,
	enum.FoodOrderStatusReady:          enum.FoodOrderStatusOutForDelivery,
	enum.FoodOrderStatusOutForDelivery: enum.FoodOrderStatusDelivered,
}

func isValidFoodOrderStatus(s string) bool {
	switch s {
	case enum.FoodOrderStatusPending, enum.FoodOrderStatusConfirmed, enum.FoodOrderStatusPreparing,
		enum.FoodOrderStatusReady, enum.FoodOrderStatusOutForDelivery, enum.FoodOrderStatusDelivered,
		enum.FoodOrderStatusCancelled:
		return true
	}
	return false
}

// --- Request / Response types ---

type createFoodOrderRequest struct {
	RestaurantID         string                 `json:"restaurantId"`
	Items                []foodOrderItemRequest `json:"items"`
	DeliveryAddress      string                 `json:"deliveryAddress"`
	Phone                string                 `json:"phone"`
	DeliveryInstructions string                 `json:"deliveryInstructions"`
	PaymentMethod        string                 `json:"paymentMethod"`
}

type foodOrderItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int32  `json:"quantity"`
}

type updateFoodOrderStatusRequest struct {
	Status string `json:"status"`
}

type foodOrderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menuItemId"`
	ItemName   string    `json:"itemName"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  int64     `json:"unitPrice"`
	TotalPrice int64     `json:"totalPrice"`
}

type foodOrderResponse struct {
	ID                   uuid.UUID               `json:"id"`
	RestaurantID         uuid.UUID               `json:"restaurantId"`
	OrderNumber          string                  `json:"orderNumber"`
	Status               string                  `json:"status"`
	Subtotal             int64                   `json:"subtotal"`
	DeliveryFee          int64                   `json:"deliveryFee"`
	Total                int64                   `json:"total"`
	DeliveryAddress      string                  `json:"deliveryAddress"`
	Phone                string                  `json:"phone"`
	DeliveryInstructions *string                 `json:"deliveryInstructions"`
	PaymentMethod        string                  `json:"paymentMethod"`
	Items                []foodOrderItemResponse `json:"items,omitempty"`
	Restaurant           *restaurantResponse     `json:"restaurant,omitempty"`
	CreatedAt            time.Time               `json:"createdAt"`
	UpdatedAt            time.Time               `json:"updatedAt"`
}

func toFoodOrderItemResponse(fi database.FoodOrderItem) foodOrderItemResponse {
	return foodOrderItemResponse{
		ID:         fi.ID,
		MenuItemID: fi.MenuItemID,
		ItemName:   fi.ItemName,
		Quantity:   fi.Quantity,
		UnitPrice:  fi.UnitPrice,
		TotalPrice: fi.TotalPrice,
	}
}

func toFoodOrderResponse(fo database.FoodOrder, items []database.FoodOrderItem, restaurant *database.Restaurant) foodOrderResponse {
	resp := foodOrderResponse{
		ID:              fo.ID,
		RestaurantID:    fo.RestaurantID,
		OrderNumber:     fo.OrderNumber,
		Status:          fo.Status,
		Subtotal:        fo.Subtotal,
		DeliveryFee:     fo.DeliveryFee,
		Total:           fo.Total,
		DeliveryAddress: fo.DeliveryAddress,
		Phone:           fo.Phone,
		PaymentMethod:   fo.PaymentMethod,
		CreatedAt:       fo.CreatedAt,
		UpdatedAt:       fo.UpdatedAt,
	}
	if fo.DeliveryInstructions.Valid {
		resp.DeliveryInstructions = &fo.DeliveryInstructions.String
	}
	for _, fi := range items {
		resp.Items = append(resp.Items, toFoodOrderItemResponse(fi))
	}
	if restaurant != nil {
		r := toRestaurantResponse(*restaurant)
		resp.Restaurant = &r
	}
	return resp
}

// notifyStatus pushes a status event to the order owner, if a hub is wired.
func (h *FoodOrderHandler) notifyStatus(fo database.FoodOrder, eventType string) {
	if h.notifier == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"orderId":     fo.ID,
		"orderNumber": fo.OrderNumber,
		"status":      fo.Status,
	})
	if err != nil {
		return
	}
	h.notifier.BroadcastToUser(fo.UserID, ws.Event{Type: eventType, Payload: payload})
}

// --- Handlers ---

// List handles GET /food-orders for the authenticated user.
func (h *FoodOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	orders, err := h.store.ListFoodOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list food orders: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]foodOrderResponse, 0, len(orders))
	for _, fo := range orders {
		items, err := h.store.ListFoodOrderItemsByOrder(r.Context(), fo.ID)
		if err != nil {
			log.Printf("ERROR: list food order items: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		resp = append(resp, toFoodOrderResponse(fo, items, nil))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /food-orders.
func (h *FoodOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req createFoodOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.RestaurantID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_RESTAURANT_ID", "restaurantId is required")
		return
	}

	items := make([]service.CreateFoodOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateFoodOrderItemRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}

	result, err := h.creator.CreateFoodOrder(r.Context(), service.CreateFoodOrderRequest{
		UserID:               claims.UserID,
		RestaurantID:         req.RestaurantID,
		Items:                items,
		DeliveryAddress:      req.DeliveryAddress,
		Phone:                req.Phone,
		DeliveryInstructions: req.DeliveryInstructions,
		PaymentMethod:        req.PaymentMethod,
	})
	if err != nil {
		var unavailable *service.MenuItemUnavailableError
		var belowMin *service.BelowMinimumOrderError
		switch {
		case errors.Is(err, service.ErrInvalidRestaurantID):
			writeError(w, http.StatusBadRequest, "MISSING_RESTAURANT_ID", err.Error())
		case errors.Is(err, service.ErrEmptyItems), errors.Is(err, service.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, "INVALID_ITEMS", err.Error())
		case errors.Is(err, service.ErrMissingDeliveryAddress):
			writeError(w, http.StatusBadRequest, "MISSING_DELIVERY_ADDRESS", err.Error())
		case errors.Is(err, service.ErrMissingDeliveryPhone):
			writeError(w, http.StatusBadRequest, "MISSING_DELIVERY_PHONE", err.Error())
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			writeError(w, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", err.Error())
		case errors.Is(err, service.ErrRestaurantNotFound):
			writeError(w, http.StatusNotFound, "RESTAURANT_NOT_FOUND", err.Error())
		case errors.Is(err, service.ErrRestaurantClosed):
			writeError(w, http.StatusBadRequest, "RESTAURANT_CLOSED", err.Error())
		case errors.Is(err, service.ErrInvalidMenuItemID), errors.Is(err, service.ErrMenuItemNotFound),
			errors.Is(err, service.ErrMenuItemMismatch):
			writeError(w, http.StatusBadRequest, "INVALID_MENU_ITEMS", err.Error())
		case errors.As(err, &unavailable):
			writeError(w, http.StatusBadRequest, "MENU_ITEM_UNAVAILABLE", err.Error())
		case errors.As(err, &belowMin):
			writeError(w, http.StatusBadRequest, "BELOW_MINIMUM_ORDER",
				fmt.Sprintf("order subtotal %d is below the minimum order of %d", belowMin.Subtotal, belowMin.MinimumOrder))
		default:
			log.Printf("ERROR: create food order: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	h.notifyStatus(result.Order, "food_order.created")
	writeJSON(w, http.StatusCreated, toFoodOrderResponse(result.Order, result.Items, &result.Restaurant))
}

// Get handles GET /food-orders/{id}. A mismatch in ownership reads as not
// found so order IDs cannot be probed.
func (h *FoodOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	fo, err := h.store.GetFoodOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get food order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if fo.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		return
	}

	items, err := h.store.ListFoodOrderItemsByOrder(r.Context(), fo.ID)
	if err != nil {
		log.Printf("ERROR: list food order items: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), fo.RestaurantID)
	if err != nil {
		log.Printf("ERROR: get restaurant: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toFoodOrderResponse(fo, items, &restaurant))
}

// UpdateStatus handles PATCH /food-orders/{id}. Only the next status in the
// fulfillment sequence is accepted, and the update is a compare-and-set
// against the status that was read.
func (h *FoodOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	var req updateFoodOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "MISSING_STATUS", "status is required")
		return
	}
	if !isValidFoodOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown status")
		return
	}

	fo, err := h.store.GetFoodOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get food order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if fo.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		return
	}

	if allowedTransitions[fo.Status] != req.Status {
		writeError(w, http.StatusConflict, "INVALID_STATUS",
			fmt.Sprintf("cannot move from %q to %q", fo.Status, req.Status))
		return
	}

	updated, err := h.store.UpdateFoodOrderStatus(r.Context(), database.UpdateFoodOrderStatusParams{
		ID:         fo.ID,
		Status:     req.Status,
		PrevStatus: fo.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status changed between read and update.
			writeError(w, http.StatusConflict, "INVALID_STATUS", "order status changed, retry")
			return
		}
		log.Printf("ERROR: update food order status: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	h.notifyStatus(updated, "food_order.status_updated")
	writeJSON(w, http.StatusOK, toFoodOrderResponse(updated, nil, nil))
}

// Cancel handles POST /food-orders/{id}/cancel. The update only applies while
// the order is still pending or confirmed; a miss is re-fetched to report the
// exact reason.
func (h *FoodOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	fo, err := h.store.CancelFoodOrder(r.Context(), database.CancelFoodOrderParams{ID: id, UserID: claims.UserID})
	if err == nil {
		h.notifyStatus(fo, "food_order.cancelled")
		writeJSON(w, http.StatusOK, toFoodOrderResponse(fo, nil, nil))
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: cancel food order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	current, err := h.store.GetFoodOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get food order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if current.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		return
	}
	if current.Status == enum.FoodOrderStatusCancelled {
		writeError(w, http.StatusBadRequest, "ALREADY_CANCELLED", "order is already cancelled")
		return
	}
	writeError(w, http.StatusBadRequest, "CANNOT_CANCEL",
		fmt.Sprintf("order in status %q can no longer be cancelled", current.Status))
}

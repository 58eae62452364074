package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/handler"
	"github.com/campusmart/api/internal/middleware"
	"github.com/campusmart/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Mock OrderStore / OrderCreator ---

type mockOrderStore struct {
	listOrdersFn     func(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	listOrderItemsFn func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	getOrderFn       func(ctx context.Context, id uuid.UUID) (database.Order, error)
	cancelOrderFn    func(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
}

func (m *mockOrderStore) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsFn != nil {
		return m.listOrderItemsFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
	if m.cancelOrderFn != nil {
		return m.cancelOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

type mockOrderCreator struct {
	createOrderFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

func (m *mockOrderCreator) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, req)
	}
	return nil, service.ErrEmptyCart
}

// --- Setup ---

func setupOrderRouter(store *mockOrderStore, creator *mockOrderCreator) *chi.Mux {
	h := handler.NewOrderHandler(store, creator)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		r.Route("/orders", h.RegisterRoutes)
	})
	return r
}

func testOrder(userID uuid.UUID, status string) database.Order {
	return database.Order{
		ID:              uuid.New(),
		UserID:          userID,
		OrderNumber:     "ORD-1700000000000-0042",
		Status:          status,
		Subtotal:        11300,
		DeliveryFee:     500,
		Total:           11800,
		DeliveryAddress: "Dorm 4, Room 12",
		DeliveryPhone:   "+15550100",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func validCheckoutBody() map[string]interface{} {
	return map[string]interface{}{
		"deliveryAddress": "Dorm 4, Room 12",
		"deliveryPhone":   "+15550100",
		"deliveryFee":     500,
	}
}

// --- Tests ---

func TestOrderCreate_Success(t *testing.T) {
	userID := uuid.New()
	order := testOrder(userID, "pending")

	creator := &mockOrderCreator{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			if req.UserID != userID {
				t.Errorf("user id: got %v, want %v", req.UserID, userID)
			}
			if req.DeliveryAddress != "Dorm 4, Room 12" {
				t.Errorf("address: got %q", req.DeliveryAddress)
			}
			return &service.CreateOrderResult{
				Order: order,
				Items: []database.OrderItem{
					{ID: uuid.New(), OrderID: order.ID, ProductID: uuid.New(), ProductName: "Lamp", Quantity: 2, UnitPrice: 1500, TotalPrice: 3000},
				},
			}, nil
		},
	}

	router := setupOrderRouter(&mockOrderStore{}, creator)
	rr := doAuthRequest(t, router, "POST", "/orders", validCheckoutBody(), userID)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	if resp["orderNumber"] != order.OrderNumber {
		t.Errorf("orderNumber: got %v", resp["orderNumber"])
	}
	if resp["status"] != "pending" {
		t.Errorf("status: got %v", resp["status"])
	}
	if resp["total"].(float64) != 11800 {
		t.Errorf("total: got %v", resp["total"])
	}
	if len(resp["items"].([]interface{})) != 1 {
		t.Errorf("items: got %v", resp["items"])
	}
}

func TestOrderCreate_RejectsClientUserID(t *testing.T) {
	called := false
	creator := &mockOrderCreator{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			called = true
			return nil, service.ErrEmptyCart
		},
	}
	router := setupOrderRouter(&mockOrderStore{}, creator)

	for _, field := range []string{"userId", "user_id"} {
		body := validCheckoutBody()
		body[field] = uuid.NewString()
		rr := doAuthRequest(t, router, "POST", "/orders", body, uuid.New())
		wantErrorCode(t, rr, http.StatusBadRequest, "USER_ID_NOT_ALLOWED")
	}
	if called {
		t.Error("service must not be reached when userId is supplied")
	}
}

func TestOrderCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing address", service.ErrMissingDeliveryAddress, http.StatusBadRequest, "MISSING_DELIVERY_ADDRESS"},
		{"missing phone", service.ErrMissingDeliveryPhone, http.StatusBadRequest, "MISSING_DELIVERY_PHONE"},
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
		{"product inactive", &service.ProductUnavailableError{ProductName: "Lamp"}, http.StatusBadRequest, "PRODUCT_NOT_ACTIVE"},
		{"insufficient stock", &service.InsufficientStockError{ProductName: "Lamp", Requested: 5, Available: 3}, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			creator := &mockOrderCreator{
				createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
					return nil, tc.err
				},
			}
			router := setupOrderRouter(&mockOrderStore{}, creator)
			rr := doAuthRequest(t, router, "POST", "/orders", validCheckoutBody(), uuid.New())
			wantErrorCode(t, rr, tc.wantStatus, tc.wantCode)
		})
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderStore{}, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "GET", "/orders/"+uuid.NewString(), nil, uuid.New())
	wantErrorCode(t, rr, http.StatusNotFound, "ORDER_NOT_FOUND")
}

func TestOrderGet_OtherUsersOrder(t *testing.T) {
	owner := uuid.New()
	order := testOrder(owner, "pending")

	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
	}

	router := setupOrderRouter(store, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "GET", "/orders/"+order.ID.String(), nil, uuid.New())
	wantErrorCode(t, rr, http.StatusForbidden, "FORBIDDEN")
}

func TestOrderGet_InvalidID(t *testing.T) {
	router := setupOrderRouter(&mockOrderStore{}, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "GET", "/orders/not-a-uuid", nil, uuid.New())
	wantErrorCode(t, rr, http.StatusBadRequest, "INVALID_ID")
}

func TestOrderCancel_Pending(t *testing.T) {
	userID := uuid.New()
	order := testOrder(userID, "pending")

	store := &mockOrderStore{
		cancelOrderFn: func(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
			if arg.ID != order.ID || arg.UserID != userID {
				t.Errorf("cancel params: got %+v", arg)
			}
			cancelled := order
			cancelled.Status = "cancelled"
			return cancelled, nil
		},
	}

	router := setupOrderRouter(store, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "POST", "/orders/"+order.ID.String()+"/cancel", nil, userID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeJSON(t, rr); resp["status"] != "cancelled" {
		t.Errorf("status: got %v, want cancelled", resp["status"])
	}
}

func TestOrderCancel_AlreadyCancelled(t *testing.T) {
	userID := uuid.New()
	order := testOrder(userID, "cancelled")

	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
	}

	router := setupOrderRouter(store, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "POST", "/orders/"+order.ID.String()+"/cancel", nil, userID)
	wantErrorCode(t, rr, http.StatusBadRequest, "ALREADY_CANCELLED")
}

func TestOrderCancel_OtherUsersOrder(t *testing.T) {
	owner := uuid.New()
	order := testOrder(owner, "pending")

	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
	}

	router := setupOrderRouter(store, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "POST", "/orders/"+order.ID.String()+"/cancel", nil, uuid.New())
	wantErrorCode(t, rr, http.StatusForbidden, "FORBIDDEN")
}

func TestOrderCancel_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderStore{}, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "POST", "/orders/"+uuid.NewString()+"/cancel", nil, uuid.New())
	wantErrorCode(t, rr, http.StatusNotFound, "ORDER_NOT_FOUND")
}

func TestOrderList_ReturnsOwnOrders(t *testing.T) {
	userID := uuid.New()
	orders := []database.Order{testOrder(userID, "pending"), testOrder(userID, "cancelled")}

	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, uid uuid.UUID) ([]database.Order, error) {
			if uid != userID {
				t.Errorf("listed orders for wrong user: %v", uid)
			}
			return orders, nil
		},
	}

	router := setupOrderRouter(store, &mockOrderCreator{})
	rr := doAuthRequest(t, router, "GET", "/orders", nil, userID)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeJSONList(t, rr); len(resp) != 2 {
		t.Errorf("orders: got %d, want 2", len(resp))
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidRestaurantID  = errors.New("invalid restaurant_id")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrRestaurantClosed     = errors.New("restaurant is not accepting orders")
	ErrInvalidMenuItemID    = errors.New("invalid menu item id")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrMenuItemMismatch     = errors.New("menu item does not belong to restaurant")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
)

// MenuItemUnavailableError reports an ordered menu item that is currently
// marked unavailable.
type MenuItemUnavailableError struct {
	ItemName string
}

func (e *MenuItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item %q is not available", e.ItemName)
}

// BelowMinimumOrderError carries both amounts so the response can name the
// computed subtotal and the required minimum.
type BelowMinimumOrderError struct {
	Subtotal     int64
	MinimumOrder int64
}

func (e *BelowMinimumOrderError) Error() string {
	return fmt.Sprintf("subtotal %d is below the restaurant minimum order of %d", e.Subtotal, e.MinimumOrder)
}

// FoodOrderStore defines the DB methods needed to place a food order.
// Satisfied by *database.Queries (and its WithTx variant).
type FoodOrderStore interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateFoodOrder(ctx context.Context, arg database.CreateFoodOrderParams) (database.FoodOrder, error)
	CreateFoodOrderItem(ctx context.Context, arg database.CreateFoodOrderItemParams) (database.FoodOrderItem, error)
}

// NewFoodOrderStore creates a FoodOrderStore from a DBTX (pool or tx).
type NewFoodOrderStore func(db database.DBTX) FoodOrderStore

// CreateFoodOrderRequest is the input for placing a food order. Item IDs
// arrive as strings and are parsed here, mirroring the transport payload.
type CreateFoodOrderRequest struct {
	UserID               uuid.UUID
	RestaurantID         string
	Items                []CreateFoodOrderItemRequest
	DeliveryAddress      string
	Phone                string
	DeliveryInstructions string
	PaymentMethod        string
}

type CreateFoodOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
}

// CreateFoodOrderResult is the created order with its items and restaurant.
type CreateFoodOrderResult struct {
	Order      database.FoodOrder
	Items      []database.FoodOrderItem
	Restaurant database.Restaurant
}

// FoodOrderService handles food-order placement. Food orders are scoped to a
// single restaurant and never touch the shared marketplace cart.
type FoodOrderService struct {
	pool     TxBeginner
	newStore NewFoodOrderStore
}

// NewFoodOrderService creates a new FoodOrderService.
func NewFoodOrderService(pool TxBeginner, newStore NewFoodOrderStore) *FoodOrderService {
	return &FoodOrderService{pool: pool, newStore: newStore}
}

// CreateFoodOrder validates the restaurant and every menu item, applies the
// minimum-order rule, derives the delivery fee from the restaurant record,
// and persists the order and its items in a single transaction.
func (s *FoodOrderService) CreateFoodOrder(ctx context.Context, req CreateFoodOrderRequest) (*CreateFoodOrderResult, error) {
	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return nil, ErrInvalidRestaurantID
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, ErrMissingDeliveryAddress
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, ErrMissingDeliveryPhone
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = enum.PaymentMethodCash
	}
	if !isValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	restaurant, err := store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if !restaurant.IsOpen {
		return nil, ErrRestaurantClosed
	}

	// Unit prices always come from the server-side menu record; client-sent
	// amounts are never trusted.
	type pricedItem struct {
		menuItem database.MenuItem
		quantity int32
	}
	var subtotal int64
	priced := make([]pricedItem, 0, len(req.Items))
	for i, it := range req.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		menuItemID, err := uuid.Parse(it.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidMenuItemID)
		}
		menuItem, err := store.GetMenuItem(ctx, menuItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get menu item: %w", i, err)
		}
		if menuItem.RestaurantID != restaurant.ID {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrMenuItemMismatch)
		}
		if !menuItem.IsAvailable {
			return nil, &MenuItemUnavailableError{ItemName: menuItem.Name}
		}
		subtotal += menuItem.Price * int64(it.Quantity)
		priced = append(priced, pricedItem{menuItem: menuItem, quantity: it.Quantity})
	}

	if subtotal < restaurant.MinimumOrder {
		return nil, &BelowMinimumOrderError{Subtotal: subtotal, MinimumOrder: restaurant.MinimumOrder}
	}

	deliveryFee := restaurant.DeliveryFee
	total := subtotal + deliveryFee

	instructions := pgtype.Text{}
	if req.DeliveryInstructions != "" {
		instructions = pgtype.Text{String: req.DeliveryInstructions, Valid: true}
	}

	order, err := store.CreateFoodOrder(ctx, database.CreateFoodOrderParams{
		UserID:               req.UserID,
		RestaurantID:         restaurant.ID,
		OrderNumber:          GenerateOrderNumber("FO"),
		Status:               enum.FoodOrderStatusPending,
		Subtotal:             subtotal,
		DeliveryFee:          deliveryFee,
		Total:                total,
		DeliveryAddress:      req.DeliveryAddress,
		Phone:                req.Phone,
		DeliveryInstructions: instructions,
		PaymentMethod:        paymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("create food order: %w", err)
	}

	items := make([]database.FoodOrderItem, 0, len(priced))
	for _, pi := range priced {
		item, err := store.CreateFoodOrderItem(ctx, database.CreateFoodOrderItemParams{
			FoodOrderID: order.ID,
			MenuItemID:  pi.menuItem.ID,
			ItemName:    pi.menuItem.Name,
			Quantity:    pi.quantity,
			UnitPrice:   pi.menuItem.Price,
			TotalPrice:  pi.menuItem.Price * int64(pi.quantity),
		})
		if err != nil {
			return nil, fmt.Errorf("create food order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateFoodOrderResult{Order: order, Items: items, Restaurant: restaurant}, nil
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodMobileMoney:
		return true
	}
	return false
}

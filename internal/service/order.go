package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Errors returned by the checkout services.
var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrMissingDeliveryAddress = errors.New("delivery address is required")
	ErrMissingDeliveryPhone   = errors.New("delivery phone is required")
	ErrInvalidQuantity        = errors.New("quantity must be >= 1")
	ErrProductNotFound        = errors.New("product not found")
)

// ProductUnavailableError reports a cart item whose product is no longer
// purchasable. Checkout aborts on the first violation.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available", e.ProductName)
}

// InsufficientStockError names the offending product and the quantity that is
// actually available.
type InsufficientStockError struct {
	ProductName string
	Requested   int32
	Available   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to place a marketplace order.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	ListCartItemsByUser(ctx context.Context, userID uuid.UUID) ([]database.ListCartItemsByUserRow, error)
	DecrementProductStock(ctx context.Context, arg database.DecrementProductStockParams) (database.DecrementProductStockRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DeleteCartItemsByUser(ctx context.Context, userID uuid.UUID) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for placing an order from the
// user's cart. The user ID always comes from the authenticated session.
type CreateOrderRequest struct {
	UserID          uuid.UUID
	DeliveryAddress string
	DeliveryPhone   string
	DeliveryNotes   string
	DeliveryFee     int64
}

// CreateOrderResult is the created order with its item snapshots.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles marketplace checkout.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// GenerateOrderNumber builds a human-readable order reference: prefix,
// millisecond timestamp, and a random 4-digit suffix. Collision odds are
// accepted as negligible and not checked.
func GenerateOrderNumber(prefix string) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
}

// CreateOrder resolves the user's cart, re-validates stock, reserves it,
// computes totals in integer minor units, and persists the order, its item
// snapshots, and the cart clear in a single transaction.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, ErrMissingDeliveryAddress
	}
	if strings.TrimSpace(req.DeliveryPhone) == "" {
		return nil, ErrMissingDeliveryPhone
	}

	// Client-supplied fee is clamped, never trusted below zero.
	deliveryFee := req.DeliveryFee
	if deliveryFee < 0 {
		deliveryFee = 0
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	cart, err := store.ListCartItemsByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Re-validate every line against current product state, then reserve the
	// stock with a conditional decrement. The whole checkout aborts on the
	// first violation.
	var subtotal int64
	for _, it := range cart {
		if !it.InStock {
			return nil, &ProductUnavailableError{ProductName: it.ProductName}
		}
		if it.StockQuantity < it.Quantity {
			return nil, &InsufficientStockError{
				ProductName: it.ProductName,
				Requested:   it.Quantity,
				Available:   it.StockQuantity,
			}
		}
		if _, err := store.DecrementProductStock(ctx, database.DecrementProductStockParams{
			ID:       it.ProductID,
			Quantity: it.Quantity,
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Lost a race against a concurrent checkout.
				return nil, &InsufficientStockError{
					ProductName: it.ProductName,
					Requested:   it.Quantity,
					Available:   it.StockQuantity,
				}
			}
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		subtotal += it.ProductPrice * int64(it.Quantity)
	}

	total := subtotal + deliveryFee

	notes := pgtype.Text{}
	if req.DeliveryNotes != "" {
		notes = pgtype.Text{String: req.DeliveryNotes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:          req.UserID,
		OrderNumber:     GenerateOrderNumber("ORD"),
		Status:          enum.OrderStatusPending,
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		Total:           total,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryPhone:   req.DeliveryPhone,
		DeliveryNotes:   notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(cart))
	for _, it := range cart {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:      order.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			UnitPrice:    it.ProductPrice,
			TotalPrice:   it.ProductPrice * int64(it.Quantity),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := store.DeleteCartItemsByUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

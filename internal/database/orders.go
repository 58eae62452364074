package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, order_number, status, subtotal, delivery_fee, total,
delivery_address, delivery_phone, delivery_notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&o.DeliveryAddress, &o.DeliveryPhone, &o.DeliveryNotes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOrder = `
INSERT INTO orders (user_id, order_number, status, subtotal, delivery_fee, total,
                    delivery_address, delivery_phone, delivery_notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + orderColumns + `
`

type CreateOrderParams struct {
	UserID          uuid.UUID
	OrderNumber     string
	Status          string
	Subtotal        int64
	DeliveryFee     int64
	Total           int64
	DeliveryAddress string
	DeliveryPhone   string
	DeliveryNotes   pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.UserID, arg.OrderNumber, arg.Status, arg.Subtotal, arg.DeliveryFee, arg.Total,
		arg.DeliveryAddress, arg.DeliveryPhone, arg.DeliveryNotes))
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, product_name, product_image, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_id, product_name, product_image, quantity, unit_price, total_price
`

type CreateOrderItemParams struct {
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	ProductImage pgtype.Text
	Quantity     int32
	UnitPrice    int64
	TotalPrice   int64
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.ProductName, arg.ProductImage, arg.Quantity, arg.UnitPrice, arg.TotalPrice)
	var oi OrderItem
	err := row.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.ProductName, &oi.ProductImage, &oi.Quantity, &oi.UnitPrice, &oi.TotalPrice)
	return oi, err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrdersByUser = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItemsByOrder = `
SELECT id, order_id, product_id, product_name, product_image, quantity, unit_price, total_price
FROM order_items
WHERE order_id = $1
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.ProductName, &oi.ProductImage, &oi.Quantity, &oi.UnitPrice, &oi.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, oi)
	}
	return items, rows.Err()
}

// CancelOrder enforces the precondition atomically: only a pending order
// owned by the caller is updated. ErrNoRows means wrong owner, wrong state,
// or no such order; callers re-fetch to tell those apart.
const cancelOrder = `
UPDATE orders
SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND user_id = $2 AND status = 'pending'
RETURNING ` + orderColumns + `
`

type CancelOrderParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.UserID))
}

const getOrderStatsByUser = `
SELECT COUNT(*), COALESCE(SUM(total), 0)
FROM orders
WHERE user_id = $1 AND status <> 'cancelled'
`

type OrderStatsRow struct {
	OrderCount int64
	TotalSpent int64
}

func (q *Queries) GetOrderStatsByUser(ctx context.Context, userID uuid.UUID) (OrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getOrderStatsByUser, userID)
	var s OrderStatsRow
	err := row.Scan(&s.OrderCount, &s.TotalSpent)
	return s, err
}

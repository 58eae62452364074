package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const foodOrderColumns = `id, user_id, restaurant_id, order_number, status, subtotal, delivery_fee, total,
delivery_address, phone, delivery_instructions, payment_method, created_at, updated_at`

func scanFoodOrder(row interface{ Scan(...interface{}) error }) (FoodOrder, error) {
	var fo FoodOrder
	err := row.Scan(&fo.ID, &fo.UserID, &fo.RestaurantID, &fo.OrderNumber, &fo.Status,
		&fo.Subtotal, &fo.DeliveryFee, &fo.Total,
		&fo.DeliveryAddress, &fo.Phone, &fo.DeliveryInstructions, &fo.PaymentMethod,
		&fo.CreatedAt, &fo.UpdatedAt)
	return fo, err
}

const createFoodOrder = `
INSERT INTO food_orders (user_id, restaurant_id, order_number, status, subtotal, delivery_fee, total,
                         delivery_address, phone, delivery_instructions, payment_method)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + foodOrderColumns + `
`

type CreateFoodOrderParams struct {
	UserID               uuid.UUID
	RestaurantID         uuid.UUID
	OrderNumber          string
	Status               string
	Subtotal             int64
	DeliveryFee          int64
	Total                int64
	DeliveryAddress      string
	Phone                string
	DeliveryInstructions pgtype.Text
	PaymentMethod        string
}

func (q *Queries) CreateFoodOrder(ctx context.Context, arg CreateFoodOrderParams) (FoodOrder, error) {
	return scanFoodOrder(q.db.QueryRow(ctx, createFoodOrder,
		arg.UserID, arg.RestaurantID, arg.OrderNumber, arg.Status, arg.Subtotal, arg.DeliveryFee, arg.Total,
		arg.DeliveryAddress, arg.Phone, arg.DeliveryInstructions, arg.PaymentMethod))
}

const createFoodOrderItem = `
INSERT INTO food_order_items (food_order_id, menu_item_id, item_name, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, food_order_id, menu_item_id, item_name, quantity, unit_price, total_price
`

type CreateFoodOrderItemParams struct {
	FoodOrderID uuid.UUID
	MenuItemID  uuid.UUID
	ItemName    string
	Quantity    int32
	UnitPrice   int64
	TotalPrice  int64
}

func (q *Queries) CreateFoodOrderItem(ctx context.Context, arg CreateFoodOrderItemParams) (FoodOrderItem, error) {
	row := q.db.QueryRow(ctx, createFoodOrderItem,
		arg.FoodOrderID, arg.MenuItemID, arg.ItemName, arg.Quantity, arg.UnitPrice, arg.TotalPrice)
	var fi FoodOrderItem
	err := row.Scan(&fi.ID, &fi.FoodOrderID, &fi.MenuItemID, &fi.ItemName, &fi.Quantity, &fi.UnitPrice, &fi.TotalPrice)
	return fi, err
}

const getFoodOrder = `
SELECT ` + foodOrderColumns + `
FROM food_orders
WHERE id = $1
`

func (q *Queries) GetFoodOrder(ctx context.Context, id uuid.UUID) (FoodOrder, error) {
	return scanFoodOrder(q.db.QueryRow(ctx, getFoodOrder, id))
}

const listFoodOrdersByUser = `
SELECT ` + foodOrderColumns + `
FROM food_orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListFoodOrdersByUser(ctx context.Context, userID uuid.UUID) ([]FoodOrder, error) {
	rows, err := q.db.Query(ctx, listFoodOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []FoodOrder
	for rows.Next() {
		fo, err := scanFoodOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, fo)
	}
	return orders, rows.Err()
}

const listFoodOrderItemsByOrder = `
SELECT id, food_order_id, menu_item_id, item_name, quantity, unit_price, total_price
FROM food_order_items
WHERE food_order_id = $1
`

func (q *Queries) ListFoodOrderItemsByOrder(ctx context.Context, foodOrderID uuid.UUID) ([]FoodOrderItem, error) {
	rows, err := q.db.Query(ctx, listFoodOrderItemsByOrder, foodOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FoodOrderItem
	for rows.Next() {
		var fi FoodOrderItem
		if err := rows.Scan(&fi.ID, &fi.FoodOrderID, &fi.MenuItemID, &fi.ItemName, &fi.Quantity, &fi.UnitPrice, &fi.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, fi)
	}
	return items, rows.Err()
}

// UpdateFoodOrderStatus is a compare-and-set: the update only applies if the
// status is still the one the caller read. ErrNoRows signals a lost race.
const updateFoodOrderStatus = `
UPDATE food_orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + foodOrderColumns + `
`

type UpdateFoodOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
}

func (q *Queries) UpdateFoodOrderStatus(ctx context.Context, arg UpdateFoodOrderStatusParams) (FoodOrder, error) {
	return scanFoodOrder(q.db.QueryRow(ctx, updateFoodOrderStatus, arg.ID, arg.Status, arg.PrevStatus))
}

const cancelFoodOrder = `
UPDATE food_orders
SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'confirmed')
RETURNING ` + foodOrderColumns + `
`

type CancelFoodOrderParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) CancelFoodOrder(ctx context.Context, arg CancelFoodOrderParams) (FoodOrder, error) {
	return scanFoodOrder(q.db.QueryRow(ctx, cancelFoodOrder, arg.ID, arg.UserID))
}

const getFoodOrderStatsByUser = `
SELECT COUNT(*), COALESCE(SUM(total), 0)
FROM food_orders
WHERE user_id = $1 AND status <> 'cancelled'
`

func (q *Queries) GetFoodOrderStatsByUser(ctx context.Context, userID uuid.UUID) (OrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getFoodOrderStatsByUser, userID)
	var s OrderStatsRow
	err := row.Scan(&s.OrderCount, &s.TotalSpent)
	return s, err
}

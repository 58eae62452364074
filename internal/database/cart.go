package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartItemColumns = `id, user_id, product_id, quantity, created_at, updated_at`

const getCartItem = `
SELECT ` + cartItemColumns + `
FROM cart_items
WHERE id = $1
`

func (q *Queries) GetCartItem(ctx context.Context, id uuid.UUID) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItem, id)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt)
	return ci, err
}

const getCartItemByUserAndProduct = `
SELECT ` + cartItemColumns + `
FROM cart_items
WHERE user_id = $1 AND product_id = $2
`

type GetCartItemByUserAndProductParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) GetCartItemByUserAndProduct(ctx context.Context, arg GetCartItemByUserAndProductParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItemByUserAndProduct, arg.UserID, arg.ProductID)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt)
	return ci, err
}

const createCartItem = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING ` + cartItemColumns + `
`

type CreateCartItemParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem, arg.UserID, arg.ProductID, arg.Quantity)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt)
	return ci, err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING ` + cartItemColumns + `
`

type UpdateCartItemQuantityParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, updateCartItemQuantity, arg.ID, arg.Quantity)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt)
	return ci, err
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCartItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCartItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const deleteCartItemsByUser = `
DELETE FROM cart_items
WHERE user_id = $1
`

func (q *Queries) DeleteCartItemsByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartItemsByUser, userID)
	return err
}

// ListCartItemsByUser joins each cart row against current product state so
// callers can re-validate availability and price at read time.
const listCartItemsByUser = `
SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
       p.name, p.slug, p.price, p.image_url, p.stock_quantity, p.in_stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at
`

type ListCartItemsByUserRow struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ProductID     uuid.UUID
	Quantity      int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProductName   string
	ProductSlug   string
	ProductPrice  int64
	ProductImage  pgtype.Text
	StockQuantity int32
	InStock       bool
}

func (q *Queries) ListCartItemsByUser(ctx context.Context, userID uuid.UUID) ([]ListCartItemsByUserRow, error) {
	rows, err := q.db.Query(ctx, listCartItemsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCartItemsByUserRow
	for rows.Next() {
		var r ListCartItemsByUserRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Quantity, &r.CreatedAt, &r.UpdatedAt,
			&r.ProductName, &r.ProductSlug, &r.ProductPrice, &r.ProductImage, &r.StockQuantity, &r.InStock); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createWishlistItem = `
INSERT INTO wishlist_items (user_id, product_id)
VALUES ($1, $2)
RETURNING id, user_id, product_id, created_at
`

type CreateWishlistItemParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) CreateWishlistItem(ctx context.Context, arg CreateWishlistItemParams) (WishlistItem, error) {
	row := q.db.QueryRow(ctx, createWishlistItem, arg.UserID, arg.ProductID)
	var wi WishlistItem
	err := row.Scan(&wi.ID, &wi.UserID, &wi.ProductID, &wi.CreatedAt)
	return wi, err
}

const deleteWishlistItem = `
DELETE FROM wishlist_items
WHERE user_id = $1 AND product_id = $2
RETURNING id
`

type DeleteWishlistItemParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) DeleteWishlistItem(ctx context.Context, arg DeleteWishlistItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteWishlistItem, arg.UserID, arg.ProductID)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const listWishlistByUser = `
SELECT wi.id, wi.user_id, wi.product_id, wi.created_at,
       p.name, p.slug, p.price, p.image_url, p.in_stock
FROM wishlist_items wi
JOIN products p ON p.id = wi.product_id
WHERE wi.user_id = $1
ORDER BY wi.created_at DESC
`

type ListWishlistByUserRow struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ProductID    uuid.UUID
	CreatedAt    time.Time
	ProductName  string
	ProductSlug  string
	ProductPrice int64
	ProductImage pgtype.Text
	InStock      bool
}

func (q *Queries) ListWishlistByUser(ctx context.Context, userID uuid.UUID) ([]ListWishlistByUserRow, error) {
	rows, err := q.db.Query(ctx, listWishlistByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListWishlistByUserRow
	for rows.Next() {
		var r ListWishlistByUserRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.CreatedAt,
			&r.ProductName, &r.ProductSlug, &r.ProductPrice, &r.ProductImage, &r.InStock); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, restaurant_id, name, description, price, category, image_url, is_available, created_at`

func scanMenuItem(row interface{ Scan(...interface{}) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Category,
		&m.ImageUrl, &m.IsAvailable, &m.CreatedAt)
	return m, err
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
}

const listMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE ($1::uuid IS NULL OR restaurant_id = $1)
  AND ($2::text IS NULL OR category = $2)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
  AND ($4::boolean IS NULL OR is_available = $4)
ORDER BY category, name
LIMIT $5 OFFSET $6
`

type ListMenuItemsParams struct {
	RestaurantID pgtype.UUID
	Category     pgtype.Text
	Search       pgtype.Text
	Available    pgtype.Bool
	Limit        int32
	Offset       int32
}

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems,
		arg.RestaurantID, arg.Category, arg.Search, arg.Available, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const countMenuItems = `
SELECT COUNT(*)
FROM menu_items
WHERE ($1::uuid IS NULL OR restaurant_id = $1)
  AND ($2::text IS NULL OR category = $2)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
  AND ($4::boolean IS NULL OR is_available = $4)
`

type CountMenuItemsParams struct {
	RestaurantID pgtype.UUID
	Category     pgtype.Text
	Search       pgtype.Text
	Available    pgtype.Bool
}

func (q *Queries) CountMenuItems(ctx context.Context, arg CountMenuItemsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countMenuItems, arg.RestaurantID, arg.Category, arg.Search, arg.Available)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listMenuItemsByRestaurant = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE restaurant_id = $1
ORDER BY category, name
`

func (q *Queries) ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const restaurantColumns = `id, name, slug, cuisine, description, image_url, is_open,
minimum_order, delivery_fee, delivery_time, rating, created_at`

func scanRestaurant(row interface{ Scan(...interface{}) error }) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.Cuisine, &r.Description, &r.ImageUrl, &r.IsOpen,
		&r.MinimumOrder, &r.DeliveryFee, &r.DeliveryTime, &r.Rating, &r.CreatedAt)
	return r, err
}

const getRestaurant = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, getRestaurant, id))
}

// delivery_time is a free-text range ("20-30"); its sort key extracts the
// leading minutes in SQL so ordering holds across pages. Unparseable values
// sort last.
const listRestaurants = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE ($1::text IS NULL OR cuisine = $1)
  AND ($2::boolean IS NULL OR is_open = $2)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
ORDER BY
  CASE WHEN $4::text = 'delivery_time' THEN NULLIF(regexp_replace(split_part(delivery_time, '-', 1), '\D', '', 'g'), '')::bigint END ASC NULLS LAST,
  CASE WHEN $4::text = 'delivery_fee' THEN delivery_fee END ASC,
  CASE WHEN $4::text = 'minimum_order' THEN minimum_order END ASC,
  CASE WHEN $4::text = 'rating' THEN rating END DESC,
  name ASC
LIMIT $5 OFFSET $6
`

type ListRestaurantsParams struct {
	Cuisine pgtype.Text
	IsOpen  pgtype.Bool
	Search  pgtype.Text
	SortBy  pgtype.Text
	Limit   int32
	Offset  int32
}

func (q *Queries) ListRestaurants(ctx context.Context, arg ListRestaurantsParams) ([]Restaurant, error) {
	rows, err := q.db.Query(ctx, listRestaurants,
		arg.Cuisine, arg.IsOpen, arg.Search, arg.SortBy, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countRestaurants = `
SELECT COUNT(*)
FROM restaurants
WHERE ($1::text IS NULL OR cuisine = $1)
  AND ($2::boolean IS NULL OR is_open = $2)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
`

type CountRestaurantsParams struct {
	Cuisine pgtype.Text
	IsOpen  pgtype.Bool
	Search  pgtype.Text
}

func (q *Queries) CountRestaurants(ctx context.Context, arg CountRestaurantsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countRestaurants, arg.Cuisine, arg.IsOpen, arg.Search)
	var count int64
	err := row.Scan(&count)
	return count, err
}

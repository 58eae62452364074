package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `p.id, p.category_id, p.name, p.slug, p.description, p.price, p.original_price,
p.stock_quantity, p.in_stock, p.image_url, p.badge, p.rating, p.review_count, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.OriginalPrice,
		&p.StockQuantity, &p.InStock, &p.ImageUrl, &p.Badge, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getProduct = `
SELECT ` + productColumns + `
FROM products p
WHERE p.id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

// Optional filters are passed as typed NULLs so the query stays a single
// constant SQL string.
const listProducts = `
SELECT ` + productColumns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE ($1::text IS NULL OR c.slug = $1)
  AND ($2::text IS NULL OR p.name ILIKE '%' || $2 || '%')
  AND ($3::bigint IS NULL OR p.price >= $3)
  AND ($4::bigint IS NULL OR p.price <= $4)
ORDER BY
  CASE WHEN $5::text = 'price_asc' THEN p.price END ASC,
  CASE WHEN $5::text = 'price_desc' THEN p.price END DESC,
  CASE WHEN $5::text = 'name' THEN p.name END ASC,
  p.created_at DESC
LIMIT $6 OFFSET $7
`

type ListProductsParams struct {
	CategorySlug pgtype.Text
	Search       pgtype.Text
	MinPrice     pgtype.Int8
	MaxPrice     pgtype.Int8
	SortBy       pgtype.Text
	Limit        int32
	Offset       int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts,
		arg.CategorySlug, arg.Search, arg.MinPrice, arg.MaxPrice, arg.SortBy, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.OriginalPrice,
			&p.StockQuantity, &p.InStock, &p.ImageUrl, &p.Badge, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const countProducts = `
SELECT COUNT(*)
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE ($1::text IS NULL OR c.slug = $1)
  AND ($2::text IS NULL OR p.name ILIKE '%' || $2 || '%')
  AND ($3::bigint IS NULL OR p.price >= $3)
  AND ($4::bigint IS NULL OR p.price <= $4)
`

type CountProductsParams struct {
	CategorySlug pgtype.Text
	Search       pgtype.Text
	MinPrice     pgtype.Int8
	MaxPrice     pgtype.Int8
}

func (q *Queries) CountProducts(ctx context.Context, arg CountProductsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countProducts, arg.CategorySlug, arg.Search, arg.MinPrice, arg.MaxPrice)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// DecrementProductStock reserves stock with a conditional update. Returns
// pgx.ErrNoRows when the remaining stock is below the requested quantity,
// which keeps the check-and-decrement atomic without application locks.
const decrementProductStock = `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = now()
WHERE id = $1 AND stock_quantity >= $2
RETURNING id, stock_quantity
`

type DecrementProductStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

type DecrementProductStockRow struct {
	ID            uuid.UUID
	StockQuantity int32
}

func (q *Queries) DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (DecrementProductStockRow, error) {
	row := q.db.QueryRow(ctx, decrementProductStock, arg.ID, arg.Quantity)
	var r DecrementProductStockRow
	err := row.Scan(&r.ID, &r.StockQuantity)
	return r, err
}

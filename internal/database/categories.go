package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCategories = `
SELECT c.id, c.name, c.slug, c.parent_id, c.created_at, COUNT(p.id) AS product_count
FROM categories c
LEFT JOIN products p ON p.category_id = c.id
GROUP BY c.id
ORDER BY c.name
`

type ListCategoriesRow struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	ParentID     pgtype.UUID
	CreatedAt    time.Time
	ProductCount int64
}

func (q *Queries) ListCategories(ctx context.Context) ([]ListCategoriesRow, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCategoriesRow
	for rows.Next() {
		var c ListCategoriesRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.ProductCount); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

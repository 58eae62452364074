package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// All money columns are BIGINT minor currency units. Totals are computed with
// integer arithmetic only; there is no floating point anywhere in pricing.

type User struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	ParentID  pgtype.UUID
	CreatedAt time.Time
}

type Product struct {
	ID            uuid.UUID
	CategoryID    pgtype.UUID
	Name          string
	Slug          string
	Description   pgtype.Text
	Price         int64
	OriginalPrice pgtype.Int8
	StockQuantity int32
	InStock       bool
	ImageUrl      pgtype.Text
	Badge         pgtype.Text
	Rating        pgtype.Float8
	ReviewCount   int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WishlistItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderNumber     string
	Status          string
	Subtotal        int64
	DeliveryFee     int64
	Total           int64
	DeliveryAddress string
	DeliveryPhone   string
	DeliveryNotes   pgtype.Text
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem snapshots the product name, image, and prices at order time so
// later product edits never alter historical orders.
type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	ProductImage pgtype.Text
	Quantity     int32
	UnitPrice    int64
	TotalPrice   int64
}

type Restaurant struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Cuisine      string
	Description  pgtype.Text
	ImageUrl     pgtype.Text
	IsOpen       bool
	MinimumOrder int64
	DeliveryFee  int64
	DeliveryTime string
	Rating       pgtype.Float8
	CreatedAt    time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        int64
	Category     string
	ImageUrl     pgtype.Text
	IsAvailable  bool
	CreatedAt    time.Time
}

type FoodOrder struct {
	ID                   uuid.UUID
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
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type FoodOrderItem struct {
	ID          uuid.UUID
	FoodOrderID uuid.UUID
	MenuItemID  uuid.UUID
	ItemName    string
	Quantity    int32
	UnitPrice   int64
	TotalPrice  int64
}

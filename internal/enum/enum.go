package enum

// ── State machines (CHECK constrained in DB) ──

const (
	FoodOrderStatusPending        = "pending"
	FoodOrderStatusConfirmed      = "confirmed"
	FoodOrderStatusPreparing      = "preparing"
	FoodOrderStatusReady          = "ready"
	FoodOrderStatusOutForDelivery = "out_for_delivery"
	FoodOrderStatusDelivered      = "delivered"
	FoodOrderStatusCancelled      = "cancelled"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
)

// ── Configurable labels (no DB constraint) ──

const (
	PaymentMethodCash        = "cash"
	PaymentMethodCard        = "card"
	PaymentMethodMobileMoney = "mobile_money"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
	SortNewest    = "newest"
)

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmart/api/internal/auth"
	"github.com/campusmart/api/internal/config"
	"github.com/campusmart/api/internal/database"
	"github.com/campusmart/api/internal/handler"
	mw "github.com/campusmart/api/internal/middleware"
	"github.com/campusmart/api/internal/service"
	"github.com/campusmart/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Catalog browsing is public; everything else requires a bearer token.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // web dev server
			"http://localhost:3000",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, auth.BcryptHasher{}, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Public catalog routes
	productHandler := handler.NewProductHandler(queries)
	r.Route("/products", productHandler.RegisterRoutes)

	categoryHandler := handler.NewCategoryHandler(queries)
	r.Route("/categories", categoryHandler.RegisterRoutes)

	restaurantHandler := handler.NewRestaurantHandler(queries)
	r.Route("/restaurants", restaurantHandler.RegisterRoutes)

	menuItemHandler := handler.NewMenuItemHandler(queries)
	r.Route("/menu-items", menuItemHandler.RegisterRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/food-orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		cartHandler := handler.NewCartHandler(queries)
		r.Route("/cart", cartHandler.RegisterRoutes)

		wishlistHandler := handler.NewWishlistHandler(queries)
		r.Route("/wishlist", wishlistHandler.RegisterRoutes)

		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		})
		orderHandler := handler.NewOrderHandler(queries, orderService)
		r.Route("/orders", orderHandler.RegisterRoutes)

		foodOrderService := service.NewFoodOrderService(pool, func(db database.DBTX) service.FoodOrderStore {
			return database.New(db)
		})
		foodOrderHandler := handler.NewFoodOrderHandler(queries, foodOrderService, hub)
		r.Route("/food-orders", foodOrderHandler.RegisterRoutes)

		reportHandler := handler.NewReportHandler(queries)
		r.Route("/reports", reportHandler.RegisterRoutes)
	})

	return r
}

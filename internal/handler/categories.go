package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/campusmart/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.ListCategoriesRow, error)
}

// CategoryHandler handles the public category listing.
type CategoryHandler struct {
	store CategoryStore
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// RegisterRoutes registers category endpoints on the given Chi router.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type categoryResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	ParentID     *uuid.UUID `json:"parentId"`
	ProductCount int64      `json:"productCount"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// List returns all categories with their computed product counts.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		cr := categoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			ProductCount: c.ProductCount,
			CreatedAt:    c.CreatedAt,
		}
		if c.ParentID.Valid {
			id := uuid.UUID(c.ParentID.Bytes)
			cr.ParentID = &id
		}
		resp[i] = cr
	}

	writeJSON(w, http.StatusOK, resp)
}

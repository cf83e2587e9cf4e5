package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/middleware"
	"github.com/feteer-counter/api/internal/validate"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, itemType string) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

// MenuHandler handles menu catalog CRUD endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers menu CRUD endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireValidID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// --- Request / Response types ---

type menuItemRequest struct {
	ItemType string `json:"item_type"`
	ItemName string `json:"item_name"`
	NameAr   string `json:"name_ar"`
	Price    string `json:"price"`
}

type menuItemResponse struct {
	ID        int64     `json:"id"`
	ItemType  string    `json:"item_type"`
	ItemName  string    `json:"item_name"`
	NameAr    *string   `json:"name_ar"`
	Price     *string   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:        m.ID,
		ItemType:  m.ItemType,
		ItemName:  m.ItemName,
		NameAr:    textPtr(m.NameAr),
		CreatedAt: m.CreatedAt,
	}
	if m.Price.Valid {
		s := numericString(m.Price)
		resp.Price = &s
	}
	return resp
}

// validated turns a raw menu request into store params. The name keeps
// its sanitized form; the Arabic name passes the same pattern family.
func (req menuItemRequest) validated() (string, pgtype.Text, pgtype.Numeric, error) {
	name, err := validate.MenuItemName(req.ItemName)
	if err != nil {
		return "", pgtype.Text{}, pgtype.Numeric{}, err
	}

	nameAr := pgtype.Text{}
	if req.NameAr != "" {
		sanitized, err := validate.MenuItemName(req.NameAr)
		if err != nil {
			return "", pgtype.Text{}, pgtype.Numeric{}, err
		}
		nameAr = pgtype.Text{String: sanitized, Valid: true}
	}

	price := pgtype.Numeric{}
	d, err := validate.Price(req.Price)
	if err != nil {
		return "", pgtype.Text{}, pgtype.Numeric{}, err
	}
	if d != nil {
		if err := price.Scan(d.StringFixed(2)); err != nil {
			return "", pgtype.Text{}, pgtype.Numeric{}, err
		}
	}

	return name, nameAr, price, nil
}

// --- Handlers ---

// List handles GET /menu?type=. The category parameter is required and
// must be a recognized menu category.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	itemType, err := validate.ItemType(r.URL.Query().Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	items, err := h.store.ListMenuItems(r.Context(), itemType)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /menu.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	itemType, err := validate.ItemType(req.ItemType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	name, nameAr, price, err := req.validated()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		ItemType: itemType,
		ItemName: name,
		NameAr:   nameAr,
		Price:    price,
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PUT /menu/{id}. Orders created before the edit keep
// their original price.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := middleware.IDFromContext(r.Context())

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name, nameAr, price, err := req.validated()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:       id,
		ItemName: name,
		NameAr:   nameAr,
		Price:    price,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /menu/{id}. Existing orders are unaffected.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := middleware.IDFromContext(r.Context())

	if err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

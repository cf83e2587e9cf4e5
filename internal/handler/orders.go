package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/middleware"
	"github.com/feteer-counter/api/internal/service"
	"github.com/feteer-counter/api/internal/validate"
	"github.com/feteer-counter/api/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *database.Queries; narrow interface for
// testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// Broadcaster pushes order lifecycle events to connected counter displays.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Id-bearing routes sit behind the positive-integer-id guard.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireValidID)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/label", h.Label)
	})
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName   string   `json:"customer_name"`
	ProductLine    string   `json:"product_line"`
	ItemName       string   `json:"item_name"`
	Milk           string   `json:"milk"`
	Syrup          string   `json:"syrup"`
	Foam           string   `json:"foam"`
	Temperature    string   `json:"temperature"`
	Meats          []string `json:"meats"`
	Cheeses        []string `json:"cheeses"`
	ExtraShot      bool     `json:"extra_shot"`
	ExtraTopping   bool     `json:"extra_topping"`
	ExtraMeatCount int32    `json:"extra_meat_count"`
	Notes          string   `json:"notes"`
}

type orderResponse struct {
	ID             int64     `json:"id"`
	CustomerName   string    `json:"customer_name"`
	ProductLine    string    `json:"product_line"`
	ItemName       string    `json:"item_name"`
	Milk           *string   `json:"milk"`
	Syrup          *string   `json:"syrup"`
	Foam           *string   `json:"foam"`
	Temperature    *string   `json:"temperature"`
	Meats          *string   `json:"meats"`
	Cheeses        *string   `json:"cheeses"`
	ExtraShot      bool      `json:"extra_shot"`
	ExtraTopping   bool      `json:"extra_topping"`
	ExtraMeatCount int32     `json:"extra_meat_count"`
	Notes          *string   `json:"notes"`
	Status         string    `json:"status"`
	Price          string    `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
	WaitMinutes    int64     `json:"wait_minutes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:             o.ID,
		CustomerName:   o.CustomerName,
		ProductLine:    o.ProductLine,
		ItemName:       o.ItemName,
		Milk:           textPtr(o.Milk),
		Syrup:          textPtr(o.Syrup),
		Foam:           textPtr(o.Foam),
		Temperature:    textPtr(o.Temperature),
		Meats:          textPtr(o.Meats),
		Cheeses:        textPtr(o.Cheeses),
		ExtraShot:      o.ExtraShot,
		ExtraTopping:   o.ExtraTopping,
		ExtraMeatCount: o.ExtraMeatCount,
		Notes:          textPtr(o.Notes),
		Status:         o.Status,
		Price:          numericString(o.Price),
		CreatedAt:      o.CreatedAt,
		WaitMinutes:    service.WaitMinutes(o, time.Now().Unix()),
	}
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:   req.CustomerName,
		ProductLine:    req.ProductLine,
		ItemName:       req.ItemName,
		Milk:           req.Milk,
		Syrup:          req.Syrup,
		Foam:           req.Foam,
		Temperature:    req.Temperature,
		Meats:          req.Meats,
		Cheeses:        req.Cheeses,
		ExtraShot:      req.ExtraShot,
		ExtraTopping:   req.ExtraTopping,
		ExtraMeatCount: req.ExtraMeatCount,
		Notes:          req.Notes,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	h.broadcast("order_created", resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders?search=&status=. The status parameter is a
// comma-separated set of validated statuses, or the literal "all".
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var statuses []string
	if s := r.URL.Query().Get("status"); s != "" && s != "all" {
		for _, part := range strings.Split(s, ",") {
			status, err := validate.Status(strings.TrimSpace(part))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			statuses = append(statuses, status)
		}
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		Statuses: statuses,
		Search:   r.URL.Query().Get("search"),
	})
	if err != nil {
		if errors.Is(err, database.ErrInvalidSearchTerm) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := middleware.IDFromContext(r.Context())

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := middleware.IDFromContext(r.Context())

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	status, err := validate.Status(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:     id,
		Status: status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	h.broadcast("order_status_changed", resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /orders/{id}. Deleting a missing id succeeds.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := middleware.IDFromContext(r.Context())

	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast("order_deleted", map[string]int64{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// Label handles GET /orders/{id}/label: a fixed-size plain-text label for
// the counter printer.
func (h *OrderHandler) Label(w http.ResponseWriter, r *http.Request) {
	id := middleware.IDFromContext(r.Context())

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for label: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(formatLabel(order)))
}

// --- Helpers ---

func (h *OrderHandler) broadcast(eventType string, payload any) {
	if h.hub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: data})
}

func isValidationError(err error) bool {
	if validate.IsValidationError(err) {
		return true
	}
	switch {
	case errors.Is(err, service.ErrInvalidProductLine),
		errors.Is(err, service.ErrInvalidTemperature),
		errors.Is(err, service.ErrInvalidExtraMeats),
		errors.Is(err, service.ErrItemNameRequired):
		return true
	}
	return false
}

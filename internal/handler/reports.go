package handler

import (
	"context"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/feteer-counter/api/internal/database"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	ListCompletedOrders(ctx context.Context) ([]database.Order, error)
}

// ReportsHandler serves the completed-order analytics view.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/completed", h.Completed)
}

// --- Response types ---

type itemSalesResponse struct {
	ItemName string `json:"item_name"`
	Count    int64  `json:"count"`
	Revenue  string `json:"revenue"`
}

type completedReportResponse struct {
	OrderCount   int64               `json:"order_count"`
	TotalRevenue string              `json:"total_revenue"`
	TopItems     []itemSalesResponse `json:"top_items"`
	Orders       []orderResponse     `json:"orders"`
}

// --- Handlers ---

// Completed handles GET /reports/completed: count, revenue, and per-item
// sales over all completed orders, plus the orders themselves for the
// analytics table.
func (h *ReportsHandler) Completed(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListCompletedOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: completed report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	total := decimal.Zero
	type itemAgg struct {
		count   int64
		revenue decimal.Decimal
	}
	byItem := make(map[string]*itemAgg)

	for _, o := range orders {
		price := numericDecimal(o.Price)
		total = total.Add(price)

		agg := byItem[o.ItemName]
		if agg == nil {
			agg = &itemAgg{}
			byItem[o.ItemName] = agg
		}
		agg.count++
		agg.revenue = agg.revenue.Add(price)
	}

	topItems := make([]itemSalesResponse, 0, len(byItem))
	for name, agg := range byItem {
		topItems = append(topItems, itemSalesResponse{
			ItemName: name,
			Count:    agg.count,
			Revenue:  agg.revenue.StringFixed(2),
		})
	}
	sort.Slice(topItems, func(i, j int) bool {
		if topItems[i].Count != topItems[j].Count {
			return topItems[i].Count > topItems[j].Count
		}
		return topItems[i].ItemName < topItems[j].ItemName
	})

	resp := completedReportResponse{
		OrderCount:   int64(len(orders)),
		TotalRevenue: total.StringFixed(2),
		TopItems:     topItems,
		Orders:       make([]orderResponse, len(orders)),
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

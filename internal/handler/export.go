package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/feteer-counter/api/internal/database"
)

// ExportHandler serves the completed-order CSV download.
type ExportHandler struct {
	store ReportsStore
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(store ReportsStore) *ExportHandler {
	return &ExportHandler{store: store}
}

// RegisterRoutes registers export endpoints on the given Chi router.
func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/completed.csv", h.CompletedCSV)
}

// csvHeader fixes the export column order. Consumers depend on it.
var csvHeader = []string{
	"id", "customer_name", "product_line", "item_name",
	"milk", "syrup", "foam", "temperature", "meats", "cheeses",
	"extra_shot", "extra_topping", "extra_meat_count",
	"notes", "price", "created_at",
}

// CompletedCSV handles GET /export/completed.csv.
func (h *ExportHandler) CompletedCSV(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListCompletedOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: export completed orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="completed_orders.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		log.Printf("ERROR: write csv header: %v", err)
		return
	}

	for _, o := range orders {
		record := []string{
			strconv.FormatInt(o.ID, 10),
			o.CustomerName,
			o.ProductLine,
			o.ItemName,
			textString(o.Milk),
			textString(o.Syrup),
			textString(o.Foam),
			textString(o.Temperature),
			textString(o.Meats),
			textString(o.Cheeses),
			strconv.FormatBool(o.ExtraShot),
			strconv.FormatBool(o.ExtraTopping),
			strconv.Itoa(int(o.ExtraMeatCount)),
			textString(o.Notes),
			numericString(o.Price),
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			log.Printf("ERROR: write csv record: %v", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("ERROR: flush csv: %v", err)
	}
}

// formatLabel renders the fixed-size counter label for one order.
func formatLabel(o database.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ORDER #%d\n", o.ID)
	fmt.Fprintf(&b, "%s\n", o.CustomerName)
	fmt.Fprintf(&b, "%s", o.ItemName)
	if o.Temperature.Valid {
		fmt.Fprintf(&b, " (%s)", o.Temperature.String)
	}
	b.WriteString("\n")
	for _, line := range []struct {
		label string
		value pgtype.Text
	}{
		{"Milk", o.Milk},
		{"Syrup", o.Syrup},
		{"Foam", o.Foam},
		{"Meats", o.Meats},
		{"Cheeses", o.Cheeses},
	} {
		if line.value.Valid {
			fmt.Fprintf(&b, "%s: %s\n", line.label, line.value.String)
		}
	}
	if o.ExtraShot {
		b.WriteString("+ extra shot\n")
	}
	if o.ExtraTopping {
		b.WriteString("+ extra topping\n")
	}
	if o.ExtraMeatCount > 0 {
		fmt.Fprintf(&b, "+ %d extra meat\n", o.ExtraMeatCount)
	}
	if o.Notes.Valid {
		fmt.Fprintf(&b, "Note: %s\n", o.Notes.String)
	}
	fmt.Fprintf(&b, "%s\n", numericString(o.Price))
	return b.String()
}

// --- Shared conversion helpers ---

func textString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func numericDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// numericString formats a stored price to two decimal places for display.
func numericString(n pgtype.Numeric) string {
	return numericDecimal(n).StringFixed(2)
}

package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/enum"
)

type mockReportsStore struct {
	listCompletedOrdersFunc func(ctx context.Context) ([]database.Order, error)
}

func (m *mockReportsStore) ListCompletedOrders(ctx context.Context) ([]database.Order, error) {
	return m.listCompletedOrdersFunc(ctx)
}

func completedOrder(t *testing.T, id int64, itemName, price string) database.Order {
	t.Helper()
	o := sampleOrder(id)
	o.ItemName = itemName
	o.Status = enum.OrderStatusCompleted
	o.Price = testNumeric(t, price)
	return o
}

func TestReportsCompleted(t *testing.T) {
	store := &mockReportsStore{
		listCompletedOrdersFunc: func(_ context.Context) ([]database.Order, error) {
			return []database.Order{
				completedOrder(t, 1, "Latte", "4.00"),
				completedOrder(t, 2, "Latte", "5.00"),
				completedOrder(t, 3, "Espresso", "3.00"),
			}, nil
		},
	}
	r := chi.NewRouter()
	r.Route("/reports", NewReportsHandler(store).RegisterRoutes)

	rr := doRequest(t, r, http.MethodGet, "/reports/completed", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[completedReportResponse](t, rr)
	if resp.OrderCount != 3 {
		t.Errorf("order count: got %d, want 3", resp.OrderCount)
	}
	if resp.TotalRevenue != "12.00" {
		t.Errorf("total revenue: got %q, want 12.00", resp.TotalRevenue)
	}
	if len(resp.TopItems) != 2 {
		t.Fatalf("top items: got %d, want 2", len(resp.TopItems))
	}
	if resp.TopItems[0].ItemName != "Latte" || resp.TopItems[0].Count != 2 {
		t.Errorf("top item: got %+v, want Latte x2", resp.TopItems[0])
	}
	if resp.TopItems[0].Revenue != "9.00" {
		t.Errorf("top item revenue: got %q, want 9.00", resp.TopItems[0].Revenue)
	}
	if resp.TopItems[1].ItemName != "Espresso" {
		t.Errorf("second item: got %+v", resp.TopItems[1])
	}

	// Completed orders show no wait time.
	for _, o := range resp.Orders {
		if o.WaitMinutes != 0 {
			t.Errorf("order %d: wait_minutes %d, want 0", o.ID, o.WaitMinutes)
		}
	}
}

func TestReportsCompleted_Empty(t *testing.T) {
	store := &mockReportsStore{
		listCompletedOrdersFunc: func(_ context.Context) ([]database.Order, error) {
			return nil, nil
		},
	}
	r := chi.NewRouter()
	r.Route("/reports", NewReportsHandler(store).RegisterRoutes)

	rr := doRequest(t, r, http.MethodGet, "/reports/completed", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	resp := decodeBody[completedReportResponse](t, rr)
	if resp.OrderCount != 0 || resp.TotalRevenue != "0.00" {
		t.Errorf("got count %d revenue %q, want 0 / 0.00", resp.OrderCount, resp.TotalRevenue)
	}
}

func TestExportCompletedCSV(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	store := &mockReportsStore{
		listCompletedOrdersFunc: func(_ context.Context) ([]database.Order, error) {
			o := completedOrder(t, 1, "Latte", "5.00")
			o.Milk = testText("Oat")
			o.Notes = testText("extra hot")
			o.CreatedAt = created
			return []database.Order{o}, nil
		},
	}
	r := chi.NewRouter()
	r.Route("/export", NewExportHandler(store).RegisterRoutes)

	rr := doRequest(t, r, http.MethodGet, "/export/completed.csv", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content type: got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "completed_orders.csv") {
		t.Errorf("content disposition: got %q", cd)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows: got %d, want header + 1", len(records))
	}
	if records[0][0] != "id" || records[0][len(records[0])-1] != "created_at" {
		t.Errorf("header: got %v", records[0])
	}

	row := records[1]
	if row[0] != "1" || row[1] != "Jane" || row[3] != "Latte" {
		t.Errorf("row: got %v", row)
	}
	if row[4] != "Oat" {
		t.Errorf("milk column: got %q", row[4])
	}
	if row[14] != "5.00" {
		t.Errorf("price column: got %q", row[14])
	}
	if row[15] != created.Format(time.RFC3339) {
		t.Errorf("created_at column: got %q", row[15])
	}
}

func TestFormatLabel_Feteer(t *testing.T) {
	o := sampleOrder(12)
	o.ProductLine = enum.ProductLineFeteer
	o.ItemName = "Mixed Meat"
	o.ExtraShot = false
	o.Meats = testText("Sausage, Pastrami")
	o.ExtraMeatCount = 2
	o.Notes = testText("well done")
	o.Price = testNumeric(t, "18.00")

	label := formatLabel(o)
	for _, want := range []string{
		"ORDER #12",
		"Mixed Meat",
		"Meats: Sausage, Pastrami",
		"+ 2 extra meat",
		"Note: well done",
		"18.00",
	} {
		if !strings.Contains(label, want) {
			t.Errorf("label missing %q; label:\n%s", want, label)
		}
	}
	if strings.Contains(label, "extra shot") {
		t.Errorf("label shows extra shot for a feteer order:\n%s", label)
	}
}

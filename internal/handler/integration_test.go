//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/feteer-counter/api/internal/config"
	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/router"
	"github.com/feteer-counter/api/internal/ws"
)

// TestIntegrationFlow exercises the full counter lifecycle against a real
// PostgreSQL database: login, seed, order a drink and a feteer, walk the
// status pipeline, and pull the completed report and CSV export.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	queries := database.New(pool)
	seeded, err := queries.SeedDefaultMenu(ctx)
	if err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if seeded == 0 {
		t.Fatal("expected default catalog to be seeded")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("counter123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	cfg := &config.Config{
		Port:              "8081",
		DatabaseURL:       connStr,
		JWTSecret:         "integration-test-secret",
		StaffUsername:     "staff",
		StaffPasswordHash: string(hash),
	}

	hub := ws.NewHub()
	// NOTE: hub.Run() goroutine leaks on test exit — Hub has no shutdown
	// mechanism. Acceptable for tests.
	go hub.Run()

	server := httptest.NewServer(router.New(cfg, queries, hub))
	defer server.Close()

	// --- 1. Login with the shared staff credential ---
	token := login(t, server, "staff", "counter123")

	// --- 2. Seeded catalog is queryable ---
	drinks := httpGetJSONList(t, server, "/menu?type=drink", token)
	if len(drinks) == 0 {
		t.Fatal("expected seeded drinks")
	}

	// --- 3. Create a drink order: Latte 4.00 + extra shot 1.00 = 5.00 ---
	orderResp := httpPostJSON(t, server, "/orders", map[string]interface{}{
		"customer_name": "Jane",
		"product_line":  "drink",
		"item_name":     "Latte",
		"milk":          "Whole",
		"temperature":   "iced",
		"extra_shot":    true,
	}, token)
	orderID := int64(orderResp["id"].(float64))
	if got := orderResp["status"].(string); got != "pending" {
		t.Fatalf("new order status: got %s, want pending", got)
	}
	if got := orderResp["price"].(string); got != "5.00" {
		t.Fatalf("drink order price: got %s, want 5.00", got)
	}

	// --- 4. Injection attempt is rejected with no side effect ---
	rejectOrder(t, server, map[string]interface{}{
		"customer_name": "Robert'); DROP TABLE orders;--",
		"product_line":  "drink",
		"item_name":     "Latte",
	}, token)

	// --- 5. Create a feteer order: Mixed Meat base + 2.00 topping ---
	feteerResp := httpPostJSON(t, server, "/orders", map[string]interface{}{
		"customer_name": "Ahmed",
		"product_line":  "feteer",
		"item_name":     "Mixed Meat",
		"meats":         []string{"Sausage", "Pastirma"},
		"extra_topping": true,
	}, token)
	feteerID := int64(feteerResp["id"].(float64))

	// --- 6. List with search: only Jane's order matches ---
	list := httpGetJSONList(t, server, "/orders?search=Jane", token)
	if len(list) != 1 {
		t.Fatalf("search result: got %d orders, want 1", len(list))
	}

	// --- 7. Injection in search is a 400, not a degraded query ---
	rejectGet(t, server, "/orders?search="+
		"%27%3B%20DROP%20TABLE%20orders%3B--", token)

	// --- 8. Menu edits never touch existing orders ---
	var latteMenuID int64
	for _, item := range drinks {
		if item["item_name"].(string) == "Latte" {
			latteMenuID = int64(item["id"].(float64))
		}
	}
	if latteMenuID == 0 {
		t.Fatal("Latte missing from seeded drinks")
	}
	httpPutJSON(t, server, fmt.Sprintf("/menu/%d", latteMenuID), map[string]interface{}{
		"item_name": "Latte",
		"price":     "9.99",
	}, token)
	reread := httpGetJSON(t, server, fmt.Sprintf("/orders/%d", orderID), token)
	if got := reread["price"].(string); got != "5.00" {
		t.Fatalf("order price after menu edit: got %s, want 5.00 (snapshot)", got)
	}

	// --- 9. Mixed statuses list pending first, completed last ---
	thirdResp := httpPostJSON(t, server, "/orders", map[string]interface{}{
		"customer_name": "Mona",
		"product_line":  "drink",
		"item_name":     "Tea",
	}, token)
	thirdID := int64(thirdResp["id"].(float64))

	updateStatus(t, server, feteerID, "completed", token)
	updateStatus(t, server, orderID, "in_progress", token)

	mixed := httpGetJSONList(t, server, "/orders?status=all", token)
	if len(mixed) != 3 {
		t.Fatalf("order list: got %d, want 3", len(mixed))
	}
	wantOrder := []int64{thirdID, orderID, feteerID} // pending, in_progress, completed
	for i, want := range wantOrder {
		if got := int64(mixed[i]["id"].(float64)); got != want {
			t.Fatalf("list position %d: got order %d, want %d (statuses: %s, %s, %s)",
				i, got, want,
				mixed[0]["status"], mixed[1]["status"], mixed[2]["status"])
		}
	}

	// --- 10. Complete the rest of the pipeline ---
	updateStatus(t, server, orderID, "completed", token)
	updateStatus(t, server, thirdID, "completed", token)

	// --- 11. Completed report aggregates all three orders ---
	report := httpGetJSON(t, server, "/reports/completed", token)
	if got := report["order_count"].(float64); got != 3 {
		t.Fatalf("report order_count: got %v, want 3", got)
	}

	// --- 12. CSV export has a header plus one row per completed order ---
	csvBody := httpGetRaw(t, server, "/export/completed.csv", token)
	lines := bytes.Count(csvBody, []byte("\n"))
	if lines != 4 {
		t.Fatalf("csv lines: got %d, want 4 (header + 3 rows)", lines)
	}

	// --- 13. Label prints for the drink order ---
	label := httpGetRaw(t, server, fmt.Sprintf("/orders/%d/label", orderID), token)
	if !bytes.Contains(label, []byte("Jane")) {
		t.Fatalf("label missing customer name:\n%s", label)
	}

	// --- 14. Delete is idempotent ---
	deleteOrder(t, server, orderID, token)
	deleteOrder(t, server, orderID, token)

	// --- 15. Protected routes reject missing tokens ---
	rejectUnauthenticated(t, server, "/orders")
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("counter_test"),
		tcpostgres.WithUsername("counter"),
		tcpostgres.WithPassword("counter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

// --- API call helpers ---

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	resp := httpPostJSON(t, server, "/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	}, "")
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", resp)
	}
	return token
}

func updateStatus(t *testing.T, server *httptest.Server, orderID int64, status, token string) {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"status": status})
	req, err := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/orders/%d/status", server.URL, orderID), bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH status %s: got %d", status, resp.StatusCode)
	}
}

func deleteOrder(t *testing.T, server *httptest.Server, orderID int64, token string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/orders/%d", server.URL, orderID), nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE order: got %d, want 204", resp.StatusCode)
	}
}

func rejectOrder(t *testing.T, server *httptest.Server, body map[string]interface{}, token string) {
	t.Helper()
	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/orders", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid order: got %d, want 400", resp.StatusCode)
	}
}

func rejectGet(t *testing.T, server *httptest.Server, path, token string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("GET %s: got %d, want 400", path, resp.StatusCode)
	}
}

func rejectUnauthenticated(t *testing.T, server *httptest.Server, path string) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("GET %s without token: got %d, want 401", path, resp.StatusCode)
	}
}

// --- HTTP helpers ---

func httpPostJSON(t *testing.T, server *httptest.Server, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("POST %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpPutJSON(t *testing.T, server *httptest.Server, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPut, server.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("PUT %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpGetJSON(t *testing.T, server *httptest.Server, path, token string) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(httpGetRaw(t, server, path, token), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpGetJSONList(t *testing.T, server *httptest.Server, path, token string) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.Unmarshal(httpGetRaw(t, server, path, token), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpGetRaw(t *testing.T, server *httptest.Server, path, token string) []byte {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return buf.Bytes()
}

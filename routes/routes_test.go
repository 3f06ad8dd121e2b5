package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/grocerytrack/backend/database"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return SetupRouter(db)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func createGrocery(t *testing.T, h http.Handler, body string) uint {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/grocery", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create grocery: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	return uint(data["id"].(float64))
}

func TestLivenessProbe(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["status"]; got != "ok" {
		t.Fatalf("expected status ok, got %v", got)
	}
}

func TestGroceryCreateValidationAndConflict(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/grocery", `{"name":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] == "" {
		t.Fatal("expected error message in body")
	}

	createGrocery(t, h, `{"name":"Flour"}`)
	w = doJSON(t, h, http.MethodPost, "/grocery", `{"name":"Flour"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate name, got %d", w.Code)
	}
}

func TestGroceryNumericStringCoercion(t *testing.T) {
	h := newTestRouter(t)

	// Numeric fields accept JSON strings.
	id := createGrocery(t, h, `{"name":"Rice","stock":"12","threshold":"3","unit_cost":"1.25"}`)

	w := doJSON(t, h, http.MethodGet, fmt.Sprintf("/grocery/%d", id), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["stock"].(float64) != 12 || got["threshold"].(float64) != 3 || got["unit_cost"].(float64) != 1.25 {
		t.Fatalf("unexpected coerced values: %v", got)
	}

	// Non-numeric strings fail with 400.
	w = doJSON(t, h, http.MethodPost, "/grocery", `{"name":"Beans","stock":"plenty"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric string, got %d", w.Code)
	}
}

func TestGroceryNotFoundRoutes(t *testing.T) {
	h := newTestRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/grocery/999"},
		{http.MethodPut, "/grocery/999"},
		{http.MethodDelete, "/grocery/999"},
		{http.MethodPost, "/grocery/999/add"},
		{http.MethodPost, "/grocery/999/subtract"},
		{http.MethodGet, "/grocery/999/movements"},
	} {
		w := doJSON(t, h, tc.method, tc.path, `{"qty":1}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestStockAdjustmentFlow(t *testing.T) {
	h := newTestRouter(t)
	id := createGrocery(t, h, `{"name":"Flour"}`)

	w := doJSON(t, h, http.MethodPost, fmt.Sprintf("/grocery/%d/add", id), `{"qty":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "Added" {
		t.Fatalf("unexpected add response: %s", w.Body.String())
	}

	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/grocery/%d/subtract", id), `{"qty":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("subtract: expected 200, got %d", w.Code)
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["stock"].(float64) != 6 {
		t.Fatalf("expected stock 6, got %v", data["stock"])
	}

	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/grocery/%d/add", id), `{"qty":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for qty 0, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/grocery/%d/movements", id), "")
	if w.Code != http.StatusOK {
		t.Fatalf("movements: expected 200, got %d", w.Code)
	}
	movements := decodeList(t, w)
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0]["change"].(float64) != -4 || movements[1]["change"].(float64) != 10 {
		t.Fatalf("unexpected movement ledger: %v", movements)
	}
}

func TestListGroceriesNewestFirst(t *testing.T) {
	h := newTestRouter(t)
	createGrocery(t, h, `{"name":"First"}`)
	createGrocery(t, h, `{"name":"Second"}`)

	w := doJSON(t, h, http.MethodGet, "/groceries", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := decodeList(t, w)
	if len(list) != 2 {
		t.Fatalf("expected 2 groceries, got %d", len(list))
	}
	if list[0]["name"] != "Second" || list[1]["name"] != "First" {
		t.Fatalf("expected newest first, got %v", list)
	}
}

func TestAlertsAndSummary(t *testing.T) {
	h := newTestRouter(t)
	createGrocery(t, h, `{"name":"Eggs","stock":1,"threshold":3}`)
	createGrocery(t, h, `{"name":"Butter","stock":3,"threshold":3}`)

	w := doJSON(t, h, http.MethodGet, "/alerts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("alerts: expected 200, got %d", w.Code)
	}
	alerts := decodeList(t, w)
	if len(alerts) != 1 || alerts[0]["name"] != "Eggs" {
		t.Fatalf("expected only Eggs in alerts, got %v", alerts)
	}

	w = doJSON(t, h, http.MethodGet, "/stats/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", w.Code)
	}
	summary := decodeBody(t, w)
	if summary["total_items"].(float64) != 2 ||
		summary["low_items"].(float64) != 1 ||
		summary["total_stock"].(float64) != 4 {
		t.Fatalf("unexpected summary: %v", summary)
	}
	if _, ok := summary["items"].([]any); !ok {
		t.Fatalf("expected items list in summary, got %v", summary["items"])
	}
}

func TestSummaryExport(t *testing.T) {
	h := newTestRouter(t)
	createGrocery(t, h, `{"name":"Eggs","stock":1,"threshold":3}`)

	w := doJSON(t, h, http.MethodGet, "/stats/summary/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("expected non-empty workbook body")
	}
}

func TestFoodLifecycle(t *testing.T) {
	h := newTestRouter(t)
	flourID := createGrocery(t, h, `{"name":"Flour","unit_cost":2.0}`)

	body := fmt.Sprintf(`{"name":"Bread","selling_price":10,"groceries":[{"grocery_id":%d,"quantity":3}]}`, flourID)
	w := doJSON(t, h, http.MethodPost, "/food", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create food: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	foodID := uint(data["id"].(float64))
	if data["cost_price"].(float64) != 6.0 {
		t.Fatalf("expected cost_price 6.0, got %v", data["cost_price"])
	}
	if data["profit"].(float64) != 4.0 {
		t.Fatalf("expected profit 4.0, got %v", data["profit"])
	}

	// Duplicate name rejected.
	w = doJSON(t, h, http.MethodPost, "/food", `{"name":"Bread"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate food, got %d", w.Code)
	}

	// Listing expands recipe lines.
	w = doJSON(t, h, http.MethodGet, "/foods", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list foods: expected 200, got %d", w.Code)
	}
	foods := decodeList(t, w)
	if len(foods) != 1 {
		t.Fatalf("expected 1 food, got %d", len(foods))
	}
	lines := foods[0]["groceries"].([]any)
	if len(lines) != 1 {
		t.Fatalf("expected 1 recipe line, got %d", len(lines))
	}
	line := lines[0].(map[string]any)
	if line["grocery_name"] != "Flour" || line["line_cost"].(float64) != 6.0 {
		t.Fatalf("unexpected recipe line: %v", line)
	}

	// Clearing the recipe recomputes cost to zero.
	w = doJSON(t, h, http.MethodPut, fmt.Sprintf("/food/%d", foodID), `{"groceries":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update food: expected 200, got %d", w.Code)
	}
	data = decodeBody(t, w)["data"].(map[string]any)
	if data["cost_price"].(float64) != 0 {
		t.Fatalf("expected cost_price 0 after clearing lines, got %v", data["cost_price"])
	}

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/food/%d", foodID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete food: expected 200, got %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/food/%d", foodID), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	// Serve one request so the counter vector has at least one child.
	doJSON(t, h, http.MethodGet, "/", "")

	w := doJSON(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "grocerytrack_http_requests_total") {
		t.Fatal("expected request counter in metrics exposition")
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListIngredientsRanksPrefixMatchesFirst(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	createTestIngredient(t, db, "Кокосовое молоко", "мл")
	createTestIngredient(t, db, "Молоко", "мл")
	createTestIngredient(t, db, "Соль", "г")

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients/?name=молок", nil)
	w := httptest.NewRecorder()
	ListIngredients(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var results []ingredientModel
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %+v", results)
	}
	if results[0].Name != "Молоко" {
		t.Fatalf("expected the prefix match first, got %q", results[0].Name)
	}
	if results[1].Name != "Кокосовое молоко" {
		t.Fatalf("expected the substring match second, got %q", results[1].Name)
	}

	// The query is matched case-insensitively, including Cyrillic.
	req = httptest.NewRequest(http.MethodGet, "/api/ingredients/?name=МОЛОК", nil)
	w = httptest.NewRecorder()
	ListIngredients(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected case folding to find 2 matches, got %+v", results)
	}
}

func TestListIngredientsWithoutQueryReturnsEverything(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	createTestIngredient(t, db, "Молоко", "мл")
	createTestIngredient(t, db, "Мука", "г")

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients/", nil)
	w := httptest.NewRecorder()
	ListIngredients(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var results []ingredientModel
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected every ingredient without a filter, got %+v", results)
	}
	if results[0].ID != 1 || results[1].ID != 2 {
		t.Fatalf("expected id-ascending order, got %+v", results)
	}
}

func TestRetrieveIngredient(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	milk := createTestIngredient(t, db, "Молоко", "мл")

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/ingredients/1/", nil), "id", "1")
	w := httptest.NewRecorder()
	RetrieveIngredient(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result ingredientModel
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.ID != milk.ID || result.Name != "Молоко" || result.MeasurementUnit != "мл" {
		t.Fatalf("unexpected ingredient: %+v", result)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/ingredients/999/", nil), "id", "999")
	w = httptest.NewRecorder()
	RetrieveIngredient(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	var detail map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if detail["detail"] != detailIngredientNotFound {
		t.Fatalf("unexpected detail: %q", detail["detail"])
	}
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SlavaKlkv/foodgram/models"
)

func TestBuildShoppingListAggregatesByNameAndUnit(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	chef := createTestUser(t, db, "chef@example.com", "chef")
	guest := createTestUser(t, db, "guest@example.com", "guest")

	milk := createTestIngredient(t, db, "Молоко", "мл")
	// A second record with the same name and unit; the list must merge it
	// with the first one, not print two lines.
	milkAgain := createTestIngredient(t, db, "Молоко", "мл")
	flour := createTestIngredient(t, db, "Мука", "г")
	salt := createTestIngredient(t, db, "Соль", "г")

	pancakes := createTestRecipe(t, db, chef, "Блины",
		models.RecipeIngredient{IngredientID: milk.ID, Amount: 100},
		models.RecipeIngredient{IngredientID: flour.ID, Amount: 200},
	)
	porridge := createTestRecipe(t, db, chef, "Каша",
		models.RecipeIngredient{IngredientID: milkAgain.ID, Amount: 150},
		models.RecipeIngredient{IngredientID: salt.ID, Amount: 5},
	)
	notInCart := createTestRecipe(t, db, chef, "Суп",
		models.RecipeIngredient{IngredientID: salt.ID, Amount: 500},
	)
	_ = notInCart

	for _, recipe := range []models.Recipe{pancakes, porridge} {
		if err := db.Create(&models.ShoppingCartItem{UserID: guest.ID, RecipeID: recipe.ID}).Error; err != nil {
			t.Fatalf("failed to add recipe to cart: %v", err)
		}
	}

	content, err := buildShoppingList(context.Background(), db, guest.ID)
	if err != nil {
		t.Fatalf("failed to build shopping list: %v", err)
	}

	lines := strings.Split(content, "\n")
	if lines[0] != shoppingListHeader {
		t.Fatalf("expected header %q, got %q", shoppingListHeader, lines[0])
	}
	// Newest cart recipe first, entries in first-encounter order, amounts
	// summed across recipes and across the duplicate ingredient records.
	want := []string{
		"- Молоко (мл) — 250",
		"- Соль (г) — 5",
		"- Мука (г) — 200",
	}
	if len(lines) != len(want)+1 {
		t.Fatalf("expected %d lines, got %d: %q", len(want)+1, len(lines), content)
	}
	for i, line := range want {
		if lines[i+1] != line {
			t.Fatalf("line %d: expected %q, got %q", i+1, line, lines[i+1])
		}
	}
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	guest := createTestUser(t, db, "guest@example.com", "guest")

	content, err := buildShoppingList(context.Background(), db, guest.ID)
	if err != nil {
		t.Fatalf("failed to build shopping list: %v", err)
	}
	if content != shoppingListHeader {
		t.Fatalf("expected only the header for an empty cart, got %q", content)
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	chef := createTestUser(t, db, "chef@example.com", "chef")
	guest := createTestUser(t, db, "guest@example.com", "guest")
	milk := createTestIngredient(t, db, "Молоко", "мл")
	recipe := createTestRecipe(t, db, chef, "Блины",
		models.RecipeIngredient{IngredientID: milk.ID, Amount: 100})
	if err := db.Create(&models.ShoppingCartItem{UserID: guest.ID, RecipeID: recipe.ID}).Error; err != nil {
		t.Fatalf("failed to add recipe to cart: %v", err)
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/recipes/download_shopping_cart/", nil), &guest)
	w := httptest.NewRecorder()
	DownloadShoppingCart(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="shopping_cart.txt"` {
		t.Fatalf("unexpected content disposition: %q", got)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, shoppingListHeader+"\n") {
		t.Fatalf("expected the header line, got %q", body)
	}
	if !strings.Contains(body, "- Молоко (мл) — 100") {
		t.Fatalf("expected the milk line, got %q", body)
	}
}

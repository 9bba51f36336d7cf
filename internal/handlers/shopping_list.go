package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

const shoppingListHeader = "Список покупок:"

// buildShoppingList walks every recipe in the user's shopping cart and
// accumulates ingredient amounts keyed by (name, measurement unit),
// summing when the same pair recurs across recipes or across distinct
// ingredient records sharing name and unit. Entries keep the order they
// were first encountered in.
func buildShoppingList(ctx context.Context, db *gorm.DB, userID uint) (string, error) {
	var recipes []models.Recipe
	err := db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipes.id").
		Where("shopping_cart_items.user_id = ?", userID).
		Order("recipes.id desc").
		Find(&recipes).Error
	if err != nil {
		return "", fmt.Errorf("load cart recipes: %w", err)
	}

	type entryKey struct {
		name string
		unit string
	}

	totals := make(map[entryKey]int)
	order := make([]entryKey, 0)
	for _, recipe := range recipes {
		for _, row := range recipe.Ingredients {
			if row.Ingredient == nil {
				continue
			}
			key := entryKey{name: row.Ingredient.Name, unit: row.Ingredient.MeasurementUnit}
			if _, seen := totals[key]; !seen {
				order = append(order, key)
			}
			totals[key] += row.Amount
		}
	}

	lines := make([]string, 0, len(order)+1)
	lines = append(lines, shoppingListHeader)
	for _, key := range order {
		lines = append(lines, fmt.Sprintf("- %s (%s) — %d", key.name, key.unit, totals[key]))
	}
	return strings.Join(lines, "\n"), nil
}

// DownloadShoppingCart exports the consolidated shopping list as a plain
// text attachment.
func DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	content, err := buildShoppingList(r.Context(), database, actor.ID)
	if err != nil {
		writeServerError(w, r, "failed to build shopping list", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	applog "github.com/SlavaKlkv/foodgram/internal/log"
	"github.com/SlavaKlkv/foodgram/models"
)

// recipePreloads attaches everything the read model needs.
func recipePreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")
}

// findRecipeByParam loads the recipe addressed by {id}, with preloads,
// writing the 404 itself when the recipe does not exist.
func findRecipeByParam(w http.ResponseWriter, r *http.Request) (*models.Recipe, bool) {
	idValue, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, detailRecipeNotFound)
		return nil, false
	}

	var recipe models.Recipe
	if err := recipePreloads(database.WithContext(r.Context())).
		First(&recipe, uint(idValue)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, detailRecipeNotFound)
			return nil, false
		}
		writeServerError(w, r, "failed to load recipe", err)
		return nil, false
	}
	return &recipe, true
}

// parseBoolFilter maps the filter vocabulary the frontend sends.
func parseBoolFilter(raw string) (value, ok bool) {
	switch raw {
	case "1", "true", "True":
		return true, true
	case "0", "false", "False":
		return false, true
	}
	return false, false
}

// ListRecipes returns the paginated, filtered recipe collection, newest
// first.
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	actor, authenticated := currentUser(r)

	query := database.WithContext(r.Context()).Model(&models.Recipe{})

	if author := r.URL.Query().Get("author"); author != "" {
		if authorID, err := strconv.ParseUint(author, 10, 64); err == nil {
			query = query.Where("author_id = ?", uint(authorID))
		}
	}

	if slugs := r.URL.Query()["tags"]; len(slugs) > 0 {
		query = query.Where(
			"recipes.id IN (?)",
			database.Model(&models.Tag{}).
				Select("recipe_tags.recipe_id").
				Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
				Where("tags.slug IN ?", slugs),
		)
	}

	membershipFilters := []struct {
		param string
		table string
	}{
		{"is_favorited", "favorites"},
		{"is_in_shopping_cart", "shopping_cart_items"},
	}
	for _, filter := range membershipFilters {
		raw := r.URL.Query().Get(filter.param)
		if raw == "" {
			continue
		}
		value, ok := parseBoolFilter(raw)
		if !ok {
			continue
		}
		if !authenticated {
			// Anonymous has no memberships: true filters to nothing,
			// false filters out nothing.
			if value {
				query = query.Where("1 = 0")
			}
			continue
		}
		condition := fmt.Sprintf(
			"recipes.id IN (SELECT recipe_id FROM %s WHERE user_id = ?)", filter.table)
		if !value {
			condition = fmt.Sprintf(
				"recipes.id NOT IN (SELECT recipe_id FROM %s WHERE user_id = ?)", filter.table)
		}
		query = query.Where(condition, actor.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		writeServerError(w, r, "failed to count recipes", err)
		return
	}

	var recipes []models.Recipe
	err := recipePreloads(query.
		Order("recipes.id desc").
		Offset(params.offset()).
		Limit(params.limit)).
		Find(&recipes).Error
	if err != nil {
		writeServerError(w, r, "failed to list recipes", err)
		return
	}

	results := make([]recipeReadModel, 0, len(recipes))
	for _, recipe := range recipes {
		model, err := projectRecipe(r, recipe)
		if err != nil {
			writeServerError(w, r, "failed to project recipe", err)
			return
		}
		results = append(results, model)
	}

	writeJSON(w, http.StatusOK, paginate(r, params, count, results))
}

// RetrieveRecipe returns the full read representation of one recipe.
func RetrieveRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}

	model, err := projectRecipe(r, *recipe)
	if err != nil {
		writeServerError(w, r, "failed to project recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// CreateRecipe validates the nested payload and persists a new recipe.
// The response is always the full read representation, never an echo of
// the write payload.
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	var payload recipeWritePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Некорректный запрос.")
		return
	}

	data, fieldErrors := validateRecipeWrite(r, payload, false)
	if fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	recipe, err := applyRecipeWrite(r, data, nil, actor.ID)
	if err != nil {
		writeServerError(w, r, "failed to create recipe", err)
		return
	}

	applog.Info(r.Context(), "created recipe", "recipe", recipe.ID, "author", actor.ID)
	respondWithRecipe(w, r, recipe.ID, http.StatusCreated)
}

// UpdateRecipe applies a PATCH. Authorization comes before validation:
// only the author may mutate, and a foreign requester gets 403, not 404.
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}
	if recipe.AuthorID != actor.ID {
		writeDetail(w, http.StatusForbidden, detailPermissionDenied)
		return
	}

	var payload recipeWritePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Некорректный запрос.")
		return
	}

	data, fieldErrors := validateRecipeWrite(r, payload, true)
	if fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	updated, err := applyRecipeWrite(r, data, recipe, actor.ID)
	if err != nil {
		writeServerError(w, r, "failed to update recipe", err)
		return
	}

	respondWithRecipe(w, r, updated.ID, http.StatusOK)
}

// DeleteRecipe removes a recipe with its association rows, then deletes
// the stored image file once the transaction has committed.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)

	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}
	if recipe.AuthorID != actor.ID {
		writeDetail(w, http.StatusForbidden, detailPermissionDenied)
		return
	}

	err := database.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Recipe{}, recipe.ID).Error
	})
	if err != nil {
		writeServerError(w, r, "failed to delete recipe", err)
		return
	}

	removeImage(recipe.Image)
	applog.Info(r.Context(), "deleted recipe", "recipe", recipe.ID, "author", actor.ID)
	w.WriteHeader(http.StatusNoContent)
}

// GetRecipeLink returns the deterministic short link for a recipe. The
// link is derived, never stored.
func GetRecipeLink(w http.ResponseWriter, r *http.Request) {
	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"short-link": fmt.Sprintf("%s/s/%d", options.SiteURL, recipe.ID),
	})
}

// respondWithRecipe reloads a recipe with preloads and writes its read
// representation.
func respondWithRecipe(w http.ResponseWriter, r *http.Request, recipeID uint, status int) {
	var recipe models.Recipe
	if err := recipePreloads(database.WithContext(r.Context())).
		First(&recipe, recipeID).Error; err != nil {
		writeServerError(w, r, "failed to reload recipe", err)
		return
	}

	model, err := projectRecipe(r, recipe)
	if err != nil {
		writeServerError(w, r, "failed to project recipe", err)
		return
	}
	writeJSON(w, status, model)
}

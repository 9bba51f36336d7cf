package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

const (
	detailAlreadyFavorited = "Рецепт уже в избранном."
	detailNotFavorited     = "Рецепта не было в избранном."
	detailAlreadyInCart    = "Рецепт уже в списке покупок."
	detailNotInCart        = "Рецепта не было в списке покупок."
)

// FavoriteRecipe adds a recipe to the actor's favorites.
func FavoriteRecipe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}

	row := models.Favorite{UserID: actor.ID, RecipeID: recipe.ID}
	addMembership(w, r, &row, *recipe, detailAlreadyFavorited)
}

// UnfavoriteRecipe removes a recipe from the actor's favorites.
func UnfavoriteRecipe(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}

	removeMembership(w, r, &models.Favorite{}, actor.ID, recipe.ID, detailNotFavorited)
}

// AddToShoppingCart puts a recipe into the actor's shopping cart.
func AddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}

	row := models.ShoppingCartItem{UserID: actor.ID, RecipeID: recipe.ID}
	addMembership(w, r, &row, *recipe, detailAlreadyInCart)
}

// RemoveFromShoppingCart takes a recipe out of the actor's shopping cart.
func RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	recipe, ok := findRecipeByParam(w, r)
	if !ok {
		return
	}

	removeMembership(w, r, &models.ShoppingCartItem{}, actor.ID, recipe.ID, detailNotInCart)
}

// addMembership creates a membership row. A duplicate, including one
// created by a concurrent request, surfaces as the domain 400 rather
// than a storage error; the composite unique index decides the winner.
func addMembership(w http.ResponseWriter, r *http.Request, row any, recipe models.Recipe, alreadyDetail string) {
	if err := database.WithContext(r.Context()).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeDetail(w, http.StatusBadRequest, alreadyDetail)
			return
		}
		writeServerError(w, r, "failed to create membership", err)
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipeShort(recipe))
}

// removeMembership deletes a membership row, failing with the domain 400
// when the pair was not a member to begin with.
func removeMembership(w http.ResponseWriter, r *http.Request, model any, userID, recipeID uint, notMemberDetail string) {
	result := database.WithContext(r.Context()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if result.Error != nil {
		writeServerError(w, r, "failed to delete membership", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeDetail(w, http.StatusBadRequest, notMemberDetail)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

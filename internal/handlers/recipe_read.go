package handlers

import (
	"net/http"

	"github.com/SlavaKlkv/foodgram/models"
)

type tagModel struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ingredientInRecipe struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// recipeReadModel is the full read representation of a recipe. Ingredient
// amounts come from the join rows, not the ingredient master records.
type recipeReadModel struct {
	ID               uint                 `json:"id"`
	Tags             []tagModel           `json:"tags"`
	Author           userProfile          `json:"author"`
	Ingredients      []ingredientInRecipe `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            *string              `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
}

type recipeShort struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Image       *string `json:"image"`
	CookingTime int     `json:"cooking_time"`
}

func projectRecipeShort(recipe models.Recipe) recipeShort {
	return recipeShort{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       imageURL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

// projectRecipe builds the read representation of a preloaded recipe.
// The per-requester booleans default to false for anonymous requests.
func projectRecipe(r *http.Request, recipe models.Recipe) (recipeReadModel, error) {
	var author models.User
	if recipe.Author != nil {
		author = *recipe.Author
	}
	profile, err := projectUserProfile(r, author)
	if err != nil {
		return recipeReadModel{}, err
	}

	tags := make([]tagModel, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, tagModel{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}

	ingredients := make([]ingredientInRecipe, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		entry := ingredientInRecipe{ID: row.IngredientID, Amount: row.Amount}
		if row.Ingredient != nil {
			entry.Name = row.Ingredient.Name
			entry.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, entry)
	}

	model := recipeReadModel{
		ID:          recipe.ID,
		Tags:        tags,
		Author:      profile,
		Ingredients: ingredients,
		Name:        recipe.Name,
		Image:       imageURL(recipe.Image),
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
	}

	if actor, ok := currentUser(r); ok {
		var count int64
		err = database.WithContext(r.Context()).Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", actor.ID, recipe.ID).
			Count(&count).Error
		if err != nil {
			return recipeReadModel{}, err
		}
		model.IsFavorited = count > 0

		count = 0
		err = database.WithContext(r.Context()).Model(&models.ShoppingCartItem{}).
			Where("user_id = ? AND recipe_id = ?", actor.ID, recipe.ID).
			Count(&count).Error
		if err != nil {
			return recipeReadModel{}, err
		}
		model.IsInShoppingCart = count > 0
	}

	return model, nil
}

package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

type ingredientModel struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ListIngredients returns ingredients as an unpaginated array. With
// ?name= only matches are returned, prefix matches ranked ahead of
// substring matches. Ranking runs in Go so case folding works for
// non-ASCII names, which SQL LOWER() does not guarantee across drivers.
func ListIngredients(w http.ResponseWriter, r *http.Request) {
	var ingredients []models.Ingredient
	if err := database.WithContext(r.Context()).Order("id asc").Find(&ingredients).Error; err != nil {
		writeServerError(w, r, "failed to list ingredients", err)
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("name")))
	if query != "" {
		ingredients = rankIngredientsByName(ingredients, query)
	}

	results := make([]ingredientModel, 0, len(ingredients))
	for _, ingredient := range ingredients {
		results = append(results, ingredientModel{
			ID:              ingredient.ID,
			Name:            ingredient.Name,
			MeasurementUnit: ingredient.MeasurementUnit,
		})
	}
	writeJSON(w, http.StatusOK, results)
}

// rankIngredientsByName keeps ingredients whose name contains query
// (case-insensitively) and orders prefix matches first, then by name.
func rankIngredientsByName(ingredients []models.Ingredient, query string) []models.Ingredient {
	type ranked struct {
		ingredient models.Ingredient
		priority   int
	}

	matches := make([]ranked, 0, len(ingredients))
	for _, ingredient := range ingredients {
		name := strings.ToLower(ingredient.Name)
		switch {
		case strings.HasPrefix(name, query):
			matches = append(matches, ranked{ingredient, 0})
		case strings.Contains(name, query):
			matches = append(matches, ranked{ingredient, 1})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].priority != matches[j].priority {
			return matches[i].priority < matches[j].priority
		}
		return matches[i].ingredient.Name < matches[j].ingredient.Name
	})

	result := make([]models.Ingredient, 0, len(matches))
	for _, match := range matches {
		result = append(result, match.ingredient)
	}
	return result
}

// RetrieveIngredient returns one ingredient by id.
func RetrieveIngredient(w http.ResponseWriter, r *http.Request) {
	idValue, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, detailIngredientNotFound)
		return
	}

	var ingredient models.Ingredient
	if err := database.WithContext(r.Context()).First(&ingredient, uint(idValue)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, detailIngredientNotFound)
			return
		}
		writeServerError(w, r, "failed to load ingredient", err)
		return
	}

	writeJSON(w, http.StatusOK, ingredientModel{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	})
}

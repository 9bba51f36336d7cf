package models

import "gorm.io/gorm"

// Recipe is authored content. Mutation is restricted to the author,
// reading is open to everyone. Default listing order is newest first.
// Image holds the media-relative path of the stored picture.
type Recipe struct {
	gorm.Model
	Name        string `gorm:"not null;size:256" json:"name"`
	Image       string `gorm:"not null" json:"image"`
	Text        string `gorm:"type:text;not null" json:"text"`
	CookingTime int    `gorm:"not null" json:"cooking_time"`
	AuthorID    uint   `gorm:"not null;index" json:"author_id"`
	Author      *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

// RecipeIngredient joins a recipe to an ingredient and carries the amount.
// A recipe cannot list the same ingredient twice, which the composite
// unique index enforces at the storage layer.
type RecipeIngredient struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int         `gorm:"not null" json:"amount"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

package models

import "time"

// Favorite marks a recipe as favorited by a user. Existence is the whole
// state; rows are hard-deleted so the pair can be re-created later.
type Favorite struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	CreatedAt time.Time
}

// ShoppingCartItem marks a recipe as present in a user's shopping cart.
type ShoppingCartItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	CreatedAt time.Time
}

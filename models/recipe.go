package models

import "gorm.io/gorm"

// Recipe macro totals are derived from the Ingredients set — never
// hand-edited. They always equal the sum over the current associations of
// ingredient macros scaled by quantity/serving_size, rounded to 2 decimals.
type Recipe struct {
	gorm.Model
	UserID          uint   `gorm:"index;not null" json:"user_id"`
	Title           string `gorm:"not null" json:"title"`
	Visibility      string `gorm:"size:16;default:private" json:"visibility"`
	Servings        int    `json:"servings"`
	PrepTimeMinutes int    `json:"prep_time_minutes"`
	CookTimeMinutes int    `json:"cook_time_minutes"`

	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`

	Ingredients []RecipeIngredient `json:"ingredients"`
}

// RecipeIngredient associates a recipe with a catalog ingredient. The set is
// replaced wholesale on each sync; rows absent from a new sync are removed.
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint    `gorm:"uniqueIndex:idx_recipe_ingredient;not null" json:"recipe_id"`
	IngredientID uint    `gorm:"uniqueIndex:idx_recipe_ingredient;not null" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"` // > 0, in Unit
	Unit         string  `gorm:"size:8;not null" json:"unit"`
	Notes        string  `json:"notes,omitempty"`

	Ingredient Ingredient `json:"ingredient"`
}

// File: entities/recipe.go
package entities

import (
	"github.com/google/uuid"
)

type Recipe struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title         string     `gorm:"not null" json:"title"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	AreaID        *uuid.UUID `gorm:"type:uuid;index" json:"area_id"`
	Instructions  string     `gorm:"type:text;not null" json:"instructions"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Thumb         *string    `json:"thumb"`
	Time          string     `gorm:"not null" json:"time"`
	FavoriteCount int64      `gorm:"not null;default:0;index" json:"favorite_count"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
	Timestamp
}

// RecipeIngredient keeps the per-recipe measure; Position preserves input order.
type RecipeIngredient struct {
	RecipeID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	Position     int       `gorm:"primaryKey;autoIncrement:false" json:"position"`
	IngredientID uuid.UUID `gorm:"type:uuid;index;not null" json:"ingredient_id"`
	Measure      string    `gorm:"not null" json:"measure"`
}

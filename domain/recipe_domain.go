package domain

import (
	"fmt"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetRecipes       = "success get recipes"
	MessageSuccessGetRecipeDetail  = "success get recipe detail"
	MessageSuccessGetPopular       = "success get popular recipes"
	MessageSuccessCreateRecipe     = "recipe created successfully"
	MessageSuccessDeleteRecipe     = "recipe deleted successfully"
	MessageSuccessGetMyRecipes     = "success get own recipes"
	MessageSuccessGetFavorites     = "success get favorite recipes"
	MessageSuccessGetUserRecipes   = "success get user recipes"
	MessageFailedGetRecipes        = "failed to get recipes"
	MessageFailedGetRecipeDetail   = "failed to get recipe detail"
	MessageFailedGetPopular        = "failed to get popular recipes"
	MessageFailedCreateRecipe      = "failed to create recipe"
	MessageFailedDeleteRecipe      = "failed to delete recipe"
	MessageFailedGetMyRecipes      = "failed to get own recipes"
	MessageFailedGetFavorites      = "failed to get favorite recipes"
	MessageFailedGetUserRecipes    = "failed to get user recipes"
	MessageFailedUploadRecipeThumb = "failed to upload recipe thumbnail"

	ErrRecipeNotFound           = fmt.Errorf("recipe %w", ErrNotFound)
	ErrUnauthorizedRecipeAccess = fmt.Errorf("unauthorized access to recipe: %w", ErrForbidden)
	ErrRecipeThumbRequired      = fmt.Errorf("thumb file is required: %w", ErrInvalidInput)
	ErrNoIngredients            = fmt.Errorf("recipe needs at least one ingredient: %w", ErrInvalidInput)
	ErrInvalidIngredients       = fmt.Errorf("ingredients must be a JSON array of {id, measure}: %w", ErrInvalidInput)
	ErrUnknownCategory          = fmt.Errorf("category %w", ErrNotFound)
	ErrUnknownArea              = fmt.Errorf("area %w", ErrNotFound)
	ErrUnknownIngredient        = fmt.Errorf("ingredient %w", ErrNotFound)
)

// PopularRecipesLimit caps GET /recipes/popular regardless of pagination.
const PopularRecipesLimit = 4

type (
	// RecipeFilter is the AND-combined equality filter of the recipe feed.
	// Category and Area are display names, Ingredient is an ingredient id.
	RecipeFilter struct {
		Category   string
		Area       string
		Ingredient string
	}

	RecipeSummary struct {
		ID            string       `json:"id"`
		Title         string       `json:"title"`
		Category      string       `json:"category"`
		Area          string       `json:"area"`
		Description   string       `json:"description"`
		Thumb         *string      `json:"thumb"`
		Time          string       `json:"time"`
		FavoriteCount int64        `json:"favorite_count"`
		Owner         OwnerSummary `json:"owner"`
		Favorite      bool         `json:"favorite"`
	}

	RecipeIngredientDetail struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Img     *string `json:"img"`
		Measure string  `json:"measure"`
	}

	RecipeDetail struct {
		ID            string                   `json:"id"`
		Title         string                   `json:"title"`
		Category      string                   `json:"category"`
		Area          string                   `json:"area"`
		Instructions  string                   `json:"instructions"`
		Description   string                   `json:"description"`
		Thumb         *string                  `json:"thumb"`
		Time          string                   `json:"time"`
		FavoriteCount int64                    `json:"favorite_count"`
		Ingredients   []RecipeIngredientDetail `json:"ingredients"`
		Owner         OwnerSummary             `json:"owner"`
		Favorite      bool                     `json:"favorite"`
		CreatedAt     time.Time                `json:"created_at"`
	}

	IngredientMeasure struct {
		ID      string `json:"id" validate:"required,uuid"`
		Measure string `json:"measure" validate:"required"`
	}

	// CreateRecipeRequest is bound from a multipart form; Ingredients arrives
	// as a JSON array in the "ingredients" field.
	CreateRecipeRequest struct {
		Title          string                `form:"title" validate:"required"`
		Category       string                `form:"category" validate:"required,uuid"`
		Area           string                `form:"area" validate:"required,uuid"`
		Instructions   string                `form:"instructions" validate:"required"`
		Description    string                `form:"description" validate:"required"`
		Time           string                `form:"time" validate:"required"`
		RawIngredients string                `form:"ingredients" validate:"required"`
		Ingredients    []IngredientMeasure   `form:"-" validate:"required,min=1,dive"`
		Thumb          *multipart.FileHeader `form:"-"`
	}
)

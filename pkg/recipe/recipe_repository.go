package recipe

import (
	"context"

	"foodies-api/entities"
	"foodies-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeQuery is the resolved feed filter. Nil fields do not constrain.
type RecipeQuery struct {
	CategoryID   *uuid.UUID
	AreaID       *uuid.UUID
	IngredientID *uuid.UUID
	OwnerID      *uuid.UUID
}

// Scope applies the filter. The count and the windowed fetch of a feed page
// share it, so total always matches the predicate of the page.
func (q RecipeQuery) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.CategoryID != nil {
			db = db.Where("recipes.category_id = ?", *q.CategoryID)
		}
		if q.AreaID != nil {
			db = db.Where("recipes.area_id = ?", *q.AreaID)
		}
		if q.OwnerID != nil {
			db = db.Where("recipes.owner_id = ?", *q.OwnerID)
		}
		if q.IngredientID != nil {
			db = db.Where(
				"EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id = ?)",
				*q.IngredientID,
			)
		}
		return db
	}
}

type (
	RecipeRepository interface {
		Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error

		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		DeleteRecipe(ctx context.Context, id uuid.UUID) (bool, error)
		AdjustOwnRecipesCount(ctx context.Context, ownerID uuid.UUID, delta int64) error
		GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		FindRecipes(ctx context.Context, q RecipeQuery, p pagination.Params) ([]*entities.Recipe, int64, error)
		GetPopularRecipes(ctx context.Context, limit int) ([]*entities.Recipe, error)
		GetFavoriteRecipes(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.Recipe, int64, error)

		FindCategoryIDByName(ctx context.Context, name string) (uuid.UUID, bool, error)
		FindAreaIDByName(ctx context.Context, name string) (uuid.UUID, bool, error)
		CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
		AreaExists(ctx context.Context, id uuid.UUID) (bool, error)
		CountIngredients(ctx context.Context, ids []uuid.UUID) (int64, error)

		GetCategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
		GetAreaNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
		GetOwners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.User, error)
		GetIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Ingredient, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recipeRepository{db: tx})
	})
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// DeleteRecipe removes the recipe; its ingredient rows cascade.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Recipe{})
	return res.RowsAffected > 0, res.Error
}

func (r *recipeRepository) AdjustOwnRecipesCount(ctx context.Context, ownerID uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", ownerID).
		UpdateColumn("own_recipes_count", gorm.Expr("GREATEST(own_recipes_count + ?, 0)", delta)).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) FindRecipes(ctx context.Context, q RecipeQuery, p pagination.Params) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Scopes(q.Scope()).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}

	if err := r.db.WithContext(ctx).
		Scopes(q.Scope(), p.Scope()).
		Order("recipes.created_at desc, recipes.id").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// GetPopularRecipes orders by favorite_count only; equal counts come back in
// whatever order the planner picks.
func (r *recipeRepository) GetPopularRecipes(ctx context.Context, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	if err := r.db.WithContext(ctx).
		Order("favorite_count desc").
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) GetFavoriteRecipes(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Joins("JOIN user_favorites ON recipes.id = user_favorites.recipe_id").
		Where("user_favorites.user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN user_favorites ON recipes.id = user_favorites.recipe_id").
		Where("user_favorites.user_id = ?", userID).
		Scopes(p.Scope()).
		Order("user_favorites.created_at desc, recipes.id").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) findIDByName(ctx context.Context, model interface{}, name string) (uuid.UUID, bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("name = ?", name).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return uuid.Nil, false, err
	}
	if len(ids) == 0 {
		return uuid.Nil, false, nil
	}
	return ids[0], true, nil
}

func (r *recipeRepository) FindCategoryIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	return r.findIDByName(ctx, &entities.Category{}, name)
}

func (r *recipeRepository) FindAreaIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	return r.findIDByName(ctx, &entities.Area{}, name)
}

func (r *recipeRepository) exists(ctx context.Context, model interface{}, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entities.Category{}, id)
}

func (r *recipeRepository) AreaExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entities.Area{}, id)
}

func (r *recipeRepository) CountIngredients(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Ingredient{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

type idName struct {
	ID   uuid.UUID
	Name string
}

func (r *recipeRepository) names(ctx context.Context, model interface{}, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []idName
	if err := r.db.WithContext(ctx).
		Model(model).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *recipeRepository) GetCategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.names(ctx, &entities.Category{}, ids)
}

func (r *recipeRepository) GetAreaNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.names(ctx, &entities.Area{}, ids)
}

func (r *recipeRepository) GetOwners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.User, error) {
	out := make(map[uuid.UUID]*entities.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*entities.User
	if err := r.db.WithContext(ctx).
		Select("id", "name", "avatar").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *recipeRepository) GetIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Ingredient, error) {
	out := make(map[uuid.UUID]*entities.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ingredients []*entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	for _, in := range ingredients {
		out[in.ID] = in
	}
	return out, nil
}

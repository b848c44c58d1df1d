package catalog

import (
	"context"

	"foodies-api/entities"

	"gorm.io/gorm"
)

type (
	CatalogRepository interface {
		GetCategories(ctx context.Context) ([]*entities.Category, error)
		GetAreas(ctx context.Context) ([]*entities.Area, error)
		GetIngredients(ctx context.Context, name string) ([]*entities.Ingredient, error)
	}

	catalogRepository struct {
		db *gorm.DB
	}
)

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetCategories(ctx context.Context) ([]*entities.Category, error) {
	var categories []*entities.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *catalogRepository) GetAreas(ctx context.Context) ([]*entities.Area, error) {
	var areas []*entities.Area
	if err := r.db.WithContext(ctx).Order("name asc").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// GetIngredients optionally narrows by a case-insensitive name prefix.
func (r *catalogRepository) GetIngredients(ctx context.Context, name string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	query := r.db.WithContext(ctx)
	if name != "" {
		query = query.Where("name ILIKE ?", name+"%")
	}
	if err := query.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

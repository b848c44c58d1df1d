package catalog

import (
	"context"
	"strings"

	"foodies-api/domain"
)

type (
	CatalogService interface {
		GetCategories(ctx context.Context) ([]domain.CategoryResponse, error)
		GetAreas(ctx context.Context) ([]domain.AreaResponse, error)
		GetIngredients(ctx context.Context, name string) ([]domain.IngredientResponse, error)
	}

	catalogService struct {
		catalogRepository CatalogRepository
	}
)

func NewCatalogService(catalogRepository CatalogRepository) CatalogService {
	return &catalogService{catalogRepository: catalogRepository}
}

func (s *catalogService) GetCategories(ctx context.Context) ([]domain.CategoryResponse, error) {
	categories, err := s.catalogRepository.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, domain.CategoryResponse{
			ID:          c.ID.String(),
			Name:        c.Name,
			Image:       c.Image,
			Description: c.Description,
		})
	}
	return res, nil
}

func (s *catalogService) GetAreas(ctx context.Context) ([]domain.AreaResponse, error) {
	areas, err := s.catalogRepository.GetAreas(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.AreaResponse, 0, len(areas))
	for _, a := range areas {
		res = append(res, domain.AreaResponse{ID: a.ID.String(), Name: a.Name})
	}
	return res, nil
}

func (s *catalogService) GetIngredients(ctx context.Context, name string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.catalogRepository.GetIngredients(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	res := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, in := range ingredients {
		res = append(res, domain.IngredientResponse{
			ID:          in.ID.String(),
			Name:        in.Name,
			Description: in.Description,
			Img:         in.Image,
		})
	}
	return res, nil
}

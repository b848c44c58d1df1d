// Package recipe composes the recipe feeds: recipes joined with their owner,
// category, area and ingredients, personalized with the viewer's favorites.
package recipe

import (
	"context"
	"errors"
	"strings"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/internal/utils/storage"
	"foodies-api/pkg/identity"
	"foodies-api/pkg/pagination"
	"foodies-api/pkg/relation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const thumbFolder = "recipes"

type (
	RecipeService interface {
		ListRecipes(ctx context.Context, filter domain.RecipeFilter, p pagination.Params, viewer *identity.Viewer) (pagination.Result[domain.RecipeSummary], error)
		GetRecipe(ctx context.Context, id string, viewer *identity.Viewer) (domain.RecipeDetail, error)
		GetPopularRecipes(ctx context.Context, viewer *identity.Viewer) ([]domain.RecipeSummary, error)
		GetMyRecipes(ctx context.Context, viewer *identity.Viewer, p pagination.Params) (pagination.Result[domain.RecipeSummary], error)
		GetUserRecipes(ctx context.Context, userID string, p pagination.Params, viewer *identity.Viewer) (pagination.Result[domain.RecipeSummary], error)
		GetFavoriteRecipes(ctx context.Context, viewer *identity.Viewer, p pagination.Params) (pagination.Result[domain.RecipeSummary], error)
		AddRecipe(ctx context.Context, req domain.CreateRecipeRequest, ownerID string) (domain.RecipeDetail, error)
		DeleteRecipe(ctx context.Context, id string, ownerID string) error
		FavoriteRecipe(ctx context.Context, id string, viewer *identity.Viewer) (domain.RecipeDetail, error)
		UnfavoriteRecipe(ctx context.Context, id string, viewer *identity.Viewer) (domain.RecipeDetail, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		ledger           relation.LedgerService
		s3               storage.AwsS3
		logger           *zap.Logger
	}
)

func NewRecipeService(recipeRepository RecipeRepository, ledger relation.LedgerService, s3 storage.AwsS3, logger *zap.Logger) RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recipeService{
		recipeRepository: recipeRepository,
		ledger:           ledger,
		s3:               s3,
		logger:           logger.Named("recipe"),
	}
}

func (s *recipeService) ListRecipes(ctx context.Context, filter domain.RecipeFilter, p pagination.Params, viewer *identity.Viewer) (pagination.Result[domain.RecipeSummary], error) {
	q, ok, err := s.resolveFilter(ctx, filter)
	if err != nil {
		return pagination.Result[domain.RecipeSummary]{}, err
	}
	if !ok {
		// an unknown category or area name matches nothing
		return pagination.NewResult[domain.RecipeSummary](p, 0, nil), nil
	}
	return s.page(ctx, q, p, viewer)
}

// resolveFilter maps display names to ids. ok is false when a name does not
// exist.
func (s *recipeService) resolveFilter(ctx context.Context, filter domain.RecipeFilter) (RecipeQuery, bool, error) {
	var q RecipeQuery

	if name := strings.TrimSpace(filter.Category); name != "" {
		id, found, err := s.recipeRepository.FindCategoryIDByName(ctx, name)
		if err != nil || !found {
			return q, false, err
		}
		q.CategoryID = &id
	}
	if name := strings.TrimSpace(filter.Area); name != "" {
		id, found, err := s.recipeRepository.FindAreaIDByName(ctx, name)
		if err != nil || !found {
			return q, false, err
		}
		q.AreaID = &id
	}
	if raw := strings.TrimSpace(filter.Ingredient); raw != "" {
		id, err := domain.ParseID(raw)
		if err != nil {
			return q, false, err
		}
		q.IngredientID = &id
	}
	return q, true, nil
}

func (s *recipeService) page(ctx context.Context, q RecipeQuery, p pagination.Params, viewer *identity.Viewer) (pagination.Result[domain.RecipeSummary], error) {
	recipes, total, err := s.recipeRepository.FindRecipes(ctx, q, p)
	if err != nil {
		return pagination.Result[domain.RecipeSummary]{}, err
	}
	items, err := s.summarize(ctx, recipes, viewer)
	if err != nil {
		return pagination.Result[domain.RecipeSummary]{}, err
	}
	return pagination.NewResult(p, total, items), nil
}

func (s *recipeService) GetPopularRecipes(ctx context.Context, viewer *identity.Viewer) ([]domain.RecipeSummary, error) {
	recipes, err := s.recipeRepository.GetPopularRecipes(ctx, domain.PopularRecipesLimit)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, recipes, viewer)
}

func (s *recipeService) GetMyRecipes(ctx context.Context, viewer *identity.Viewer, p pagination.Params) (pagination.Result[domain.RecipeSummary], error) {
	if viewer == nil {
		return pagination.Result[domain.RecipeSummary]{}, domain.ErrTokenNotFound
	}
	owner := viewer.ID
	return s.page(ctx, RecipeQuery{OwnerID: &owner}, p, viewer)
}

func (s *recipeService) GetUserRecipes(ctx context.Context, userID string, p pagination.Params, viewer *identity.Viewer) (pagination.Result[domain.RecipeSummary], error) {
	owner, err := domain.ParseID(userID)
	if err != nil {
		return pagination.Result[domain.RecipeSummary]{}, err
	}
	return s.page(ctx, RecipeQuery{OwnerID: &owner}, p, viewer)
}

func (s *recipeService) GetFavoriteRecipes(ctx context.Context, viewer *identity.Viewer, p pagination.Params) (pagination.Result[domain.RecipeSummary], error) {
	if viewer == nil {
		return pagination.Result[domain.RecipeSummary]{}, domain.ErrTokenNotFound
	}
	recipes, total, err := s.recipeRepository.GetFavoriteRecipes(ctx, viewer.ID, p)
	if err != nil {
		return pagination.Result[domain.RecipeSummary]{}, err
	}
	items, err := s.summarize(ctx, recipes, viewer)
	if err != nil {
		return pagination.Result[domain.RecipeSummary]{}, err
	}
	// the rows come from the favorites table itself
	for i := range items {
		items[i].Favorite = true
	}
	return pagination.NewResult(p, total, items), nil
}

// summarize joins a page of recipes with owners, categories and areas.
// Dangling references leave the joined fields empty.
func (s *recipeService) summarize(ctx context.Context, recipes []*entities.Recipe, viewer *identity.Viewer) ([]domain.RecipeSummary, error) {
	var ownerIDs, categoryIDs, areaIDs []uuid.UUID
	for _, r := range recipes {
		ownerIDs = append(ownerIDs, r.OwnerID)
		if r.CategoryID != nil {
			categoryIDs = append(categoryIDs, *r.CategoryID)
		}
		if r.AreaID != nil {
			areaIDs = append(areaIDs, *r.AreaID)
		}
	}

	var (
		owners     map[uuid.UUID]*entities.User
		categories map[uuid.UUID]string
		areas      map[uuid.UUID]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owners, err = s.recipeRepository.GetOwners(gctx, unique(ownerIDs))
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.recipeRepository.GetCategoryNames(gctx, unique(categoryIDs))
		return err
	})
	g.Go(func() (err error) {
		areas, err = s.recipeRepository.GetAreaNames(gctx, unique(areaIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, domain.RecipeSummary{
			ID:            r.ID.String(),
			Title:         r.Title,
			Category:      lookupName(categories, r.CategoryID),
			Area:          lookupName(areas, r.AreaID),
			Description:   r.Description,
			Thumb:         r.Thumb,
			Time:          r.Time,
			FavoriteCount: r.FavoriteCount,
			Owner:         ownerSummary(owners, r.OwnerID),
			Favorite:      viewer.HasFavorite(r.ID),
		})
	}
	return items, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, id string, viewer *identity.Viewer) (domain.RecipeDetail, error) {
	recipeID, err := domain.ParseID(id)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeDetail{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeDetail{}, err
	}
	return s.detail(ctx, recipe, viewer.HasFavorite(recipe.ID))
}

func (s *recipeService) detail(ctx context.Context, recipe *entities.Recipe, favorite bool) (domain.RecipeDetail, error) {
	ingredientIDs := make([]uuid.UUID, 0, len(recipe.Ingredients))
	for _, in := range recipe.Ingredients {
		ingredientIDs = append(ingredientIDs, in.IngredientID)
	}

	var (
		owners      map[uuid.UUID]*entities.User
		ingredients map[uuid.UUID]*entities.Ingredient
		categories  map[uuid.UUID]string
		areas       map[uuid.UUID]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owners, err = s.recipeRepository.GetOwners(gctx, []uuid.UUID{recipe.OwnerID})
		return err
	})
	g.Go(func() (err error) {
		ingredients, err = s.recipeRepository.GetIngredients(gctx, unique(ingredientIDs))
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.recipeRepository.GetCategoryNames(gctx, optionalID(recipe.CategoryID))
		return err
	})
	g.Go(func() (err error) {
		areas, err = s.recipeRepository.GetAreaNames(gctx, optionalID(recipe.AreaID))
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.RecipeDetail{}, err
	}

	details := make([]domain.RecipeIngredientDetail, 0, len(recipe.Ingredients))
	for _, in := range recipe.Ingredients {
		d := domain.RecipeIngredientDetail{ID: in.IngredientID.String(), Measure: in.Measure}
		if ingredient, ok := ingredients[in.IngredientID]; ok {
			d.Name = ingredient.Name
			d.Img = ingredient.Image
		}
		details = append(details, d)
	}

	return domain.RecipeDetail{
		ID:            recipe.ID.String(),
		Title:         recipe.Title,
		Category:      lookupName(categories, recipe.CategoryID),
		Area:          lookupName(areas, recipe.AreaID),
		Instructions:  recipe.Instructions,
		Description:   recipe.Description,
		Thumb:         recipe.Thumb,
		Time:          recipe.Time,
		FavoriteCount: recipe.FavoriteCount,
		Ingredients:   details,
		Owner:         ownerSummary(owners, recipe.OwnerID),
		Favorite:      favorite,
		CreatedAt:     recipe.CreatedAt,
	}, nil
}

func (s *recipeService) AddRecipe(ctx context.Context, req domain.CreateRecipeRequest, ownerID string) (domain.RecipeDetail, error) {
	owner, err := domain.ParseID(ownerID)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	if req.Thumb == nil {
		return domain.RecipeDetail{}, domain.ErrRecipeThumbRequired
	}
	if len(req.Ingredients) == 0 {
		return domain.RecipeDetail{}, domain.ErrNoIngredients
	}

	recipe := &entities.Recipe{
		ID:           uuid.New(),
		OwnerID:      owner,
		Title:        strings.TrimSpace(req.Title),
		Instructions: req.Instructions,
		Description:  req.Description,
		Time:         req.Time,
	}
	if err := s.resolveReferences(ctx, req, recipe); err != nil {
		return domain.RecipeDetail{}, err
	}

	key, err := s.s3.UploadFile(recipe.ID.String(), req.Thumb, thumbFolder, storage.AllowImage...)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	thumb := s.s3.GetPublicLinkKey(key)
	recipe.Thumb = &thumb

	err = s.recipeRepository.Transaction(ctx, func(tx RecipeRepository) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return err
		}
		return tx.AdjustOwnRecipesCount(ctx, owner, 1)
	})
	if err != nil {
		s.deleteThumb(key)
		return domain.RecipeDetail{}, err
	}

	return s.detail(ctx, recipe, false)
}

// resolveReferences checks that category, area and every ingredient exist
// and fills the ids into recipe.
func (s *recipeService) resolveReferences(ctx context.Context, req domain.CreateRecipeRequest, recipe *entities.Recipe) error {
	categoryID, err := domain.ParseID(req.Category)
	if err != nil {
		return err
	}
	areaID, err := domain.ParseID(req.Area)
	if err != nil {
		return err
	}

	ok, err := s.recipeRepository.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnknownCategory
	}
	ok, err = s.recipeRepository.AreaExists(ctx, areaID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnknownArea
	}
	recipe.CategoryID = &categoryID
	recipe.AreaID = &areaID

	ids := make([]uuid.UUID, 0, len(req.Ingredients))
	recipe.Ingredients = make([]entities.RecipeIngredient, 0, len(req.Ingredients))
	for i, in := range req.Ingredients {
		id, err := domain.ParseID(in.ID)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		recipe.Ingredients = append(recipe.Ingredients, entities.RecipeIngredient{
			RecipeID:     recipe.ID,
			Position:     i,
			IngredientID: id,
			Measure:      in.Measure,
		})
	}

	ids = unique(ids)
	found, err := s.recipeRepository.CountIngredients(ctx, ids)
	if err != nil {
		return err
	}
	if found != int64(len(ids)) {
		return domain.ErrUnknownIngredient
	}
	return nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id string, ownerID string) error {
	recipeID, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if recipe.OwnerID.String() != ownerID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	err = s.recipeRepository.Transaction(ctx, func(tx RecipeRepository) error {
		deleted, err := tx.DeleteRecipe(ctx, recipe.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrRecipeNotFound
		}
		return tx.AdjustOwnRecipesCount(ctx, recipe.OwnerID, -1)
	})
	if err != nil {
		return err
	}

	// dangling favorites left behind by a failure here are swept by the reconciler
	if _, err := s.ledger.ForgetRecipe(ctx, recipe.ID); err != nil {
		s.logger.Warn("failed to remove deleted recipe from favorites",
			zap.String("recipe_id", recipe.ID.String()), zap.Error(err))
	}
	if recipe.Thumb != nil {
		if key := s.s3.GetObjectKeyFromLink(*recipe.Thumb); key != "" {
			s.deleteThumb(key)
		}
	}
	return nil
}

func (s *recipeService) deleteThumb(key string) {
	if err := s.s3.DeleteFile(key); err != nil {
		s.logger.Warn("failed to delete recipe thumbnail", zap.String("key", key), zap.Error(err))
	}
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, id string, viewer *identity.Viewer) (domain.RecipeDetail, error) {
	return s.toggleFavorite(ctx, id, viewer, true)
}

func (s *recipeService) UnfavoriteRecipe(ctx context.Context, id string, viewer *identity.Viewer) (domain.RecipeDetail, error) {
	return s.toggleFavorite(ctx, id, viewer, false)
}

// toggleFavorite mutates through the ledger and returns the recipe as it is
// after the change.
func (s *recipeService) toggleFavorite(ctx context.Context, id string, viewer *identity.Viewer, favorite bool) (domain.RecipeDetail, error) {
	if viewer == nil {
		return domain.RecipeDetail{}, domain.ErrTokenNotFound
	}

	mutate := s.ledger.Unfavorite
	if favorite {
		mutate = s.ledger.Favorite
	}
	if err := mutate(ctx, viewer.ID.String(), id); err != nil {
		return domain.RecipeDetail{}, err
	}

	recipeID, err := domain.ParseID(id)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeDetail{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeDetail{}, err
	}
	return s.detail(ctx, recipe, favorite)
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func optionalID(id *uuid.UUID) []uuid.UUID {
	if id == nil {
		return nil
	}
	return []uuid.UUID{*id}
}

func lookupName(names map[uuid.UUID]string, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return names[*id]
}

func ownerSummary(owners map[uuid.UUID]*entities.User, id uuid.UUID) domain.OwnerSummary {
	summary := domain.OwnerSummary{ID: id.String()}
	if owner, ok := owners[id]; ok {
		summary.Name = owner.Name
		summary.Avatar = owner.Avatar
	}
	return summary
}

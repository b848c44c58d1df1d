package handlers

import (
	"fmt"

	"foodies-api/domain"
	"foodies-api/internal/api/presenters"
	"foodies-api/internal/middleware"
	"foodies-api/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		ListRecipes(c *fiber.Ctx) error
		GetRecipe(c *fiber.Ctx) error
		GetPopularRecipes(c *fiber.Ctx) error
		GetMyRecipes(c *fiber.Ctx) error
		GetUserRecipes(c *fiber.Ctx) error
		GetFavoriteRecipes(c *fiber.Ctx) error
		AddRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		FavoriteRecipe(c *fiber.Ctx) error
		UnfavoriteRecipe(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

func (h *recipeHandler) ListRecipes(c *fiber.Ctx) error {
	filter := domain.RecipeFilter{
		Category:   c.Query("category"),
		Area:       c.Query("area"),
		Ingredient: c.Query("ingredient"),
	}

	res, err := h.recipeService.ListRecipes(c.UserContext(), filter, pageParams(c), middleware.Viewer(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipe(c *fiber.Ctx) error {
	res, err := h.recipeService.GetRecipe(c.UserContext(), c.Params("id"), middleware.Viewer(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetRecipeDetail, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) GetPopularRecipes(c *fiber.Ctx) error {
	res, err := h.recipeService.GetPopularRecipes(c.UserContext(), middleware.Viewer(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetPopular, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPopular)
}

func (h *recipeHandler) GetMyRecipes(c *fiber.Ctx) error {
	res, err := h.recipeService.GetMyRecipes(c.UserContext(), middleware.Viewer(c), pageParams(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetMyRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetMyRecipes)
}

func (h *recipeHandler) GetUserRecipes(c *fiber.Ctx) error {
	res, err := h.recipeService.GetUserRecipes(c.UserContext(), c.Params("id"), pageParams(c), middleware.Viewer(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetUserRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUserRecipes)
}

func (h *recipeHandler) GetFavoriteRecipes(c *fiber.Ctx) error {
	res, err := h.recipeService.GetFavoriteRecipes(c.UserContext(), middleware.Viewer(c), pageParams(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetFavorites, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetFavorites)
}

func (h *recipeHandler) AddRecipe(c *fiber.Ctx) error {
	req := new(domain.CreateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := json.Unmarshal([]byte(req.RawIngredients), &req.Ingredients); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe,
			fmt.Errorf("%w: %v", domain.ErrInvalidIngredients, err))
	}

	file, err := c.FormFile("thumb")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadRecipeThumb, domain.ErrRecipeThumbRequired)
	}
	req.Thumb = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe, err)
	}

	res, err := h.recipeService.AddRecipe(c.UserContext(), *req, middleware.UserID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedCreateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.recipeService.DeleteRecipe(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedDeleteRecipe, err)
	}
	return presenters.SuccessResponse(c, fiber.Map{"id": id}, fiber.StatusOK, domain.MessageSuccessDeleteRecipe)
}

func (h *recipeHandler) FavoriteRecipe(c *fiber.Ctx) error {
	res, err := h.recipeService.FavoriteRecipe(c.UserContext(), c.Params("id"), middleware.Viewer(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedFavorite, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessFavorite)
}

func (h *recipeHandler) UnfavoriteRecipe(c *fiber.Ctx) error {
	res, err := h.recipeService.UnfavoriteRecipe(c.UserContext(), c.Params("id"), middleware.Viewer(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUnfavorite, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUnfavorite)
}

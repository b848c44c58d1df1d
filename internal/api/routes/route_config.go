package routes

import (
	"foodies-api/domain"
	"foodies-api/internal/api/handlers"
	"foodies-api/internal/api/presenters"
	"foodies-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	RecipeHandler  handlers.RecipeHandler
	CatalogHandler handlers.CatalogHandler
	AdminHandler   handlers.AdminHandler
	Middleware     middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.App.Use(c.Middleware.Metrics())
	c.GuestRoute()
	c.User()
	c.Recipe()
	c.Catalog()
	c.Admin()
	c.NotFound()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(ctx *fiber.Ctx) error {
		return presenters.SuccessResponse(ctx, nil, fiber.StatusOK, domain.MessageSuccessPong)
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) User() {
	auth := c.Middleware.AuthRequired()
	user := c.App.Group("/api/users")
	// user routes
	{
		user.Post("/signup", c.UserHandler.Register)
		user.Post("/signin", c.UserHandler.Login)
		user.Get("/current", auth, c.UserHandler.Me)
		user.Post("/signout", auth, c.UserHandler.Logout)
		user.Get("/followers", auth, c.UserHandler.GetMyFollowers)
		user.Get("/followings", auth, c.UserHandler.GetFollowings)
		user.Patch("/follow", auth, c.UserHandler.Follow)
		user.Patch("/unfollow", auth, c.UserHandler.Unfollow)
		user.Patch("/avatar", auth, c.UserHandler.UpdateAvatar)
		user.Get("/:id", auth, c.UserHandler.GetProfile)
		user.Get("/:id/followers", auth, c.UserHandler.GetUserFollowers)
		user.Get("/:id/recipes", c.Middleware.AuthOptional(), c.RecipeHandler.GetUserRecipes)
	}
}

func (c *Config) Recipe() {
	auth := c.Middleware.AuthRequired()
	optional := c.Middleware.AuthOptional()
	recipes := c.App.Group("/api/recipes")

	recipes.Get("", optional, c.Middleware.NormalizeQuery("category", "area"), c.RecipeHandler.ListRecipes)
	recipes.Get("/popular", optional, c.RecipeHandler.GetPopularRecipes)
	recipes.Get("/my", auth, c.RecipeHandler.GetMyRecipes)
	recipes.Get("/favorites", auth, c.RecipeHandler.GetFavoriteRecipes)
	recipes.Get("/:id", optional, c.RecipeHandler.GetRecipe)
	recipes.Post("", auth, c.RecipeHandler.AddRecipe)
	recipes.Delete("/:id", auth, c.RecipeHandler.DeleteRecipe)
	recipes.Post("/:id/favorite", auth, c.RecipeHandler.FavoriteRecipe)
	recipes.Delete("/:id/favorite", auth, c.RecipeHandler.UnfavoriteRecipe)
}

func (c *Config) Catalog() {
	api := c.App.Group("/api")
	api.Get("/categories", c.CatalogHandler.GetCategories)
	api.Get("/areas", c.CatalogHandler.GetAreas)
	api.Get("/ingredients", c.CatalogHandler.GetIngredients)
	api.Get("/testimonials", c.CatalogHandler.GetTestimonials)
}

func (c *Config) Admin() {
	admin := c.App.Group("/api/admin", c.Middleware.AuthRequired(), c.Middleware.AdminOnly())
	admin.Post("/reconcile", c.AdminHandler.Reconcile)
}

func (c *Config) NotFound() {
	c.App.Use(func(ctx *fiber.Ctx) error {
		return presenters.ErrorResponse(ctx, fiber.StatusNotFound, domain.MessageRouteNotFound, nil)
	})
}

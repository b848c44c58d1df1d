package config

import (
	"fmt"
	"os"
	"time"

	"foodies-api/internal/api/handlers"
	"foodies-api/internal/api/routes"
	"foodies-api/internal/middleware"
	"foodies-api/internal/utils"
	"foodies-api/internal/utils/mailing"
	"foodies-api/internal/utils/storage"
	"foodies-api/pkg/catalog"
	"foodies-api/pkg/identity"
	"foodies-api/pkg/jwt"
	"foodies-api/pkg/recipe"
	"foodies-api/pkg/relation"
	"foodies-api/pkg/testimonial"
	"foodies-api/pkg/user"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewApp builds the HTTP application and returns the reconciler it shares
// with the background supervisor.
func NewApp(db *gorm.DB, log *zap.Logger) (*fiber.App, relation.Reconciler, error) {
	cfg := utils.Get()
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: cfg.AppEnv == "development",
		JSONEncoder:       json.Marshal,
		JSONDecoder:       json.Unmarshal,
	})
	validator := utils.Validate

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening access log: %w", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	mailer := mailing.NewMailer(mailing.LoadMailConfig())

	// Repository
	userRepository := user.NewUserRepository(db)
	relationRepository := relation.NewRelationRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	testimonialRepository := testimonial.NewTestimonialRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	resolver := identity.NewResolver(jwtService, userRepository)
	ledger := relation.NewLedgerService(relationRepository, *cfg.LedgerTransactional, log)
	reconciler := relation.NewReconciler(relationRepository, cfg.ReconcileGrace, log)
	userService := user.NewUserService(userRepository, jwtService, ledger, s3, mailer, cfg.AppURL, log)
	recipeService := recipe.NewRecipeService(recipeRepository, ledger, s3, log)
	catalogService := catalog.NewCatalogService(catalogRepository)
	testimonialService := testimonial.NewTestimonialService(testimonialRepository)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	catalogHandler := handlers.NewCatalogHandler(catalogService, testimonialService)
	adminHandler := handlers.NewAdminHandler(reconciler)

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		RecipeHandler:  recipeHandler,
		CatalogHandler: catalogHandler,
		AdminHandler:   adminHandler,
		Middleware:     middleware.NewMiddleware(resolver, cfg.AdminUserIDs),
	}
	routesConfig.Setup()
	return app, reconciler, nil
}

package migration

import (
	"fmt"

	"foodies-api/entities"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4() backs every primary key default
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("create uuid-ossp extension: %w", err)
	}

	models := []struct {
		name  string
		model interface{}
	}{
		{"user", &entities.User{}},
		{"category", &entities.Category{}},
		{"area", &entities.Area{}},
		{"ingredient", &entities.Ingredient{}},
		{"recipe", &entities.Recipe{}},
		{"recipe ingredient", &entities.RecipeIngredient{}},
		{"user following", &entities.UserFollowing{}},
		{"user follower", &entities.UserFollower{}},
		{"user favorite", &entities.UserFavorite{}},
		{"testimonial", &entities.Testimonial{}},
		{"relation intent", &entities.RelationIntent{}},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", m.name, err)
		}
	}

	return nil
}

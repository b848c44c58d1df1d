package testimonial

import (
	"context"

	"foodies-api/entities"

	"gorm.io/gorm"
)

type (
	TestimonialRepository interface {
		GetTestimonials(ctx context.Context) ([]*entities.Testimonial, error)
	}

	testimonialRepository struct {
		db *gorm.DB
	}
)

func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) GetTestimonials(ctx context.Context) ([]*entities.Testimonial, error) {
	var testimonials []*entities.Testimonial
	if err := r.db.WithContext(ctx).
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "avatar")
		}).
		Order("created_at desc").
		Find(&testimonials).Error; err != nil {
		return nil, err
	}
	return testimonials, nil
}

package testimonial

import (
	"context"

	"foodies-api/domain"
)

type (
	TestimonialService interface {
		GetTestimonials(ctx context.Context) ([]domain.TestimonialResponse, error)
	}

	testimonialService struct {
		testimonialRepository TestimonialRepository
	}
)

func NewTestimonialService(testimonialRepository TestimonialRepository) TestimonialService {
	return &testimonialService{testimonialRepository: testimonialRepository}
}

func (s *testimonialService) GetTestimonials(ctx context.Context) ([]domain.TestimonialResponse, error) {
	testimonials, err := s.testimonialRepository.GetTestimonials(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.TestimonialResponse, 0, len(testimonials))
	for _, t := range testimonials {
		owner := domain.OwnerSummary{ID: t.OwnerID.String()}
		// the owner may have been deleted
		if t.Owner != nil {
			owner.Name = t.Owner.Name
			owner.Avatar = t.Owner.Avatar
		}
		res = append(res, domain.TestimonialResponse{
			ID:          t.ID.String(),
			Testimonial: t.Testimonial,
			Owner:       owner,
		})
	}
	return res, nil
}

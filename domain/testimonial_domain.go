package domain

var (
	MessageSuccessGetTestimonials = "success get testimonials"
	MessageFailedGetTestimonials  = "failed to get testimonials"
)

type TestimonialResponse struct {
	ID          string       `json:"id"`
	Testimonial string       `json:"testimonial"`
	Owner       OwnerSummary `json:"owner"`
}

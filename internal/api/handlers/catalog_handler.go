package handlers

import (
	"foodies-api/domain"
	"foodies-api/internal/api/presenters"
	"foodies-api/pkg/catalog"
	"foodies-api/pkg/testimonial"

	"github.com/gofiber/fiber/v2"
)

type (
	CatalogHandler interface {
		GetCategories(c *fiber.Ctx) error
		GetAreas(c *fiber.Ctx) error
		GetIngredients(c *fiber.Ctx) error
		GetTestimonials(c *fiber.Ctx) error
	}

	catalogHandler struct {
		catalogService     catalog.CatalogService
		testimonialService testimonial.TestimonialService
	}
)

func NewCatalogHandler(catalogService catalog.CatalogService, testimonialService testimonial.TestimonialService) CatalogHandler {
	return &catalogHandler{
		catalogService:     catalogService,
		testimonialService: testimonialService,
	}
}

func (h *catalogHandler) GetCategories(c *fiber.Ctx) error {
	res, err := h.catalogService.GetCategories(c.UserContext())
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetCategories, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCategories)
}

func (h *catalogHandler) GetAreas(c *fiber.Ctx) error {
	res, err := h.catalogService.GetAreas(c.UserContext())
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetAreas, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAreas)
}

func (h *catalogHandler) GetIngredients(c *fiber.Ctx) error {
	res, err := h.catalogService.GetIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetIngredients, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *catalogHandler) GetTestimonials(c *fiber.Ctx) error {
	res, err := h.testimonialService.GetTestimonials(c.UserContext())
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetTestimonials, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTestimonials)
}

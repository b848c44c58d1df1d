package presenters

import (
	"errors"

	"foodies-api/domain"

	"github.com/gofiber/fiber/v2"
)

type (
	SuccessBody struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    any    `json:"data,omitempty"`
	}

	ErrorBody struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(SuccessBody{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := ErrorBody{Status: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	return c.Status(statusCode).JSON(body)
}

// ServiceError answers with the status the error's taxonomy maps to.
func ServiceError(c *fiber.Ctx, message string, err error) error {
	return ErrorResponse(c, StatusFromError(err), message, err)
}

func StatusFromError(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, domain.ErrPartialWrite):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyRelated),
		errors.Is(err, domain.ErrNotRelated),
		errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

package handlers

import (
	"foodies-api/domain"
	"foodies-api/internal/api/presenters"
	"foodies-api/pkg/relation"

	"github.com/gofiber/fiber/v2"
)

type (
	AdminHandler interface {
		Reconcile(c *fiber.Ctx) error
	}

	adminHandler struct {
		reconciler relation.Reconciler
	}
)

func NewAdminHandler(reconciler relation.Reconciler) AdminHandler {
	return &adminHandler{reconciler: reconciler}
}

// Reconcile runs one reconciliation pass and reports what it repaired.
func (h *adminHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.reconciler.Run(c.UserContext())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedReconcile, err)
	}
	return presenters.SuccessResponse(c, report, fiber.StatusOK, domain.MessageSuccessReconcile)
}

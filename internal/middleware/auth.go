package middleware

import (
	"foodies-api/domain"
	"foodies-api/internal/api/presenters"
	"foodies-api/pkg/identity"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired rejects anonymous requests and invalid credentials.
func (m *middleware) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := m.resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		viewer, err := res.Required()
		if err != nil {
			return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedTokenInvalid, err)
		}
		setViewer(c, viewer)
		return c.Next()
	}
}

// AuthOptional personalizes the request when the credential resolves and
// serves it anonymously otherwise, including when the credential is invalid.
func (m *middleware) AuthOptional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := m.resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if viewer := res.Personalization(); viewer != nil {
			setViewer(c, viewer)
		}
		return c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func (m *middleware) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := m.admins[UserID(c)]; !ok {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrUserNotAllowed)
		}
		return c.Next()
	}
}

func setViewer(c *fiber.Ctx, viewer *identity.Viewer) {
	c.Locals(LocalUserID, viewer.ID.String())
	c.Locals(LocalViewer, viewer)
}

// Viewer returns the resolved viewer, nil for anonymous requests.
func Viewer(c *fiber.Ctx) *identity.Viewer {
	viewer, _ := c.Locals(LocalViewer).(*identity.Viewer)
	return viewer
}

func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

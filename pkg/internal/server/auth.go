package server

import (
	"github.com/callspace/conferencing/pkg/internal/database"
	"github.com/callspace/conferencing/pkg/internal/directory"
	"github.com/gofiber/fiber/v2"
)

// The portal gateway in front of this service authenticates users and
// forwards the identity in headers; this middleware only verifies the
// forwarded user still exists and is enabled.
func authMiddleware(c *fiber.Ctx) error {
	userID := c.Get("X-Identity-Id")
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "identity header is required")
	}

	resolver := directory.NewService(database.C)
	user, err := resolver.ResolveUser(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "identity is unknown or disabled")
	}

	c.Locals("userId", userID)
	c.Locals("clientId", c.Get("X-Client-Id"))
	return c.Next()
}

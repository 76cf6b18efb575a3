package api

import (
	"github.com/callspace/conferencing/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func getUserCalls(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)

	if calls, err := services.Calls.GetUserCalls(user); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(calls)
	}
}

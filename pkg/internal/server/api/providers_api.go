package api

import (
	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/callspace/conferencing/pkg/internal/server/exts"
	"github.com/callspace/conferencing/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listProviderConfigs(c *fiber.Ctx) error {
	return c.JSON(services.Providers.GetConfigurations())
}

func saveProviderConfig(c *fiber.Ctx) error {
	var data struct {
		Active bool `json:"active"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	config := models.ProviderConfig{
		Type:   c.Params("providerType"),
		Active: data.Active,
	}
	if err := services.Providers.SaveConfiguration(config); err != nil {
		return mapCallError(err)
	}
	return c.JSON(config)
}

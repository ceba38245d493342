package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRouter(app *fiber.App, handler *Handler) {
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	v1 := app.Group("/v1")
	v1.Post("/analyze", handler.HandleAnalyze)
	v1.Post("/pricing/dynamic", handler.HandleDynamicPrice)
	v1.Post("/autopilot/run", handler.HandleRunCycle)
	v1.Get("/campaigns", handler.HandleCampaigns)
	v1.Get("/competitors", handler.HandleCompetitors)
}

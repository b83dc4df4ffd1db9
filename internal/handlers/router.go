package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"invest/internal/middleware"
	"invest/internal/services"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth   *services.AuthService
	Assets *services.AssetService
	Bank   *services.BankService
}

// RegisterRoutes mounts the health check and the /api/v1 routes on app.
func RegisterRoutes(app *fiber.App, svc Services, logger *zap.Logger) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"users":  svc.Auth.UserCount(),
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	NewAuthHandler(svc.Auth, logger).RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", middleware.AuthRequired(svc.Auth, logger))
	NewAssetHandler(svc.Assets, logger).RegisterRoutes(protected)
	NewBankHandler(svc.Bank).RegisterRoutes(protected)
}

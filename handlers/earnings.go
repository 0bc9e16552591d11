// handlers/earnings.go
package handlers

import (
	"strings"

	"tutti-frutti-service/middleware"
	"tutti-frutti-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEarningsRoutes(app *fiber.App, earningsService *services.EarningsService) {
	// 🔒 Admin-only routes
	admin := app.Group("/admin", middleware.UserContextMiddleware(), requireAdmin)

	admin.Get("/earnings", earningsService.ListEarnings)
	admin.Get("/earnings/:tournament_id", earningsService.GetTournamentEarnings)
	admin.Post("/tournaments/:id/recompute", earningsService.RecomputeTournament)
}

func requireAdmin(c *fiber.Ctx) error {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if strings.EqualFold(r, "admin") {
			return c.Next()
		}
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
}

// handlers/payment.go
package handlers

import (
	"tutti-frutti-service/middleware"
	"tutti-frutti-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, paymentService *services.PaymentService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/tournaments/:id/join", paymentService.JoinTournament)
	secured.Get("/users/me/payments", paymentService.GetMyPayments)
}

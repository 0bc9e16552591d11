// handlers/webhook.go
package handlers

import (
	"tutti-frutti-service/services"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes registers the payment-provider webhook. These routes
// are exempt from gateway auth; authenticity is the HMAC signature.
func SetupWebhookRoutes(app *fiber.App, webhookService *services.WebhookService) {
	app.Post("/webhooks/payment", webhookService.HandleNotification)
	app.Get("/webhooks/payment", webhookService.Healthcheck)
}

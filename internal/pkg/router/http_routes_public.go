package router

import (
	"github.com/vivaarte/vivaarte/app/controllers"
	"github.com/vivaarte/vivaarte/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Catalog search (JSON, no forms)
	app.Get("/search", loggedInMiddleware, controllers.HandleProductSearch)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Gateway return pages (success/pending/failure)
	app.Get("/checkout/:outcome", loggedInMiddleware, controllers.HandleCheckoutReturn)

	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/payment", controllers.HandlePaymentWebhook)
}

package router

import (
	"github.com/vivaarte/vivaarte/app/controllers"
	"github.com/vivaarte/vivaarte/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)

	// Order management
	adminGroup.Get("/orders", controllers.HandleAdminOrders)
	adminGroup.Get("/orders/:id", controllers.HandleAdminOrderShow)
	adminGroup.Post("/orders/:id/status", controllers.HandleAdminOrderUpdateStatus)

	// Webhook audit log
	adminGroup.Get("/webhooks", controllers.HandleAdminWebhookEvents)
}

package router

import (
	"github.com/vivaarte/vivaarte/app/controllers"
	"github.com/vivaarte/vivaarte/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	v1.Get("/orders/:number/status", middleware.RequireAPISessionAuth, controllers.HandleAPIOrderStatus)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

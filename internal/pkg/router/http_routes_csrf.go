package router

import (
	"strings"
	"time"

	"github.com/vivaarte/vivaarte/app/controllers"
	"github.com/vivaarte/vivaarte/internal/pkg/env"
	"github.com/vivaarte/vivaarte/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)
	group.Get("/products/:slug", loggedInMiddleware, controllers.HandleProductShow)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)

	// Cart
	group.Get("/cart", loggedInMiddleware, controllers.HandleCartShow)
	group.Post("/cart/add", loggedInMiddleware, controllers.HandleCartAdd)
	group.Post("/cart/update", loggedInMiddleware, controllers.HandleCartUpdate)
	group.Post("/cart/clear", loggedInMiddleware, controllers.HandleCartClear)

	// Checkout
	group.Get("/checkout", middleware.RequireAuth, controllers.HandleCheckoutShow)
	group.Post("/checkout", middleware.RequireAuth, controllers.HandleCheckoutSubmit)

	// Account orders
	group.Get("/user/orders", middleware.RequireAuth, controllers.HandleUserOrders)
	group.Get("/user/orders/:number", middleware.RequireAuth, controllers.HandleUserOrderShow)

	// Admin product management (form posts, CSRF-protected)
	group.Get("/admin/products", middleware.RequireAdmin, controllers.HandleAdminProducts)
	group.Get("/admin/products/create", middleware.RequireAdmin, controllers.HandleAdminProductCreate)
	group.Post("/admin/products", middleware.RequireAdmin, controllers.HandleAdminProductStore)
	group.Get("/admin/products/edit/:id", middleware.RequireAdmin, controllers.HandleAdminProductEdit)
	group.Post("/admin/products/:id", middleware.RequireAdmin, controllers.HandleAdminProductUpdate)
	group.Post("/admin/products/delete/:id", middleware.RequireAdmin, controllers.HandleAdminProductDelete)
}

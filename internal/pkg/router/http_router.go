package router

import (
	"github.com/vivaarte/vivaarte/app/controllers"
	"github.com/vivaarte/vivaarte/internal/pkg/middleware"
	"github.com/vivaarte/vivaarte/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controllers with repositories
	controllers.InitializeAdminController()
	controllers.InitializeAdminProductController()
	controllers.InitializeWebhookController()

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context.
	// All user information is available via usercontext.GetUserContext(c).
	return c.Next()
}

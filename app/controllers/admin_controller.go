package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/app/repository"
)

// adminRepos holds the repositories used by the admin controllers,
// injected once at router setup.
var adminRepos *repository.Repositories

// InitializeAdminController wires the admin controllers with repositories
func InitializeAdminController() {
	adminRepos = repository.GetGlobalFactory().GetRepositories()
}

// HandleAdminDashboard renders counters for the admin landing page
func HandleAdminDashboard(c *fiber.Ctx) error {
	userCount, _ := adminRepos.User.Count()
	productCount, _ := adminRepos.Product.Count()
	orderCount, _ := adminRepos.Order.Count()
	awaiting, _ := adminRepos.Order.CountByStatus(models.OrderStatusAwaitingPayment)
	preparing, _ := adminRepos.Order.CountByStatus(models.OrderStatusPreparing)

	return c.Render("admin/dashboard", fiber.Map{
		"Title":          "Admin",
		"UserCount":      userCount,
		"ProductCount":   productCount,
		"OrderCount":     orderCount,
		"AwaitingCount":  awaiting,
		"PreparingCount": preparing,
		"Flash":          flash.Get(c),
	})
}

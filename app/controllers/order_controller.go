package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/usercontext"
)

// HandleUserOrders lists the logged-in user's orders
func HandleUserOrders(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c, 20)

	repo := repository.GetGlobalFactory().GetOrderRepository()
	orderList, err := repo.GetByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
			"Title": "Error",
			"Error": "orders temporarily unavailable",
		})
	}

	return c.Render("orders", fiber.Map{
		"Title":  "My orders",
		"Orders": orderList,
		"User":   userCtx,
		"Flash":  flash.Get(c),
	})
}

// HandleUserOrderShow renders one of the user's orders by number
func HandleUserOrderShow(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	number := c.Params("number")

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByOrderNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
				"Title": "Not found",
				"Error": "order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
			"Title": "Error",
			"Error": "orders temporarily unavailable",
		})
	}
	// Owners only; admins use /admin/orders.
	if order.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
			"Title": "Not found",
			"Error": "order not found",
		})
	}

	return c.Render("order_detail", fiber.Map{
		"Title": "Order " + order.OrderNumber,
		"Order": order,
		"User":  userCtx,
	})
}

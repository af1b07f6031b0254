package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/usercontext"
)

// HandleAPIOrderStatus returns the current status of one of the caller's
// orders. The storefront polls this after returning from the gateway.
func HandleAPIOrderStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	number := c.Params("number")

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByOrderNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "orders_unavailable"})
	}
	if order.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order_not_found"})
	}

	return c.JSON(fiber.Map{
		"order_number":   order.OrderNumber,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"grand_total":    order.GrandTotal,
	})
}

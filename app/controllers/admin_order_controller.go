package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/internal/pkg/orders"
)

// HandleAdminOrders lists orders, optionally filtered by status
func HandleAdminOrders(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 30)
	status := c.Query("status")

	var (
		orderList []models.Order
		err       error
	)
	if status != "" {
		if !models.IsValidOrderStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_status",
				"message": "unknown order status " + status,
			})
		}
		orderList, err = adminRepos.Order.ListByStatus(status, offset, limit)
	} else {
		orderList, err = adminRepos.Order.List(offset, limit)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "orders_unavailable"})
	}

	return c.Render("admin/orders", fiber.Map{
		"Title":  "Orders",
		"Orders": orderList,
		"Status": status,
		"Flash":  flash.Get(c),
	})
}

// HandleAdminOrderShow renders one order for the admin
func HandleAdminOrderShow(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	order, err := adminRepos.Order.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "orders_unavailable"})
	}

	return c.Render("admin/order_detail", fiber.Map{
		"Title":    "Order " + order.OrderNumber,
		"Order":    order,
		"Statuses": orderStatusChoices(order.Status),
		"Flash":    flash.Get(c),
	})
}

// HandleAdminOrderUpdateStatus applies an order status change through the
// lifecycle rules. Unknown statuses and forbidden transitions are
// rejected and leave the order untouched.
func HandleAdminOrderUpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	newStatus := c.FormValue("status")
	if newStatus == "" {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err == nil {
			newStatus = body.Status
		}
	}
	if !models.IsValidOrderStatus(newStatus) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_status",
			"message": "unknown order status " + newStatus,
		})
	}

	order, err := adminRepos.Order.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "orders_unavailable"})
	}

	if err := newOrderService().Transition(order, newStatus); err != nil {
		if errors.Is(err, models.ErrInvalidOrderStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_transition",
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "status_update_failed"})
	}

	if c.Get("Accept") == "application/json" || c.Is("json") {
		return c.JSON(fiber.Map{"success": true, "status": order.Status})
	}
	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Order " + order.OrderNumber + " is now " + order.Status,
	}).Redirect("/admin/orders")
}

// orderStatusChoices lists the statuses reachable from the current one,
// for the admin detail form.
func orderStatusChoices(current string) []string {
	choices := []string{}
	for _, status := range []string{
		models.OrderStatusAwaitingPayment,
		models.OrderStatusPaymentApproved,
		models.OrderStatusPreparing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		if status != current && orders.CanTransition(current, status) {
			choices = append(choices, status)
		}
	}
	return choices
}

package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/env"
	"github.com/vivaarte/vivaarte/internal/pkg/mail"
	"github.com/vivaarte/vivaarte/internal/pkg/mercadopago"
	"github.com/vivaarte/vivaarte/internal/pkg/orders"
	"github.com/vivaarte/vivaarte/internal/pkg/usercontext"
)

// newOrderService wires the order service from the global factory and an
// env-configured gateway client.
func newOrderService() *orders.Service {
	factory := repository.GetGlobalFactory()
	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	return orders.NewService(
		factory.GetOrderRepository(),
		factory.GetProductRepository(),
		mercadopago.NewClientFromEnv(),
		base+"/webhooks/payment",
		base,
	)
}

// HandleCheckoutShow renders the checkout form for the current cart
func HandleCheckoutShow(c *fiber.Ctx) error {
	lines := readCart(c)
	if len(lines) == 0 {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "your cart is empty"}).Redirect("/cart")
	}

	return c.Render("checkout", fiber.Map{
		"Title":     "Checkout",
		"User":      usercontext.GetUserContext(c),
		"Freight":   env.GetEnv("FREIGHT_FLAT_RATE", "15.00"),
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleCheckoutSubmit turns the session cart into an order and redirects
// the buyer to the gateway checkout
func HandleCheckoutSubmit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	lines := readCart(c)
	if len(lines) == 0 {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "your cart is empty"}).Redirect("/cart")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "account lookup failed"}).Redirect("/cart")
	}

	input := orders.CheckoutInput{
		UserID:         userCtx.UserID,
		CustomerName:   user.Name,
		CustomerEmail:  user.Email,
		DeliveryMethod: c.FormValue("delivery_method", models.DeliveryMethodPickup),
		Freight:        parseFreight(),

		ShippingStreet:  c.FormValue("street"),
		ShippingCity:    c.FormValue("city"),
		ShippingState:   c.FormValue("state"),
		ShippingZipCode: c.FormValue("zip_code"),
		ShippingCountry: c.FormValue("country", "Brasil"),
		ShippingNotes:   c.FormValue("notes"),
	}
	for _, line := range lines {
		input.Items = append(input.Items, orders.CheckoutItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result, err := newOrderService().Checkout(ctx, input)
	if err != nil {
		var stockErr *orders.StockError
		if errors.As(err, &stockErr) {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("Not enough stock for %s", stockErr.ProductName),
			}).Redirect("/cart")
		}
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "checkout failed: " + err.Error(),
		}).Redirect("/cart")
	}

	// Cart served its purpose; the order now owns the items.
	_ = writeCart(c, nil)

	go sendOrderConfirmation(user.Email, result.Order)

	return c.Redirect(result.CheckoutURL, fiber.StatusSeeOther)
}

// HandleCheckoutReturn renders the gateway return pages
// (/checkout/success, /checkout/pending, /checkout/failure)
func HandleCheckoutReturn(c *fiber.Ctx) error {
	outcome := c.Params("outcome")
	switch outcome {
	case "success", "pending", "failure":
	default:
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	return c.Render("checkout_return", fiber.Map{
		"Title":   "Order " + outcome,
		"Outcome": outcome,
		"User":    usercontext.GetUserContext(c),
	})
}

func parseFreight() float64 {
	var freight float64
	if _, err := fmt.Sscanf(env.GetEnv("FREIGHT_FLAT_RATE", "15.00"), "%f", &freight); err != nil {
		return 15.00
	}
	return freight
}

func sendOrderConfirmation(email string, order *models.Order) {
	body := fmt.Sprintf(
		"<p>Thanks for your order!</p><p>Order <strong>%s</strong>, total %.2f.</p>"+
			"<p>We will update you as soon as your payment is confirmed.</p>",
		order.OrderNumber, order.GrandTotal,
	)
	_ = mail.SendMail(email, fmt.Sprintf("VivaArte order %s received", order.OrderNumber), body)
}

package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/session"
	"github.com/vivaarte/vivaarte/internal/pkg/usercontext"
)

const cartSessionKey = "cart"

// cartLine is one product reference in the session cart. Prices are
// never stored here; the checkout page always re-reads the catalog.
type cartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// cartView is a cart line joined with its current catalog row
type cartView struct {
	Product  models.Product
	Quantity int
	Subtotal float64
}

func readCart(c *fiber.Ctx) []cartLine {
	raw := session.GetSessionValue(c, cartSessionKey)
	if raw == "" {
		return nil
	}
	var lines []cartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil
	}
	return lines
}

func writeCart(c *fiber.Ctx, lines []cartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return session.SetSessionValue(c, cartSessionKey, string(raw))
}

// HandleCartShow renders the cart with live catalog prices
func HandleCartShow(c *fiber.Ctx) error {
	lines := readCart(c)
	repo := repository.GetGlobalFactory().GetProductRepository()

	var views []cartView
	total := 0.0
	for _, line := range lines {
		product, err := repo.GetByID(line.ProductID)
		if err != nil || !product.IsActive {
			continue
		}
		subtotal := models.RoundMoney(float64(line.Quantity) * product.Price)
		views = append(views, cartView{Product: *product, Quantity: line.Quantity, Subtotal: subtotal})
		total += subtotal
	}

	return c.Render("cart", fiber.Map{
		"Title":     "Cart",
		"Lines":     views,
		"Total":     models.RoundMoney(total),
		"User":      usercontext.GetUserContext(c),
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleCartAdd puts a product into the session cart
func HandleCartAdd(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.FormValue("product_id"), 10, 32)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "invalid product"}).Redirect("/")
	}
	quantity, err := strconv.Atoi(c.FormValue("quantity", "1"))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	repo := repository.GetGlobalFactory().GetProductRepository()
	product, err := repo.GetByID(uint(productID))
	if err != nil || !product.IsActive {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "product not available"}).Redirect("/")
	}
	if !product.InStock(quantity) {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "not enough stock for " + product.Name,
		}).Redirect("/products/" + product.Slug)
	}

	lines := readCart(c)
	found := false
	for i := range lines {
		if lines[i].ProductID == uint(productID) {
			lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, cartLine{ProductID: uint(productID), Quantity: quantity})
	}

	if err := writeCart(c, lines); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "could not update cart"}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": product.Name + " added to cart",
	}).Redirect("/cart")
}

// HandleCartUpdate changes a line quantity; zero removes the line
func HandleCartUpdate(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.FormValue("product_id"), 10, 32)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "invalid product"}).Redirect("/cart")
	}
	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil || quantity < 0 {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "invalid quantity"}).Redirect("/cart")
	}

	lines := readCart(c)
	next := lines[:0]
	for _, line := range lines {
		if line.ProductID == uint(productID) {
			if quantity == 0 {
				continue
			}
			line.Quantity = quantity
		}
		next = append(next, line)
	}

	if err := writeCart(c, next); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "could not update cart"}).Redirect("/cart")
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// HandleCartClear empties the session cart
func HandleCartClear(c *fiber.Ctx) error {
	if err := writeCart(c, nil); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "could not clear cart"}).Redirect("/cart")
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

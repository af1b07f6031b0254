package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/usercontext"
)

// HandleStart renders the storefront with the active catalog
func HandleStart(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 24)
	repo := repository.GetGlobalFactory().GetProductRepository()

	products, err := repo.ListActive(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).Render("index", fiber.Map{
			"Title": "VivaArte",
			"Error": "catalog temporarily unavailable",
		})
	}

	return c.Render("index", fiber.Map{
		"Title":     "VivaArte",
		"Products":  products,
		"User":      usercontext.GetUserContext(c),
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleProductShow renders a single product page by slug
func HandleProductShow(c *fiber.Ctx) error {
	slug := c.Params("slug")
	repo := repository.GetGlobalFactory().GetProductRepository()

	product, err := repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
				"Title": "Not found",
				"Error": "This product does not exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
			"Title": "Error",
			"Error": "catalog temporarily unavailable",
		})
	}
	if !product.IsActive {
		return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
			"Title": "Not found",
			"Error": "This product is no longer available",
		})
	}

	return c.Render("product", fiber.Map{
		"Title":     product.Name,
		"Product":   product,
		"User":      usercontext.GetUserContext(c),
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleProductSearch returns catalog matches as JSON
func HandleProductSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.JSON(fiber.Map{"products": []interface{}{}})
	}

	repo := repository.GetGlobalFactory().GetProductRepository()
	products, err := repo.Search(query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search_failed"})
	}

	return c.JSON(fiber.Map{"products": products})
}

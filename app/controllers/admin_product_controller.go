package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/app/repository"
)

// ============================================================================
// ADMIN PRODUCT CONTROLLER - Repository Pattern
// ============================================================================

// AdminProductController handles admin catalog management using repository pattern
type AdminProductController struct {
	productRepo repository.ProductRepository
}

// NewAdminProductController creates a new admin product controller with repository
func NewAdminProductController(productRepo repository.ProductRepository) *AdminProductController {
	return &AdminProductController{
		productRepo: productRepo,
	}
}

// handleError is a helper method for consistent error handling
func (apc *AdminProductController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/products")
}

// HandleAdminProducts renders the product management page
func (apc *AdminProductController) HandleAdminProducts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 30)

	products, err := apc.productRepo.List(offset, limit)
	if err != nil {
		return apc.handleError(c, "Loading products failed", err)
	}
	total, err := apc.productRepo.Count()
	if err != nil {
		return apc.handleError(c, "Loading products failed", err)
	}

	return c.Render("admin/products", fiber.Map{
		"Title":     "Products",
		"Products":  products,
		"Total":     total,
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleAdminProductCreate renders the product creation form
func (apc *AdminProductController) HandleAdminProductCreate(c *fiber.Ctx) error {
	return c.Render("admin/product_form", fiber.Map{
		"Title":     "New product",
		"Product":   &models.Product{IsActive: true},
		"Action":    "/admin/products",
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleAdminProductStore handles product creation
func (apc *AdminProductController) HandleAdminProductStore(c *fiber.Ctx) error {
	product, err := apc.productFromForm(c, &models.Product{})
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/products/create")
	}

	// Append a timestamp when the slug is already taken
	if _, err := apc.productRepo.GetBySlug(product.Slug); err == nil {
		product.Slug = fmt.Sprintf("%s-%d", product.Slug, time.Now().Unix())
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apc.handleError(c, "Checking slug failed", err)
	}

	if err := apc.productRepo.Create(product); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Creating product failed: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/products/create")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Product created",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/products")
}

// HandleAdminProductEdit renders the product edit form
func (apc *AdminProductController) HandleAdminProductEdit(c *fiber.Ctx) error {
	idParam := c.Params("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		return c.Redirect("/admin/products")
	}

	product, err := apc.productRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Product not found",
		}
		return flash.WithError(c, fm).Redirect("/admin/products")
	}

	return c.Render("admin/product_form", fiber.Map{
		"Title":     "Edit product",
		"Product":   product,
		"Action":    "/admin/products/" + idParam,
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

// HandleAdminProductUpdate handles product updates
func (apc *AdminProductController) HandleAdminProductUpdate(c *fiber.Ctx) error {
	idParam := c.Params("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		return c.Redirect("/admin/products")
	}

	product, err := apc.productRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Product not found",
		}
		return flash.WithError(c, fm).Redirect("/admin/products")
	}

	oldSlug := product.Slug
	if _, err := apc.productFromForm(c, product); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/products/edit/" + idParam)
	}

	if product.Slug != oldSlug {
		if existing, err := apc.productRepo.GetBySlug(product.Slug); err == nil && existing.ID != product.ID {
			product.Slug = fmt.Sprintf("%s-%d", product.Slug, time.Now().Unix())
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apc.handleError(c, "Checking slug failed", err)
		}
	}

	if err := apc.productRepo.Update(product); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Updating product failed: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/products/edit/" + idParam)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Product updated",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/products")
}

// HandleAdminProductDelete handles product deletion
func (apc *AdminProductController) HandleAdminProductDelete(c *fiber.Ctx) error {
	idParam := c.Params("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		return c.Redirect("/admin/products")
	}

	if _, err := apc.productRepo.GetByID(uint(id)); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Product not found",
		}
		return flash.WithError(c, fm).Redirect("/admin/products")
	}

	if err := apc.productRepo.Delete(uint(id)); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Deleting product failed: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/products")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Product deleted",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/products")
}

// productFromForm fills a product from the admin form and validates it
func (apc *AdminProductController) productFromForm(c *fiber.Ctx, product *models.Product) (*models.Product, error) {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price")
	}
	stock, err := strconv.Atoi(c.FormValue("stock", "0"))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("invalid stock")
	}

	product.Name = c.FormValue("name")
	product.Slug = c.FormValue("slug")
	product.Description = c.FormValue("description")
	product.ArtisanName = c.FormValue("artisan_name")
	product.Price = models.RoundMoney(price)
	product.Stock = stock
	product.ImageURL = c.FormValue("image_url")
	product.IsActive = c.FormValue("is_active") == "1"

	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product data: %w", err)
	}
	return product, nil
}

// ============================================================================
// GLOBAL ADMIN PRODUCT CONTROLLER INSTANCE - Singleton Pattern
// ============================================================================

var adminProductController *AdminProductController

// InitializeAdminProductController initializes the global admin product controller
func InitializeAdminProductController() {
	productRepo := repository.GetGlobalFactory().GetProductRepository()
	adminProductController = NewAdminProductController(productRepo)
}

// GetAdminProductController returns the global admin product controller instance
func GetAdminProductController() *AdminProductController {
	if adminProductController == nil {
		InitializeAdminProductController()
	}
	return adminProductController
}

// Adapter functions to keep the router on package-level handlers

func HandleAdminProducts(c *fiber.Ctx) error {
	return GetAdminProductController().HandleAdminProducts(c)
}

func HandleAdminProductCreate(c *fiber.Ctx) error {
	return GetAdminProductController().HandleAdminProductCreate(c)
}

func HandleAdminProductStore(c *fiber.Ctx) error {
	return GetAdminProductController().HandleAdminProductStore(c)
}

func HandleAdminProductEdit(c *fiber.Ctx) error {
	return GetAdminProductController().HandleAdminProductEdit(c)
}

func HandleAdminProductUpdate(c *fiber.Ctx) error {
	return GetAdminProductController().HandleAdminProductUpdate(c)
}

func HandleAdminProductDelete(c *fiber.Ctx) error {
	return GetAdminProductController().HandleAdminProductDelete(c)
}

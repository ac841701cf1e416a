package catalog

import (
	"errors"
	"strings"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/auth"
	"batchworks-backend/internal/costing"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductRequest struct {
	SKU                string   `json:"sku"`
	Name               string   `json:"name"`
	Density            *float64 `json:"density"`
	UsageUnit          *string  `json:"usage_unit"`
	UsageCostExTax     *float64 `json:"usage_cost_ex_tax"`
	PurchaseCostExTax  *float64 `json:"purchase_cost_ex_tax"`
	UsageCostIncTax    *float64 `json:"usage_cost_inc_tax"`
	PurchaseCostIncTax *float64 `json:"purchase_cost_inc_tax"`
	IsAssembly         bool     `json:"is_assembly"`
	BaseUnit           string   `json:"base_unit"`
	Active             *bool    `json:"active"`
}

// HTTPError translates costing engine failures into fiber errors. Shared by
// every surface that calls the engine.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, costing.ErrProductNotFound),
		errors.Is(err, costing.ErrFormulaNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, costing.ErrRecursionLimit):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Costing failed: "+err.Error())
	}
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.SKU = strings.TrimSpace(body.SKU)
		body.Name = strings.TrimSpace(body.Name)
		if body.SKU == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sku and name are required")
		}
		if body.Density != nil && *body.Density < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "density cannot be negative")
		}
		if body.BaseUnit == "" {
			body.BaseUnit = costing.UnitKg
		}

		product := models.Product{
			SKU:                body.SKU,
			Name:               body.Name,
			Density:            body.Density,
			UsageUnit:          body.UsageUnit,
			UsageCostExTax:     body.UsageCostExTax,
			PurchaseCostExTax:  body.PurchaseCostExTax,
			UsageCostIncTax:    body.UsageCostIncTax,
			PurchaseCostIncTax: body.PurchaseCostIncTax,
			IsAssembly:         body.IsAssembly,
			BaseUnit:           body.BaseUnit,
			Active:             true,
		}
		if body.Active != nil {
			product.Active = *body.Active
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionCreate,
			Description: "Product created: " + product.SKU,
			After:       product,
		})

		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		before := product

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Density != nil && *body.Density < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "density cannot be negative")
		}

		if body.SKU != "" {
			product.SKU = strings.TrimSpace(body.SKU)
		}
		if body.Name != "" {
			product.Name = strings.TrimSpace(body.Name)
		}
		product.Density = body.Density
		product.UsageUnit = body.UsageUnit
		product.UsageCostExTax = body.UsageCostExTax
		product.PurchaseCostExTax = body.PurchaseCostExTax
		product.UsageCostIncTax = body.UsageCostIncTax
		product.PurchaseCostIncTax = body.PurchaseCostIncTax
		product.IsAssembly = body.IsAssembly
		if body.BaseUnit != "" {
			product.BaseUnit = body.BaseUnit
		}
		if body.Active != nil {
			product.Active = *body.Active
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionUpdate,
			Description: "Product updated: " + product.SKU,
			Before:      before,
			After:       product,
		})

		return c.JSON(product)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var lineCount int64
		database.DB.Model(&models.FormulaLine{}).
			Where("ingredient_product_id = ?", id).
			Count(&lineCount)
		if lineCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Product is used by formula lines")
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionDelete,
			Description: "Product deleted: " + product.SKU,
			Before:      product,
		})

		return c.JSON(fiber.Map{"deleted": product.ID})
	}
}

// GET /api/products?active=true&assembly=true&q=flour
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		if c.Query("active") == "true" {
			dbq = dbq.Where("active = ?", true)
		}
		if c.Query("assembly") == "true" {
			dbq = dbq.Where("is_assembly = ?", true)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
		}

		var products []models.Product
		if err := dbq.Order("sku ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		return c.JSON(products)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		return c.JSON(product)
	}
}

// GET /api/products/:id/cost — effective unit cost, rolled up through
// nested assemblies when the product is manufactured.
func GetProductCostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		result, err := Engine().ResolveCost(c.Context(), uint(id))
		if err != nil {
			return HTTPError(err)
		}

		return c.JSON(result)
	}
}

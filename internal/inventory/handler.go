package inventory

import (
	"time"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/auth"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateMovementRequest struct {
	ProductID  uint    `json:"product_id"`
	Kind       string  `json:"kind"` // receipt, consumption, adjustment
	QuantityKg float64 `json:"quantity_kg"`
	Date       string  `json:"date"` // "2026-08-28"
	Note       string  `json:"note"`
}

type OnHandRow struct {
	ProductID  uint    `json:"product_id"`
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	BaseUnit   string  `json:"base_unit"`
	QuantityKg float64 `json:"quantity_kg"`
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

// POST /api/stock-movements — manual receipts and adjustments. Work-order
// consumption/production movements are posted by the work-order endpoints.
func CreateMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ProductID == 0 || body.QuantityKg == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id and a non-zero quantity_kg are required")
		}

		kind := models.MovementKind(body.Kind)
		switch kind {
		case models.MovementReceipt, models.MovementConsumption, models.MovementAdjustment:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "kind must be receipt, consumption or adjustment")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Product not found")
		}

		date := time.Now()
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
			}
			date = d
		}

		movement := models.StockMovement{
			ProductID:  body.ProductID,
			Kind:       kind,
			QuantityKg: body.QuantityKg,
			Date:       date,
			Note:       body.Note,
		}

		if err := database.DB.Create(&movement).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create stock movement")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_movement",
			EntityID:    movement.ID,
			Action:      models.AuditActionCreate,
			Description: "Stock movement for " + product.SKU,
			After:       movement,
		})

		return c.Status(fiber.StatusCreated).JSON(movement)
	}
}

// GET /api/stock-movements?product_id=1&from=2026-08-01&to=2026-08-31
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockMovement{}).Preload("Product")

		if pid := c.QueryInt("product_id"); pid > 0 {
			dbq = dbq.Where("product_id = ?", pid)
		}
		if from := c.Query("from"); from != "" {
			if d, err := time.Parse("2006-01-02", from); err == nil {
				dbq = dbq.Where("date >= ?", d)
			}
		}
		if to := c.Query("to"); to != "" {
			if d, err := time.Parse("2006-01-02", to); err == nil {
				dbq = dbq.Where("date < ?", d.AddDate(0, 0, 1))
			}
		}

		var movements []models.StockMovement
		if err := dbq.Order("date DESC, id DESC").Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list stock movements")
		}

		return c.JSON(movements)
	}
}

// GET /api/stock/on-hand — running sum of movements per product.
func OnHandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []OnHandRow
		err := database.DB.Model(&models.StockMovement{}).
			Select("stock_movements.product_id, products.sku, products.name, products.base_unit, SUM(stock_movements.quantity_kg) AS quantity_kg").
			Joins("JOIN products ON products.id = stock_movements.product_id").
			Group("stock_movements.product_id, products.sku, products.name, products.base_unit").
			Order("products.sku ASC").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute stock levels")
		}

		return c.JSON(rows)
	}
}

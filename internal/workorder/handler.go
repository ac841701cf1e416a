package workorder

import (
	"strings"
	"time"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/auth"
	"batchworks-backend/internal/catalog"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PreviewRequest struct {
	FormulaID         uint    `json:"formula_id"`
	RequestedQuantity float64 `json:"requested_quantity"`
}

type CreateWorkOrderRequest struct {
	FormulaID         uint    `json:"formula_id"`
	RequestedQuantity float64 `json:"requested_quantity"`
	DueDate           string  `json:"due_date"` // "2026-09-15", optional
	Note              string  `json:"note"`
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

// newWorkOrderNumber: short, unique, sortable enough for the shop floor.
func newWorkOrderNumber() string {
	return "WO-" + time.Now().Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// POST /api/work-orders/preview — projected consumption and cost for a
// prospective batch. Pure read, nothing is persisted.
func PreviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PreviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.FormulaID == 0 || body.RequestedQuantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "formula_id and a positive requested_quantity are required")
		}

		plan, err := catalog.Engine().ScaleBatch(c.Context(), body.FormulaID, body.RequestedQuantity)
		if err != nil {
			return catalog.HTTPError(err)
		}

		return c.JSON(plan)
	}
}

// POST /api/work-orders — creates a draft work order from the same batch
// plan the preview shows, snapshotting quantities and costs.
func CreateWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWorkOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.FormulaID == 0 || body.RequestedQuantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "formula_id and a positive requested_quantity are required")
		}

		var dueDate *time.Time
		if body.DueDate != "" {
			d, err := time.Parse("2006-01-02", body.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "due_date must be 'YYYY-MM-DD'")
			}
			dueDate = &d
		}

		plan, err := catalog.Engine().ScaleBatch(c.Context(), body.FormulaID, body.RequestedQuantity)
		if err != nil {
			return catalog.HTTPError(err)
		}

		wo := models.WorkOrder{
			Number:            newWorkOrderNumber(),
			FormulaID:         body.FormulaID,
			OutputProductID:   plan.Rollup.OutputProductID,
			RequestedQuantity: body.RequestedQuantity,
			ScaleFactor:       plan.ScaleFactor,
			Status:            models.WorkOrderDraft,
			PlannedCost:       plan.Rollup.TotalCost,
			PlannedQuantityKg: plan.Rollup.TotalQuantityKg,
			IsEstimate:        plan.Rollup.IsEstimate,
			DueDate:           dueDate,
			Note:              body.Note,
		}
		for _, line := range plan.Rollup.Lines {
			wo.Lines = append(wo.Lines, models.WorkOrderLine{
				IngredientProductID: line.IngredientProductID,
				Unit:                line.Unit,
				QuantityRequired:    line.Quantity,
				QuantityRequiredKg:  line.QuantityKg,
				LineCost:            line.LineCost,
			})
		}

		if err := database.DB.Create(&wo).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create work order")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "work_order",
			EntityID:    wo.ID,
			Action:      models.AuditActionCreate,
			Description: "Work order created: " + wo.Number,
			After:       wo,
		})

		return c.Status(fiber.StatusCreated).JSON(wo)
	}
}

// POST /api/work-orders/:id/release
func ReleaseWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return transitionWorkOrder(c, models.WorkOrderDraft, models.WorkOrderReleased)
	}
}

// POST /api/work-orders/:id/complete — posts the stock movements: consume
// the planned ingredient quantities, receive the output.
func CompleteWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid work order id")
		}

		var wo models.WorkOrder
		if err := database.DB.Preload("Lines").First(&wo, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Work order not found")
		}
		if wo.Status != models.WorkOrderReleased {
			return fiber.NewError(fiber.StatusConflict, "Only released work orders can be completed")
		}

		now := time.Now()
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, line := range wo.Lines {
				movement := models.StockMovement{
					ProductID:   line.IngredientProductID,
					WorkOrderID: &wo.ID,
					Kind:        models.MovementConsumption,
					QuantityKg:  -line.QuantityRequiredKg,
					Date:        now,
					Note:        "Consumed by " + wo.Number,
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}
			}

			receipt := models.StockMovement{
				ProductID:   wo.OutputProductID,
				WorkOrderID: &wo.ID,
				Kind:        models.MovementReceipt,
				QuantityKg:  wo.PlannedQuantityKg,
				Date:        now,
				Note:        "Produced by " + wo.Number,
			}
			if err := tx.Create(&receipt).Error; err != nil {
				return err
			}

			wo.Status = models.WorkOrderCompleted
			return tx.Save(&wo).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not complete work order")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "work_order",
			EntityID:    wo.ID,
			Action:      models.AuditActionUpdate,
			Description: "Work order completed: " + wo.Number,
			After:       wo,
		})

		return c.JSON(wo)
	}
}

// POST /api/work-orders/:id/cancel
func CancelWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid work order id")
		}

		var wo models.WorkOrder
		if err := database.DB.First(&wo, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Work order not found")
		}
		if wo.Status == models.WorkOrderCompleted {
			return fiber.NewError(fiber.StatusConflict, "Completed work orders cannot be cancelled")
		}

		wo.Status = models.WorkOrderCancelled
		if err := database.DB.Save(&wo).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not cancel work order")
		}

		return c.JSON(wo)
	}
}

func transitionWorkOrder(c *fiber.Ctx, from, to models.WorkOrderStatus) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid work order id")
	}

	var wo models.WorkOrder
	if err := database.DB.First(&wo, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Work order not found")
	}
	if wo.Status != from {
		return fiber.NewError(fiber.StatusConflict, "Work order is not in status "+string(from))
	}

	wo.Status = to
	if err := database.DB.Save(&wo).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update work order")
	}

	return c.JSON(wo)
}

// GET /api/work-orders?status=released
func ListWorkOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.WorkOrder{}).
			Preload("OutputProduct").
			Preload("Formula")

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var orders []models.WorkOrder
		if err := dbq.Order("created_at DESC").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list work orders")
		}

		return c.JSON(orders)
	}
}

// GET /api/work-orders/:id
func GetWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid work order id")
		}

		var wo models.WorkOrder
		err = database.DB.
			Preload("Lines").
			Preload("Lines.IngredientProduct").
			Preload("OutputProduct").
			Preload("Formula").
			First(&wo, "id = ?", id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Work order not found")
		}

		return c.JSON(wo)
	}
}

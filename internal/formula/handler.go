package formula

import (
	"strconv"
	"strings"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/auth"
	"batchworks-backend/internal/catalog"
	"batchworks-backend/internal/costing"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FormulaLineRequest struct {
	Sequence            int     `json:"sequence"`
	IngredientProductID uint    `json:"ingredient_product_id"`
	QuantityKg          float64 `json:"quantity_kg"`
	Unit                string  `json:"unit"`
	Note                string  `json:"note"`
}

type FormulaRequest struct {
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	Version         int                  `json:"version"`
	OutputProductID uint                 `json:"output_product_id"`
	YieldFactor     float64              `json:"yield_factor"`
	Active          *bool                `json:"active"`
	Lines           []FormulaLineRequest `json:"lines"`
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

func validateLines(lines []FormulaLineRequest) error {
	if len(lines) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "A formula needs at least one line")
	}
	for _, l := range lines {
		if l.IngredientProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Every line needs an ingredient_product_id")
		}
		if l.QuantityKg <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity_kg must be positive")
		}
		var count int64
		database.DB.Model(&models.Product{}).Where("id = ?", l.IngredientProductID).Count(&count)
		if count == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ingredient product not found: "+strconv.Itoa(int(l.IngredientProductID)))
		}
	}
	return nil
}

// POST /api/formulas
func CreateFormulaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FormulaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)
		if body.Code == "" || body.Name == "" || body.OutputProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "code, name and output_product_id are required")
		}

		var output models.Product
		if err := database.DB.First(&output, "id = ?", body.OutputProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Output product not found")
		}
		if !output.IsAssembly {
			return fiber.NewError(fiber.StatusBadRequest, "Output product must be flagged as assembly")
		}

		if err := validateLines(body.Lines); err != nil {
			return err
		}

		if body.Version <= 0 {
			body.Version = 1
		}
		if body.YieldFactor <= 0 {
			body.YieldFactor = 1
		}

		f := models.Formula{
			Code:            body.Code,
			Name:            body.Name,
			Version:         body.Version,
			OutputProductID: body.OutputProductID,
			YieldFactor:     body.YieldFactor,
			Active:          true,
		}
		if body.Active != nil {
			f.Active = *body.Active
		}
		for _, l := range body.Lines {
			unit := l.Unit
			if unit == "" {
				unit = costing.UnitKg
			}
			f.Lines = append(f.Lines, models.FormulaLine{
				Sequence:            l.Sequence,
				IngredientProductID: l.IngredientProductID,
				QuantityKg:          l.QuantityKg,
				Unit:                unit,
				Note:                l.Note,
			})
		}

		if err := database.DB.Create(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create formula")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "formula",
			EntityID:    f.ID,
			Action:      models.AuditActionCreate,
			Description: "Formula created: " + f.Code,
			After:       f,
		})

		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// PUT /api/formulas/:id — replaces header fields and the full line set.
func UpdateFormulaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid formula id")
		}

		var f models.Formula
		if err := database.DB.Preload("Lines").First(&f, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Formula not found")
		}
		before := f

		var body FormulaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validateLines(body.Lines); err != nil {
			return err
		}

		if body.Code != "" {
			f.Code = strings.TrimSpace(body.Code)
		}
		if body.Name != "" {
			f.Name = strings.TrimSpace(body.Name)
		}
		if body.Version > 0 {
			f.Version = body.Version
		}
		if body.YieldFactor > 0 {
			f.YieldFactor = body.YieldFactor
		}
		if body.Active != nil {
			f.Active = *body.Active
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("formula_id = ?", f.ID).Delete(&models.FormulaLine{}).Error; err != nil {
				return err
			}
			f.Lines = nil
			for _, l := range body.Lines {
				unit := l.Unit
				if unit == "" {
					unit = costing.UnitKg
				}
				f.Lines = append(f.Lines, models.FormulaLine{
					FormulaID:           f.ID,
					Sequence:            l.Sequence,
					IngredientProductID: l.IngredientProductID,
					QuantityKg:          l.QuantityKg,
					Unit:                unit,
					Note:                l.Note,
				})
			}
			return tx.Save(&f).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update formula")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "formula",
			EntityID:    f.ID,
			Action:      models.AuditActionUpdate,
			Description: "Formula updated: " + f.Code,
			Before:      before,
			After:       f,
		})

		return c.JSON(f)
	}
}

// DELETE /api/formulas/:id
func DeleteFormulaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid formula id")
		}

		var f models.Formula
		if err := database.DB.First(&f, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Formula not found")
		}

		var woCount int64
		database.DB.Model(&models.WorkOrder{}).Where("formula_id = ?", id).Count(&woCount)
		if woCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Formula is referenced by work orders")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("formula_id = ?", f.ID).Delete(&models.FormulaLine{}).Error; err != nil {
				return err
			}
			return tx.Delete(&f).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete formula")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "formula",
			EntityID:    f.ID,
			Action:      models.AuditActionDelete,
			Description: "Formula deleted: " + f.Code,
			Before:      f,
		})

		return c.JSON(fiber.Map{"deleted": f.ID})
	}
}

// GET /api/formulas?output_product_id=1&active=true
func ListFormulasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Formula{}).Preload("Lines")

		if pid := c.QueryInt("output_product_id"); pid > 0 {
			dbq = dbq.Where("output_product_id = ?", pid)
		}
		if c.Query("active") == "true" {
			dbq = dbq.Where("active = ?", true)
		}

		var formulas []models.Formula
		if err := dbq.Order("code ASC, version ASC").Find(&formulas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list formulas")
		}

		return c.JSON(formulas)
	}
}

// GET /api/formulas/:id
func GetFormulaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid formula id")
		}

		var f models.Formula
		err = database.DB.
			Preload("Lines", func(db *gorm.DB) *gorm.DB {
				return db.Order("formula_lines.sequence ASC")
			}).
			Preload("OutputProduct").
			First(&f, "id = ?", id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Formula not found")
		}

		return c.JSON(f)
	}
}

// GET /api/formulas/:id/rollup?scale=2.5 — costed recipe detail view.
func RollupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid formula id")
		}

		scale := 1.0
		if s := c.Query("scale"); s != "" {
			scale, err = strconv.ParseFloat(s, 64)
			if err != nil || scale <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "scale must be a positive number")
			}
		}

		result, err := catalog.Engine().Rollup(c.Context(), uint(id), scale)
		if err != nil {
			return catalog.HTTPError(err)
		}

		return c.JSON(result)
	}
}

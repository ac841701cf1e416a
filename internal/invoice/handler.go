package invoice

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/auth"
	"batchworks-backend/internal/catalog"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type InvoiceItemRequest struct {
	ProductID   uint     `json:"product_id"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   *float64 `json:"unit_price"` // nil: price from the costing engine
	TaxRate     float64  `json:"tax_rate"`   // e.g. 0.20
}

type CreateInvoiceRequest struct {
	ContactID uint                 `json:"contact_id"`
	IssueDate string               `json:"issue_date"`
	DueDate   string               `json:"due_date"`
	Items     []InvoiceItemRequest `json:"items"`
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nextInvoiceNumber() string {
	prefix := fmt.Sprintf("INV-%s-", time.Now().Format("2006"))
	var last string
	database.DB.Model(&models.Invoice{}).
		Select("number").
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Scan(&last)
	return bumpInvoiceNumber(prefix, last)
}

// bumpInvoiceNumber continues the sequence from the highest number issued
// this year. Counting rows would reuse a number after a deletion and trip
// the unique constraint on Number.
func bumpInvoiceNumber(prefix, last string) string {
	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, seq)
}

// POST /api/invoices — items without an explicit unit price are priced
// through the costing engine, so assemblies are invoiced at their rolled-up
// cost.
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ContactID == 0 || len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "contact_id and at least one item are required")
		}

		var contact models.Contact
		if err := database.DB.First(&contact, "id = ?", body.ContactID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Contact not found")
		}

		issueDate := time.Now()
		if body.IssueDate != "" {
			d, err := time.Parse("2006-01-02", body.IssueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "issue_date must be 'YYYY-MM-DD'")
			}
			issueDate = d
		}
		dueDate := issueDate.AddDate(0, 1, 0)
		if body.DueDate != "" {
			d, err := time.Parse("2006-01-02", body.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "due_date must be 'YYYY-MM-DD'")
			}
			dueDate = d
		}

		inv := models.Invoice{
			Number:    nextInvoiceNumber(),
			ContactID: body.ContactID,
			IssueDate: issueDate,
			DueDate:   dueDate,
			Status:    models.InvoiceDraft,
		}

		engine := catalog.Engine()
		for _, item := range body.Items {
			if item.ProductID == 0 || item.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Every item needs a product_id and a positive quantity")
			}
			if item.TaxRate < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "tax_rate cannot be negative")
			}

			var product models.Product
			if err := database.DB.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Product not found: %d", item.ProductID))
			}

			unit := item.Unit
			if unit == "" {
				unit = product.BaseUnit
			}

			var unitPrice float64
			if item.UnitPrice != nil {
				unitPrice = *item.UnitPrice
			} else {
				cost, err := engine.ResolveCost(c.Context(), item.ProductID)
				if err != nil {
					return catalog.HTTPError(err)
				}
				unitPrice = cost.UnitCost
			}

			amountExTax := round2(item.Quantity * unitPrice)
			amountTax := round2(amountExTax * item.TaxRate)

			inv.Items = append(inv.Items, models.InvoiceItem{
				ProductID:   item.ProductID,
				Description: item.Description,
				Quantity:    item.Quantity,
				Unit:        unit,
				UnitPrice:   unitPrice,
				TaxRate:     item.TaxRate,
				AmountExTax: amountExTax,
				AmountTax:   amountTax,
			})

			inv.TotalExTax = round2(inv.TotalExTax + amountExTax)
			inv.TotalTax = round2(inv.TotalTax + amountTax)
		}
		inv.TotalIncTax = round2(inv.TotalExTax + inv.TotalTax)

		if err := database.DB.Create(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create invoice")
		}

		userID, userName := currentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: "Invoice created: " + inv.Number,
			After:       inv,
		})

		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// POST /api/invoices/:id/finalize
func FinalizeInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid invoice id")
		}

		var inv models.Invoice
		if err := database.DB.First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		if inv.Status != models.InvoiceDraft {
			return fiber.NewError(fiber.StatusConflict, "Only draft invoices can be finalized")
		}

		inv.Status = models.InvoiceFinal
		if err := database.DB.Save(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not finalize invoice")
		}

		return c.JSON(inv)
	}
}

// GET /api/invoices?status=draft&contact_id=1
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Invoice{}).Preload("Contact")

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if cid := c.QueryInt("contact_id"); cid > 0 {
			dbq = dbq.Where("contact_id = ?", cid)
		}

		var invoices []models.Invoice
		if err := dbq.Order("issue_date DESC, id DESC").Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list invoices")
		}

		return c.JSON(invoices)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid invoice id")
		}

		var inv models.Invoice
		err = database.DB.
			Preload("Items").
			Preload("Items.Product").
			Preload("Contact").
			First(&inv, "id = ?", id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}

		return c.JSON(inv)
	}
}

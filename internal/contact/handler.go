package contact

import (
	"strings"

	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ContactRequest struct {
	Kind      string `json:"kind"` // customer or supplier
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	TaxNumber string `json:"tax_number"`
	Address   string `json:"address"`
	Active    *bool  `json:"active"`
}

// POST /api/contacts
func CreateContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ContactRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		kind := models.ContactKind(body.Kind)
		if kind != models.ContactCustomer && kind != models.ContactSupplier {
			return fiber.NewError(fiber.StatusBadRequest, "kind must be customer or supplier")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		contact := models.Contact{
			Kind:      kind,
			Name:      body.Name,
			Email:     body.Email,
			Phone:     body.Phone,
			TaxNumber: body.TaxNumber,
			Address:   body.Address,
			Active:    true,
		}
		if body.Active != nil {
			contact.Active = *body.Active
		}

		if err := database.DB.Create(&contact).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create contact")
		}

		return c.Status(fiber.StatusCreated).JSON(contact)
	}
}

// PUT /api/contacts/:id
func UpdateContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid contact id")
		}

		var contact models.Contact
		if err := database.DB.First(&contact, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Contact not found")
		}

		var body ContactRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != "" {
			contact.Name = strings.TrimSpace(body.Name)
		}
		if body.Kind != "" {
			kind := models.ContactKind(body.Kind)
			if kind != models.ContactCustomer && kind != models.ContactSupplier {
				return fiber.NewError(fiber.StatusBadRequest, "kind must be customer or supplier")
			}
			contact.Kind = kind
		}
		contact.Email = body.Email
		contact.Phone = body.Phone
		contact.TaxNumber = body.TaxNumber
		contact.Address = body.Address
		if body.Active != nil {
			contact.Active = *body.Active
		}

		if err := database.DB.Save(&contact).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update contact")
		}

		return c.JSON(contact)
	}
}

// GET /api/contacts?kind=supplier
func ListContactsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Contact{})

		if kind := c.Query("kind"); kind != "" {
			dbq = dbq.Where("kind = ?", kind)
		}
		if c.Query("active") == "true" {
			dbq = dbq.Where("active = ?", true)
		}

		var contacts []models.Contact
		if err := dbq.Order("name ASC").Find(&contacts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list contacts")
		}

		return c.JSON(contacts)
	}
}

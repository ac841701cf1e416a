package main

import (
	"log"
	"strings"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/auth"
	"batchworks-backend/internal/catalog"
	"batchworks-backend/internal/config"
	"batchworks-backend/internal/contact"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/formula"
	"batchworks-backend/internal/inventory"
	"batchworks-backend/internal/invoice"
	"batchworks-backend/internal/models"
	"batchworks-backend/internal/workorder"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin-only routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Product management
	adminRoutes.Post("/products", catalog.CreateProductHandler())
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler())
	adminRoutes.Post("/products/import-costs", catalog.ImportCostsHandler())

	// Formula management
	adminRoutes.Post("/formulas", formula.CreateFormulaHandler())
	adminRoutes.Put("/formulas/:id", formula.UpdateFormulaHandler())
	adminRoutes.Delete("/formulas/:id", formula.DeleteFormulaHandler())

	// Contacts
	adminRoutes.Post("/contacts", contact.CreateContactHandler())
	adminRoutes.Put("/contacts/:id", contact.UpdateContactHandler())

	// Catalog (read)
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/products/:id", catalog.GetProductHandler())
	protected.Get("/products/:id/cost", catalog.GetProductCostHandler())

	// Formulas (read + costed rollup preview)
	protected.Get("/formulas", formula.ListFormulasHandler())
	protected.Get("/formulas/:id", formula.GetFormulaHandler())
	protected.Get("/formulas/:id/rollup", formula.RollupHandler())

	// Work orders
	protected.Post("/work-orders/preview", workorder.PreviewHandler())
	protected.Post("/work-orders", workorder.CreateWorkOrderHandler())
	protected.Get("/work-orders", workorder.ListWorkOrdersHandler())
	protected.Get("/work-orders/:id", workorder.GetWorkOrderHandler())
	protected.Post("/work-orders/:id/release", workorder.ReleaseWorkOrderHandler())
	protected.Post("/work-orders/:id/complete", workorder.CompleteWorkOrderHandler())
	protected.Post("/work-orders/:id/cancel", workorder.CancelWorkOrderHandler())

	// Inventory
	protected.Post("/stock-movements", inventory.CreateMovementHandler())
	protected.Get("/stock-movements", inventory.ListMovementsHandler())
	protected.Get("/stock/on-hand", inventory.OnHandHandler())

	// Invoicing
	protected.Post("/invoices", invoice.CreateInvoiceHandler())
	protected.Get("/invoices", invoice.ListInvoicesHandler())
	protected.Get("/invoices/:id", invoice.GetInvoiceHandler())
	protected.Post("/invoices/:id/finalize", invoice.FinalizeInvoiceHandler())

	// Contacts (read)
	protected.Get("/contacts", contact.ListContactsHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}

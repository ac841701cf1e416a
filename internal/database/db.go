package database

import (
	"log"

	"batchworks-backend/internal/config"
	"batchworks-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.Product{},
		&models.Formula{},
		&models.FormulaLine{},
		&models.WorkOrder{},
		&models.WorkOrderLine{},
		&models.StockMovement{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migration complete.")
}

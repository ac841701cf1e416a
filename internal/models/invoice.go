package models

import "time"

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceFinal InvoiceStatus = "final"
	InvoicePaid  InvoiceStatus = "paid"
)

type Invoice struct {
	ID          uint          `gorm:"primaryKey"`
	Number      string        `gorm:"size:50;not null;unique"`
	ContactID   uint          `gorm:"index;not null"`
	Contact     Contact       `gorm:"foreignKey:ContactID"`
	IssueDate   time.Time     `gorm:"not null"`
	DueDate     time.Time     `gorm:"not null"`
	Status      InvoiceStatus `gorm:"size:20;not null;default:draft"`
	TotalExTax  float64       `gorm:"not null"`
	TotalTax    float64       `gorm:"not null"`
	TotalIncTax float64       `gorm:"not null"`
	Items       []InvoiceItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey"`
	InvoiceID   uint    `gorm:"index;not null"`
	ProductID   uint    `gorm:"not null"`
	Product     Product `gorm:"foreignKey:ProductID"`
	Description string  `gorm:"size:255"`
	Quantity    float64 `gorm:"not null"`
	Unit        string  `gorm:"size:20;not null;default:kg"`
	UnitPrice   float64 `gorm:"not null"`
	TaxRate     float64 `gorm:"not null"`
	AmountExTax float64 `gorm:"not null"`
	AmountTax   float64 `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

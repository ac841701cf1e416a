package models

import "time"

type ContactKind string

const (
	ContactCustomer ContactKind = "customer"
	ContactSupplier ContactKind = "supplier"
)

type Contact struct {
	ID        uint        `gorm:"primaryKey"`
	Kind      ContactKind `gorm:"size:20;not null;index"`
	Name      string      `gorm:"size:150;not null"`
	Email     string      `gorm:"size:150"`
	Phone     string      `gorm:"size:30"`
	TaxNumber string      `gorm:"size:50"`
	Address   string      `gorm:"size:255"`
	Active    bool        `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

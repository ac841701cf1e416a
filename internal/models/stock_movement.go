package models

import "time"

type MovementKind string

const (
	MovementReceipt     MovementKind = "receipt"
	MovementConsumption MovementKind = "consumption"
	MovementAdjustment  MovementKind = "adjustment"
)

// StockMovement: signed stock change in canonical kilograms. Receipts are
// positive, consumptions negative; on-hand is the running sum per product.
type StockMovement struct {
	ID          uint         `gorm:"primaryKey"`
	ProductID   uint         `gorm:"index;not null"`
	Product     Product      `gorm:"foreignKey:ProductID"`
	WorkOrderID *uint        `gorm:"index"`
	Kind        MovementKind `gorm:"size:20;not null"`
	QuantityKg  float64      `gorm:"not null"`
	Date        time.Time    `gorm:"index;not null"`
	Note        string       `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

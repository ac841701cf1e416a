package models

import "time"

type WorkOrderStatus string

const (
	WorkOrderDraft     WorkOrderStatus = "draft"
	WorkOrderReleased  WorkOrderStatus = "released"
	WorkOrderCompleted WorkOrderStatus = "completed"
	WorkOrderCancelled WorkOrderStatus = "cancelled"
)

// WorkOrder: planned production run of one formula. Planned quantities and
// costs are a snapshot of the rollup at creation time.
type WorkOrder struct {
	ID                uint            `gorm:"primaryKey"`
	Number            string          `gorm:"size:50;not null;unique"`
	FormulaID         uint            `gorm:"index;not null"`
	Formula           Formula         `gorm:"foreignKey:FormulaID"`
	OutputProductID   uint            `gorm:"index;not null"`
	OutputProduct     Product         `gorm:"foreignKey:OutputProductID"`
	RequestedQuantity float64         `gorm:"not null"`
	ScaleFactor       float64         `gorm:"not null"`
	Status            WorkOrderStatus `gorm:"size:20;not null;default:draft"`
	PlannedCost       float64         `gorm:"not null"`
	PlannedQuantityKg float64         `gorm:"not null"`
	IsEstimate        bool            `gorm:"not null;default:false"`
	DueDate           *time.Time
	Note              string `gorm:"size:255"`
	Lines             []WorkOrderLine
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WorkOrderLine: projected material consumption for one ingredient.
type WorkOrderLine struct {
	ID                  uint    `gorm:"primaryKey"`
	WorkOrderID         uint    `gorm:"index;not null"`
	IngredientProductID uint    `gorm:"index;not null"`
	IngredientProduct   Product `gorm:"foreignKey:IngredientProductID"`
	Unit                string  `gorm:"size:20;not null"`
	QuantityRequired    float64 `gorm:"not null"`
	QuantityRequiredKg  float64 `gorm:"not null"`
	LineCost            float64 `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

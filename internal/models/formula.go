package models

import "time"

// Formula: versioned recipe (bill of materials) for one output product.
// Several versions may coexist; the costing engine picks the primary one
// (first active, lowest version).
type Formula struct {
	ID              uint    `gorm:"primaryKey"`
	Code            string  `gorm:"size:50;not null;index"`
	Name            string  `gorm:"size:150;not null"`
	Version         int     `gorm:"not null;default:1"`
	OutputProductID uint    `gorm:"index;not null"`
	OutputProduct   Product `gorm:"foreignKey:OutputProductID"`
	YieldFactor     float64 `gorm:"not null;default:1"`
	Active          bool    `gorm:"not null;default:true"`
	Lines           []FormulaLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FormulaLine: one ingredient of a formula. QuantityKg is the canonical
// stored amount (always kilograms); Unit is only the display/entry unit.
type FormulaLine struct {
	ID                  uint    `gorm:"primaryKey"`
	FormulaID           uint    `gorm:"index;not null"`
	Sequence            int     `gorm:"not null"`
	IngredientProductID uint    `gorm:"index;not null"`
	IngredientProduct   Product `gorm:"foreignKey:IngredientProductID"`
	QuantityKg          float64 `gorm:"not null"`
	Unit                string  `gorm:"size:20;not null;default:kg"`
	Note                string  `gorm:"size:255"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

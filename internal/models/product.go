package models

import "time"

// Product: purchasable raw material or manufactured assembly.
// Cost fields are nullable on purpose: nil means "not quoted", 0 means
// explicitly free, and the costing engine walks them in a fixed priority
// order (usage excl. tax, purchase excl. tax, usage incl. tax, purchase
// incl. tax).
type Product struct {
	ID   uint   `gorm:"primaryKey"`
	SKU  string `gorm:"size:50;not null;unique"`
	Name string `gorm:"size:150;not null"`

	// Density in kg per litre. Nil disables mass<->volume conversion.
	Density *float64

	// Unit the cost is quoted in (kg, g, L, ea...). Nil means per kg.
	UsageUnit *string `gorm:"size:20"`

	UsageCostExTax     *float64
	PurchaseCostExTax  *float64
	UsageCostIncTax    *float64
	PurchaseCostIncTax *float64

	IsAssembly bool   `gorm:"not null;default:false"`
	BaseUnit   string `gorm:"size:20;not null;default:kg"`
	Active     bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

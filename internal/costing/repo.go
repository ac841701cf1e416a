package costing

import "context"

// Product is the read-only view of a product the engine works with. Cost
// fields are nil when the product carries no quote for them; the engine
// walks them in a fixed priority order.
type Product struct {
	ID   uint
	SKU  string
	Name string

	// Density in kg per litre; nil or <=0 disables mass<->volume conversion.
	Density *float64

	// Unit the cost is quoted in; nil means cost per kilogram.
	UsageUnit *string

	UsageCostExTax     *float64
	PurchaseCostExTax  *float64
	UsageCostIncTax    *float64
	PurchaseCostIncTax *float64

	IsAssembly bool
	BaseUnit   string
	Active     bool
}

// Formula is one recipe version for an output product.
type Formula struct {
	ID              uint
	Code            string
	Name            string
	Version         int
	OutputProductID uint
	YieldFactor     float64
	Active          bool
	Lines           []FormulaLine
}

// FormulaLine: QuantityKg is canonical (always kilograms), Unit is the
// display/entry unit and only matters for unit matching against the
// ingredient's usage unit.
type FormulaLine struct {
	Sequence            int
	IngredientProductID uint
	QuantityKg          float64
	Unit                string
	Note                string
}

// ProductLookup fetches products from whatever store backs the engine.
// Implementations must return ErrProductNotFound (possibly wrapped) for
// missing ids.
type ProductLookup interface {
	LookupProduct(ctx context.Context, id uint) (*Product, error)
}

// FormulaLookup fetches formulas. LookupFormulas returns the formulas for
// an output product ordered by version then id so that primary selection is
// deterministic; with activeOnly it returns active versions only.
type FormulaLookup interface {
	LookupFormula(ctx context.Context, id uint) (*Formula, error)
	LookupFormulas(ctx context.Context, outputProductID uint, activeOnly bool) ([]Formula, error)
}

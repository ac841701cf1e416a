package costing

import (
	"context"

	"github.com/shopspring/decimal"
)

// RollupLine is the costed view of one formula line at the requested scale.
// Quantity fields are already scaled; Warnings lists every degraded input
// that went into the line.
type RollupLine struct {
	Sequence            int        `json:"sequence"`
	IngredientProductID uint       `json:"ingredient_product_id"`
	IngredientSKU       string     `json:"ingredient_sku"`
	IngredientName      string     `json:"ingredient_name"`
	Unit                string     `json:"unit"`
	Quantity            float64    `json:"quantity"`
	QuantityKg          float64    `json:"quantity_kg"`
	UsageUnit           string     `json:"usage_unit"`
	QuantityInUsageUnit float64    `json:"quantity_in_usage_unit"`
	UnitCost            float64    `json:"unit_cost"`
	CostSource          CostSource `json:"cost_source"`
	LineCost            float64    `json:"line_cost"`
	IsEstimate          bool       `json:"is_estimate"`
	Warnings            []Warning  `json:"warnings,omitempty"`
}

// RollupResult aggregates one formula at one scale factor. Monetary unit
// costs are rounded to 4 decimals, cost totals to 2, quantities to 3;
// accumulation runs on decimals so rounding never compounds across lines.
type RollupResult struct {
	FormulaID       uint         `json:"formula_id"`
	FormulaCode     string       `json:"formula_code"`
	FormulaVersion  int          `json:"formula_version"`
	OutputProductID uint         `json:"output_product_id"`
	ScaleFactor     float64      `json:"scale_factor"`
	Lines           []RollupLine `json:"lines"`
	TotalCost       float64      `json:"total_cost"`
	TotalQuantityKg float64      `json:"total_quantity_kg"`
	TotalQuantityL  float64      `json:"total_quantity_l"`
	CostPerKg       float64      `json:"cost_per_kg"`
	CostPerL        float64      `json:"cost_per_l"`
	IsEstimate      bool         `json:"is_estimate"`
}

// Rollup costs one formula at the given scale factor. The formula's output
// product is entered into the recursion trail first, so a recipe that
// (transitively) contains its own output fails with ErrRecursionLimit
// instead of looping.
func (e *Engine) Rollup(ctx context.Context, formulaID uint, scale float64) (RollupResult, error) {
	f, err := e.formulas.LookupFormula(ctx, formulaID)
	if err != nil {
		return RollupResult{}, err
	}
	if scale <= 0 {
		scale = 1.0
	}

	tr := newTrail()
	if err := tr.enter(f.OutputProductID); err != nil {
		return RollupResult{}, err
	}
	defer tr.leave(f.OutputProductID)

	return e.rollupFormula(ctx, f, scale, tr)
}

func (e *Engine) rollupFormula(ctx context.Context, f *Formula, scale float64, tr *trail) (RollupResult, error) {
	result := RollupResult{
		FormulaID:       f.ID,
		FormulaCode:     f.Code,
		FormulaVersion:  f.Version,
		OutputProductID: f.OutputProductID,
		ScaleFactor:     scale,
		Lines:           make([]RollupLine, 0, len(f.Lines)),
	}

	totalCost := decimal.Zero
	totalKg := decimal.Zero
	totalL := decimal.Zero

	for _, line := range f.Lines {
		ing, err := e.products.LookupProduct(ctx, line.IngredientProductID)
		if err != nil {
			return RollupResult{}, err
		}

		cost, err := e.resolveProductCost(ctx, ing, tr)
		if err != nil {
			return RollupResult{}, err
		}

		density := 0.0
		if ing.Density != nil {
			density = *ing.Density
		}

		scaledKg := line.QuantityKg * scale

		out := RollupLine{
			Sequence:            line.Sequence,
			IngredientProductID: ing.ID,
			IngredientSKU:       ing.SKU,
			IngredientName:      ing.Name,
			Unit:                line.Unit,
			QuantityKg:          round3(scaledKg),
			UnitCost:            cost.UnitCost,
			CostSource:          cost.Source,
			IsEstimate:          cost.IsEstimate,
		}

		qtyDisplay, densityFallback := FromCanonicalKg(scaledKg, line.Unit, density)
		out.Quantity = round3(qtyDisplay)
		if densityFallback {
			out.Warnings = append(out.Warnings, WarnMissingDensity)
		}

		// Match the line quantity against the unit the ingredient's cost is
		// quoted in. Without a usage unit the cost is assumed per kilogram.
		var qtyUsage float64
		if ing.UsageUnit != nil && *ing.UsageUnit != "" {
			out.UsageUnit = *ing.UsageUnit
			var warn Warning
			qtyUsage, warn = BetweenUnits(qtyDisplay, line.Unit, *ing.UsageUnit, density)
			if warn != "" {
				out.Warnings = append(out.Warnings, warn)
			}
		} else {
			out.UsageUnit = UnitKg
			qtyUsage = scaledKg
		}
		out.QuantityInUsageUnit = round3(qtyUsage)

		if cost.UnitCost == 0 {
			// The line still participates in quantity totals; only its cost
			// contribution degrades to zero.
			out.Warnings = append(out.Warnings, WarnMissingCost)
		}

		lineCost := decimal.NewFromFloat(qtyUsage).Mul(decimal.NewFromFloat(cost.UnitCost))
		out.LineCost = round2(lineCost.InexactFloat64())

		totalCost = totalCost.Add(lineCost)
		totalKg = totalKg.Add(decimal.NewFromFloat(scaledKg))
		if density > 0 {
			totalL = totalL.Add(decimal.NewFromFloat(scaledKg / density))
		}

		if len(out.Warnings) > 0 {
			out.IsEstimate = true
		}
		if out.IsEstimate {
			result.IsEstimate = true
		}

		result.Lines = append(result.Lines, out)
	}

	result.TotalCost = round2(totalCost.InexactFloat64())
	result.TotalQuantityKg = round3(totalKg.InexactFloat64())
	result.TotalQuantityL = round3(totalL.InexactFloat64())

	// Per-line volumes mix different ingredients' densities; when the output
	// product's own density is known it gives the better litre total.
	output, err := e.products.LookupProduct(ctx, f.OutputProductID)
	if err != nil {
		return RollupResult{}, err
	}
	if output.Density != nil && *output.Density > 0 && result.TotalQuantityKg > 0 {
		result.TotalQuantityL = round3(result.TotalQuantityKg / *output.Density)
	}

	if result.TotalQuantityKg > 0 {
		result.CostPerKg = round4(totalCost.InexactFloat64() / result.TotalQuantityKg)
	}
	if result.TotalQuantityL > 0 {
		result.CostPerL = round4(totalCost.InexactFloat64() / result.TotalQuantityL)
	}

	return result, nil
}

package costing

import "context"

// MaterialRequirement is the projected consumption of one ingredient across
// all lines of a scaled batch, in its display unit and in canonical kg.
type MaterialRequirement struct {
	ProductID          uint    `json:"product_id"`
	SKU                string  `json:"sku"`
	Name               string  `json:"name"`
	Unit               string  `json:"unit"`
	QuantityRequired   float64 `json:"quantity_required"`
	QuantityRequiredKg float64 `json:"quantity_required_kg"`
}

// BatchPlan is the read-only work-order planning preview: the rollup at the
// effective scale plus aggregated material requirements. Nothing here
// touches inventory or persisted state.
type BatchPlan struct {
	FormulaID         uint                  `json:"formula_id"`
	RequestedQuantity float64               `json:"requested_quantity"`
	YieldFactor       float64               `json:"yield_factor"`
	ScaleFactor       float64               `json:"scale_factor"`
	Rollup            RollupResult          `json:"rollup"`
	Requirements      []MaterialRequirement `json:"requirements"`
}

// ScaleBatch projects a formula to a requested output quantity:
// scaleFactor = requestedQuantity * yieldFactor.
func (e *Engine) ScaleBatch(ctx context.Context, formulaID uint, requestedQuantity float64) (BatchPlan, error) {
	f, err := e.formulas.LookupFormula(ctx, formulaID)
	if err != nil {
		return BatchPlan{}, err
	}

	yield := f.YieldFactor
	if yield <= 0 {
		yield = 1.0
	}
	scale := requestedQuantity * yield

	rollup, err := e.Rollup(ctx, formulaID, scale)
	if err != nil {
		return BatchPlan{}, err
	}

	plan := BatchPlan{
		FormulaID:         f.ID,
		RequestedQuantity: requestedQuantity,
		YieldFactor:       yield,
		ScaleFactor:       scale,
		Rollup:            rollup,
	}

	// Aggregate per ingredient; a recipe may list the same product on more
	// than one line, possibly in different display units, so only canonical
	// kilograms are summed directly.
	index := make(map[uint]int)
	for _, line := range rollup.Lines {
		if i, ok := index[line.IngredientProductID]; ok {
			plan.Requirements[i].QuantityRequiredKg += line.QuantityKg
			continue
		}
		index[line.IngredientProductID] = len(plan.Requirements)
		plan.Requirements = append(plan.Requirements, MaterialRequirement{
			ProductID:          line.IngredientProductID,
			SKU:                line.IngredientSKU,
			Name:               line.IngredientName,
			Unit:               line.Unit,
			QuantityRequiredKg: line.QuantityKg,
		})
	}

	// Derive each display quantity from the canonical total, in the unit of
	// the ingredient's first line.
	for i := range plan.Requirements {
		req := &plan.Requirements[i]
		ing, err := e.products.LookupProduct(ctx, req.ProductID)
		if err != nil {
			return BatchPlan{}, err
		}
		density := 0.0
		if ing.Density != nil {
			density = *ing.Density
		}
		qty, _ := FromCanonicalKg(req.QuantityRequiredKg, req.Unit, density)
		req.QuantityRequired = round3(qty)
		req.QuantityRequiredKg = round3(req.QuantityRequiredKg)
	}

	return plan, nil
}

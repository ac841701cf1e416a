package costing

import (
	"context"
	"fmt"
)

// maxDepth bounds assembly recursion. The graph in the store is not
// guaranteed acyclic, so the resolver threads a visited-path set through
// every recursive call and fails fast instead of exhausting the stack.
const maxDepth = 32

type CostSource string

const (
	SourcePurchase       CostSource = "purchase"
	SourceUsage          CostSource = "usage"
	SourceAssemblyRollup CostSource = "assembly_rollup"
	SourceNone           CostSource = "none"
)

// CostResult is the effective unit cost of one product. For assemblies the
// cost comes from rolling up the primary formula; for purchasable items it
// is the first non-nil, non-zero stored cost field in priority order.
type CostResult struct {
	ProductID  uint       `json:"product_id"`
	SKU        string     `json:"sku"`
	UnitCost   float64    `json:"unit_cost"`
	CostUnit   string     `json:"cost_unit"`
	Source     CostSource `json:"source"`
	IsEstimate bool       `json:"is_estimate"`
}

// Engine is the costing entry point shared by every surface (recipe detail,
// work-order preview, invoicing). It holds no state between calls; every
// call re-reads current data through the injected lookups.
type Engine struct {
	products ProductLookup
	formulas FormulaLookup
}

func NewEngine(products ProductLookup, formulas FormulaLookup) *Engine {
	return &Engine{products: products, formulas: formulas}
}

// trail is the per-call recursion guard: current depth plus the set of
// product ids on the active resolution path.
type trail struct {
	depth   int
	visited map[uint]bool
}

func newTrail() *trail {
	return &trail{visited: make(map[uint]bool)}
}

func (t *trail) enter(productID uint) error {
	if t.depth >= maxDepth {
		return fmt.Errorf("%w: depth %d at product %d", ErrRecursionLimit, t.depth, productID)
	}
	if t.visited[productID] {
		return fmt.Errorf("%w: cycle through product %d", ErrRecursionLimit, productID)
	}
	t.depth++
	t.visited[productID] = true
	return nil
}

func (t *trail) leave(productID uint) {
	t.depth--
	delete(t.visited, productID)
}

// ResolveCost computes the effective unit cost of a product, recursing
// through nested assemblies. Missing product and cyclic/too-deep assembly
// graphs are fatal; a product with no usable cost at all resolves to zero
// with SourceNone and IsEstimate set.
func (e *Engine) ResolveCost(ctx context.Context, productID uint) (CostResult, error) {
	p, err := e.products.LookupProduct(ctx, productID)
	if err != nil {
		return CostResult{}, err
	}
	return e.resolveProductCost(ctx, p, newTrail())
}

func (e *Engine) resolveProductCost(ctx context.Context, p *Product, tr *trail) (CostResult, error) {
	if p.IsAssembly {
		primary, err := e.primaryFormula(ctx, p.ID)
		if err != nil {
			return CostResult{}, err
		}
		if primary != nil {
			if err := tr.enter(p.ID); err != nil {
				return CostResult{}, err
			}
			res, err := e.rollupFormula(ctx, primary, 1.0, tr)
			tr.leave(p.ID)
			if err != nil {
				return CostResult{}, err
			}

			unitCost := 0.0
			if res.TotalQuantityKg > 0 {
				unitCost = res.TotalCost / res.TotalQuantityKg
			}
			return CostResult{
				ProductID:  p.ID,
				SKU:        p.SKU,
				UnitCost:   round4(unitCost),
				CostUnit:   UnitKg,
				Source:     SourceAssemblyRollup,
				IsEstimate: res.IsEstimate,
			}, nil
		}
		// Assembly without any formula falls back to its stored costs.
	}

	costUnit := UnitKg
	if p.UsageUnit != nil && *p.UsageUnit != "" {
		costUnit = *p.UsageUnit
	}

	candidates := []struct {
		value  *float64
		source CostSource
	}{
		{p.UsageCostExTax, SourceUsage},
		{p.PurchaseCostExTax, SourcePurchase},
		{p.UsageCostIncTax, SourceUsage},
		{p.PurchaseCostIncTax, SourcePurchase},
	}
	for _, c := range candidates {
		if c.value != nil && *c.value != 0 {
			return CostResult{
				ProductID: p.ID,
				SKU:       p.SKU,
				UnitCost:  round4(*c.value),
				CostUnit:  costUnit,
				Source:    c.source,
			}, nil
		}
	}

	return CostResult{
		ProductID:  p.ID,
		SKU:        p.SKU,
		UnitCost:   0,
		CostUnit:   costUnit,
		Source:     SourceNone,
		IsEstimate: true,
	}, nil
}

// primaryFormula picks the authoritative recipe for an output product:
// first active version, else first returned. Lookups order by version then
// id, so the lowest active version wins deterministically. nil means the
// product has no formula at all.
func (e *Engine) primaryFormula(ctx context.Context, outputProductID uint) (*Formula, error) {
	formulas, err := e.formulas.LookupFormulas(ctx, outputProductID, false)
	if err != nil {
		return nil, err
	}
	if len(formulas) == 0 {
		return nil, nil
	}
	for i := range formulas {
		if formulas[i].Active {
			return &formulas[i], nil
		}
	}
	return &formulas[0], nil
}

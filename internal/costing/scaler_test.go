package costing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleBatch(t *testing.T) {
	store := simpleStore() // F-010: 5 kg @ 3.00 + 2 kg @ 4.50, yield 1

	plan, err := newTestEngine(store).ScaleBatch(context.Background(), 100, 3)
	require.NoError(t, err)

	assert.Equal(t, 3.0, plan.RequestedQuantity)
	assert.Equal(t, 1.0, plan.YieldFactor)
	assert.Equal(t, 3.0, plan.ScaleFactor)
	assert.Equal(t, 72.0, plan.Rollup.TotalCost)
	assert.Equal(t, 21.0, plan.Rollup.TotalQuantityKg)

	require.Len(t, plan.Requirements, 2)
	assert.Equal(t, 15.0, plan.Requirements[0].QuantityRequiredKg)
	assert.Equal(t, 6.0, plan.Requirements[1].QuantityRequiredKg)
}

func TestScaleBatchAppliesYieldFactor(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(2.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	// 1.1 yield: 10% process loss baked into the scale
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, YieldFactor: 1.1, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 1, QuantityKg: 1, Unit: "kg"}},
	})

	plan, err := newTestEngine(store).ScaleBatch(context.Background(), 100, 5)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, plan.ScaleFactor, 0.0001)
	assert.InDelta(t, 5.5, plan.Rollup.TotalQuantityKg, 0.001)
}

func TestScaleBatchAggregatesDuplicateIngredients(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(2.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	// same ingredient on two lines (added at different process steps)
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, YieldFactor: 1, Active: true,
		Lines: []FormulaLine{
			{Sequence: 1, IngredientProductID: 1, QuantityKg: 2, Unit: "kg"},
			{Sequence: 2, IngredientProductID: 1, QuantityKg: 3, Unit: "kg"},
		},
	})

	plan, err := newTestEngine(store).ScaleBatch(context.Background(), 100, 1)
	require.NoError(t, err)
	require.Len(t, plan.Rollup.Lines, 2)
	require.Len(t, plan.Requirements, 1)
	assert.Equal(t, 5.0, plan.Requirements[0].QuantityRequiredKg)
}

func TestScaleBatchAggregatesMixedUnitLines(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(2.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	// same ingredient entered in kilograms on one line and grams on another;
	// display quantities in different units cannot be summed as-is
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, YieldFactor: 1, Active: true,
		Lines: []FormulaLine{
			{Sequence: 1, IngredientProductID: 1, QuantityKg: 5, Unit: "kg"},
			{Sequence: 2, IngredientProductID: 1, QuantityKg: 0.5, Unit: "g"},
		},
	})

	plan, err := newTestEngine(store).ScaleBatch(context.Background(), 100, 1)
	require.NoError(t, err)
	require.Len(t, plan.Requirements, 1)
	assert.Equal(t, "kg", plan.Requirements[0].Unit)
	assert.InDelta(t, 5.5, plan.Requirements[0].QuantityRequiredKg, 0.001)
	assert.InDelta(t, 5.5, plan.Requirements[0].QuantityRequired, 0.001)
}

func TestScaleBatchZeroYieldDefaultsToOne(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(2.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, YieldFactor: 0, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 1, QuantityKg: 1, Unit: "kg"}},
	})

	plan, err := newTestEngine(store).ScaleBatch(context.Background(), 100, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, plan.ScaleFactor)
}

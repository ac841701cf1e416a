package costing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleStore() *fakeStore {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", Name: "Flour", PurchaseCostExTax: floatPtr(3.0)})
	store.addProduct(Product{ID: 2, SKU: "RM-002", Name: "Sugar", PurchaseCostExTax: floatPtr(4.5)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", Name: "Dough", IsAssembly: true})
	store.addFormula(Formula{
		ID:              100,
		Code:            "F-010",
		Version:         1,
		OutputProductID: 10,
		YieldFactor:     1,
		Active:          true,
		Lines: []FormulaLine{
			{Sequence: 1, IngredientProductID: 1, QuantityKg: 5, Unit: "kg"},
			{Sequence: 2, IngredientProductID: 2, QuantityKg: 2, Unit: "kg"},
		},
	})
	return store
}

func TestRollupSingleLine(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(2.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 1, QuantityKg: 10, Unit: "kg"}},
	})

	res, err := newTestEngine(store).Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 20.0, res.Lines[0].LineCost)
	assert.Equal(t, 20.0, res.TotalCost)
	assert.Equal(t, 10.0, res.TotalQuantityKg)
	assert.Equal(t, 2.0, res.CostPerKg)
	assert.False(t, res.IsEstimate)
}

func TestRollupTwoLines(t *testing.T) {
	res, err := newTestEngine(simpleStore()).Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, 15.0, res.Lines[0].LineCost)
	assert.Equal(t, 9.0, res.Lines[1].LineCost)
	assert.Equal(t, 24.0, res.TotalCost)
	assert.Equal(t, 7.0, res.TotalQuantityKg)
	assert.InDelta(t, 3.4286, res.CostPerKg, 0.0001)
}

func TestRollupScalingInvariance(t *testing.T) {
	engine := newTestEngine(simpleStore())

	base, err := engine.Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)

	for _, s := range []float64{0.5, 2, 3, 10} {
		scaled, err := engine.Rollup(context.Background(), 100, s)
		require.NoError(t, err)
		assert.InDelta(t, s*base.TotalCost, scaled.TotalCost, 0.01, "scale %v", s)
		assert.InDelta(t, s*base.TotalQuantityKg, scaled.TotalQuantityKg, 0.001, "scale %v", s)
	}
}

func TestRollupFormulaNotFound(t *testing.T) {
	_, err := newTestEngine(newFakeStore()).Rollup(context.Background(), 404, 1.0)
	assert.ErrorIs(t, err, ErrFormulaNotFound)
}

func TestRollupMissingIngredientIsFatal(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 77, QuantityKg: 1, Unit: "kg"}},
	})

	_, err := newTestEngine(store).Rollup(context.Background(), 100, 1.0)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRollupUnpricedLineDegradesNotFails(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(3.0)})
	store.addProduct(Product{ID: 2, SKU: "RM-002"}) // no cost anywhere
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, Active: true,
		Lines: []FormulaLine{
			{Sequence: 1, IngredientProductID: 1, QuantityKg: 5, Unit: "kg"},
			{Sequence: 2, IngredientProductID: 2, QuantityKg: 2, Unit: "kg"},
		},
	})

	res, err := newTestEngine(store).Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)

	// the unpriced line contributes zero cost but full quantity
	assert.Equal(t, 15.0, res.TotalCost)
	assert.Equal(t, 7.0, res.TotalQuantityKg)

	require.Len(t, res.Lines, 2)
	assert.False(t, res.Lines[0].IsEstimate)
	assert.True(t, res.Lines[1].IsEstimate)
	assert.Contains(t, res.Lines[1].Warnings, WarnMissingCost)
	assert.True(t, res.IsEstimate)
}

func TestRollupVolumeLineUsesDensity(t *testing.T) {
	store := newFakeStore()
	// oil: 0.92 kg/L, quoted per litre
	store.addProduct(Product{
		ID: 1, SKU: "RM-OIL", Density: floatPtr(0.92),
		UsageUnit: strPtr("L"), UsageCostExTax: floatPtr(2.3),
	})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 1, QuantityKg: 4.6, Unit: "L"}},
	})

	res, err := newTestEngine(store).Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	// 4.6 kg -> 5 L display, usage unit is L, so 5 * 2.30
	assert.Equal(t, 5.0, res.Lines[0].Quantity)
	assert.Equal(t, 5.0, res.Lines[0].QuantityInUsageUnit)
	assert.Equal(t, 11.5, res.Lines[0].LineCost)
	assert.Equal(t, 5.0, res.TotalQuantityL)
	assert.False(t, res.IsEstimate)
}

func TestRollupMissingDensityFallback(t *testing.T) {
	store := newFakeStore()
	// quoted per litre but no density: conversion degrades, flagged
	store.addProduct(Product{ID: 1, SKU: "RM-001", UsageUnit: strPtr("L"), UsageCostExTax: floatPtr(2.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 1, QuantityKg: 3, Unit: "L"}},
	})

	res, err := newTestEngine(store).Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Contains(t, res.Lines[0].Warnings, WarnMissingDensity)
	assert.True(t, res.IsEstimate)
	// kg value passed through: 3 * 2.00
	assert.Equal(t, 6.0, res.Lines[0].LineCost)
	// no density anywhere: litre total stays zero
	assert.Zero(t, res.TotalQuantityL)
}

func TestRollupOutputDensityRecomputesLitres(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", Density: floatPtr(0.5), PurchaseCostExTax: floatPtr(1.0)})
	store.addProduct(Product{ID: 2, SKU: "RM-002", Density: floatPtr(2.0), PurchaseCostExTax: floatPtr(1.0)})
	store.addProduct(Product{ID: 10, SKU: "AS-010", IsAssembly: true, Density: floatPtr(1.25)})
	store.addFormula(Formula{
		ID: 100, Version: 1, OutputProductID: 10, Active: true,
		Lines: []FormulaLine{
			{Sequence: 1, IngredientProductID: 1, QuantityKg: 3, Unit: "kg"},
			{Sequence: 2, IngredientProductID: 2, QuantityKg: 2, Unit: "kg"},
		},
	})

	res, err := newTestEngine(store).Rollup(context.Background(), 100, 1.0)
	require.NoError(t, err)
	// per-line sum would be 3/0.5 + 2/2.0 = 7 L; the output product's own
	// density wins: 5 kg / 1.25 = 4 L
	assert.Equal(t, 4.0, res.TotalQuantityL)
	assert.InDelta(t, 1.25, res.CostPerL, 0.0001)
}

func TestRollupNestedAssembly(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 1, SKU: "RM-001", PurchaseCostExTax: floatPtr(3.0)})
	store.addProduct(Product{ID: 20, SKU: "AS-020", IsAssembly: true})
	store.addProduct(Product{ID: 30, SKU: "AS-030", IsAssembly: true})

	// inner: 10 kg of RM-001 -> 3.00/kg rolled up
	store.addFormula(Formula{
		ID: 200, Version: 1, OutputProductID: 20, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 1, QuantityKg: 10, Unit: "kg"}},
	})
	// outer: 4 kg of the inner assembly
	store.addFormula(Formula{
		ID: 300, Version: 1, OutputProductID: 30, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 20, QuantityKg: 4, Unit: "kg"}},
	})

	res, err := newTestEngine(store).Rollup(context.Background(), 300, 1.0)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, SourceAssemblyRollup, res.Lines[0].CostSource)
	assert.Equal(t, 3.0, res.Lines[0].UnitCost)
	assert.Equal(t, 12.0, res.TotalCost)
	assert.Equal(t, 3.0, res.CostPerKg)
}

func TestRollupCycleDetected(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 100, SKU: "AS-A", IsAssembly: true})
	store.addProduct(Product{ID: 200, SKU: "AS-B", IsAssembly: true})
	store.addFormula(Formula{
		ID: 1000, Version: 1, OutputProductID: 100, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 200, QuantityKg: 1, Unit: "kg"}},
	})
	store.addFormula(Formula{
		ID: 2000, Version: 1, OutputProductID: 200, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 100, QuantityKg: 1, Unit: "kg"}},
	})

	_, err := newTestEngine(store).Rollup(context.Background(), 1000, 1.0)
	assert.ErrorIs(t, err, ErrRecursionLimit)
}

func TestRollupSelfReferenceDetected(t *testing.T) {
	store := newFakeStore()
	store.addProduct(Product{ID: 100, SKU: "AS-A", IsAssembly: true})
	store.addFormula(Formula{
		ID: 1000, Version: 1, OutputProductID: 100, Active: true,
		Lines: []FormulaLine{{Sequence: 1, IngredientProductID: 100, QuantityKg: 1, Unit: "kg"}},
	})

	_, err := newTestEngine(store).Rollup(context.Background(), 1000, 1.0)
	assert.ErrorIs(t, err, ErrRecursionLimit)
}

package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUnit(t *testing.T) {
	tests := []struct {
		unit string
		want UnitKind
	}{
		{"kg", KindMass},
		{"KG", KindMass},
		{" Kg ", KindMass},
		{"g", KindMass},
		{"gram", KindMass},
		{"mg", KindMass},
		{"lb", KindMass},
		{"L", KindVolume},
		{"litre", KindVolume},
		{"mL", KindVolume},
		{"ea", KindCount},
		{"Each", KindCount},
		{"pcs", KindCount},
		{"floz", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyUnit(tt.unit), "unit %q", tt.unit)
	}
}

func TestFromCanonicalKgMass(t *testing.T) {
	v, est := FromCanonicalKg(2.5, "kg", 0)
	assert.False(t, est)
	assert.Equal(t, 2.5, v)

	v, est = FromCanonicalKg(2.5, "g", 0)
	assert.False(t, est)
	assert.Equal(t, 2500.0, v)

	v, est = FromCanonicalKg(1, "lb", 0)
	assert.False(t, est)
	assert.InDelta(t, 2.205, v, 0.001)
}

func TestFromCanonicalKgVolume(t *testing.T) {
	// density bridge: litres = kg / density
	v, est := FromCanonicalKg(5, "L", 1.25)
	assert.False(t, est)
	assert.Equal(t, 4.0, v)

	v, est = FromCanonicalKg(5, "ml", 1.25)
	assert.False(t, est)
	assert.Equal(t, 4000.0, v)
}

func TestFromCanonicalKgMissingDensity(t *testing.T) {
	// volume requested without density: kg value passes through, flagged
	v, est := FromCanonicalKg(5, "L", 0)
	assert.True(t, est)
	assert.Equal(t, 5.0, v)
}

func TestFromCanonicalKgPassThrough(t *testing.T) {
	v, est := FromCanonicalKg(12, "ea", 0)
	assert.False(t, est)
	assert.Equal(t, 12.0, v)

	// unrecognized unit is explicitly not an error
	v, est = FromCanonicalKg(12, "bundle", 0)
	assert.False(t, est)
	assert.Equal(t, 12.0, v)
}

func TestBetweenUnitsMassRoundTrip(t *testing.T) {
	units := []string{"kg", "g", "mg", "lb"}
	for _, u1 := range units {
		for _, u2 := range units {
			there, warn := BetweenUnits(3.7, u1, u2, 0)
			require.Empty(t, warn, "%s->%s", u1, u2)
			back, warn := BetweenUnits(there, u2, u1, 0)
			require.Empty(t, warn, "%s->%s", u2, u1)
			assert.InDelta(t, 3.7, back, 0.01, "%s->%s->%s", u1, u2, u1)
		}
	}
}

func TestBetweenUnitsVolume(t *testing.T) {
	v, warn := BetweenUnits(2, "L", "ml", 0)
	assert.Empty(t, warn)
	assert.Equal(t, 2000.0, v)

	v, warn = BetweenUnits(1500, "ml", "l", 0)
	assert.Empty(t, warn)
	assert.Equal(t, 1.5, v)
}

func TestBetweenUnitsDensityBridge(t *testing.T) {
	// 2 kg at 0.8 kg/L -> 2.5 L
	v, warn := BetweenUnits(2, "kg", "L", 0.8)
	assert.Empty(t, warn)
	assert.InDelta(t, 2.5, v, 1e-9)

	// and back
	v, warn = BetweenUnits(2.5, "L", "kg", 0.8)
	assert.Empty(t, warn)
	assert.InDelta(t, 2.0, v, 1e-9)

	// grams through the bridge
	v, warn = BetweenUnits(800, "g", "L", 0.8)
	assert.Empty(t, warn)
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestBetweenUnitsPreservesSmallQuantities(t *testing.T) {
	// sub-gram conversions must not lose precision on the way to the
	// canonical unit; rounding belongs at the display boundary only
	v, warn := BetweenUnits(3.7, "g", "kg", 0)
	assert.Empty(t, warn)
	assert.InDelta(t, 0.0037, v, 1e-12)

	v, warn = BetweenUnits(3.7, "mg", "kg", 0)
	assert.Empty(t, warn)
	assert.InDelta(t, 0.0000037, v, 1e-12)

	back, est := FromCanonicalKg(0.0000037, "mg", 0)
	assert.False(t, est)
	assert.InDelta(t, 3.7, back, 1e-9)
}

func TestBetweenUnitsMissingDensity(t *testing.T) {
	v, warn := BetweenUnits(2, "kg", "L", 0)
	assert.Equal(t, WarnMissingDensity, warn)
	assert.Equal(t, 2.0, v)

	v, warn = BetweenUnits(2, "L", "kg", 0)
	assert.Equal(t, WarnMissingDensity, warn)
	assert.Equal(t, 2.0, v)
}

func TestBetweenUnitsUnsupportedPair(t *testing.T) {
	// count -> mass has no matrix entry; the value is taken as kilograms
	v, warn := BetweenUnits(4, "ea", "g", 0)
	assert.Equal(t, WarnUnsupportedUnitPair, warn)
	assert.Equal(t, 4000.0, v)

	// entirely unknown units fall through the same way
	v, warn = BetweenUnits(4, "floz", "gal", 0)
	assert.Equal(t, WarnUnsupportedUnitPair, warn)
	assert.Equal(t, 4.0, v)
}

func TestBetweenUnitsCountPassThrough(t *testing.T) {
	v, warn := BetweenUnits(6, "ea", "pcs", 0)
	assert.Empty(t, warn)
	assert.Equal(t, 6.0, v)
}

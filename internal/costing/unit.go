package costing

import (
	"math"
	"strings"
)

// UnitKind classifies a unit string into one of the three dimensions the
// engine can convert between. Unknown units are not an error: values in
// them pass through unchanged.
type UnitKind int

const (
	KindUnknown UnitKind = iota
	KindMass
	KindVolume
	KindCount
)

// UnitKg is the canonical unit every formula line quantity is stored in.
const UnitKg = "kg"

// massFactors: display units per kilogram.
var massFactors = map[string]float64{
	"kg":        1,
	"kilogram":  1,
	"kilograms": 1,
	"g":         1000,
	"gr":        1000,
	"gram":      1000,
	"grams":     1000,
	"mg":        1000000,
	"lb":        2.2046226218,
	"lbs":       2.2046226218,
	"pound":     2.2046226218,
	"pounds":    2.2046226218,
}

// volumeFactors: display units per litre.
var volumeFactors = map[string]float64{
	"l":           1,
	"lt":          1,
	"ltr":         1,
	"litre":       1,
	"liter":       1,
	"litres":      1,
	"liters":      1,
	"ml":          1000,
	"millilitre":  1000,
	"milliliter":  1000,
	"millilitres": 1000,
	"milliliters": 1000,
}

var countAliases = map[string]bool{
	"ea":     true,
	"each":   true,
	"unit":   true,
	"units":  true,
	"pc":     true,
	"pcs":    true,
	"piece":  true,
	"pieces": true,
}

// ClassifyUnit resolves a unit string, case-insensitive and alias-tolerant.
func ClassifyUnit(unit string) UnitKind {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case massFactors[u] != 0:
		return KindMass
	case volumeFactors[u] != 0:
		return KindVolume
	case countAliases[u]:
		return KindCount
	default:
		return KindUnknown
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FromCanonicalKg converts a canonical kilogram value into the target unit
// at full precision; callers round for display. density is kg per litre and
// bridges mass to volume; when volume is requested without a usable density
// the kilogram value passes through unchanged and estimate is true. Count
// and unrecognized units pass through unchanged (deliberately not an error).
func FromCanonicalKg(valueKg float64, targetUnit string, density float64) (value float64, estimate bool) {
	u := strings.ToLower(strings.TrimSpace(targetUnit))

	if f, ok := massFactors[u]; ok {
		return valueKg * f, false
	}
	if f, ok := volumeFactors[u]; ok {
		if density <= 0 {
			return valueKg, true
		}
		return valueKg / density * f, false
	}
	// Count and unknown units are dimensionless from the engine's point of
	// view; the stored value is taken as-is.
	return valueKg, false
}

// BetweenUnits converts a value between two units at full precision, using
// density (kg/L) to bridge mass and volume; callers round for display. The
// full matrix is mass<->mass, volume<->volume, mass<->volume and count
// passthrough. Any pair outside the matrix falls back to treating the value
// as already being in kilograms and converting from there; that
// compatibility fallback is reported via WarnUnsupportedUnitPair so callers
// can surface it instead of trusting the number silently.
func BetweenUnits(value float64, sourceUnit, targetUnit string, density float64) (float64, Warning) {
	src := strings.ToLower(strings.TrimSpace(sourceUnit))
	dst := strings.ToLower(strings.TrimSpace(targetUnit))

	srcKind := ClassifyUnit(src)
	dstKind := ClassifyUnit(dst)

	switch {
	case srcKind == KindMass && dstKind == KindMass:
		return value / massFactors[src] * massFactors[dst], ""

	case srcKind == KindVolume && dstKind == KindVolume:
		return value / volumeFactors[src] * volumeFactors[dst], ""

	case srcKind == KindMass && dstKind == KindVolume:
		if density <= 0 {
			return value, WarnMissingDensity
		}
		return value / massFactors[src] / density * volumeFactors[dst], ""

	case srcKind == KindVolume && dstKind == KindMass:
		if density <= 0 {
			return value, WarnMissingDensity
		}
		return value / volumeFactors[src] * density * massFactors[dst], ""

	case srcKind == KindCount && dstKind == KindCount:
		return value, ""
	}

	// No matrix entry. Treat the value as canonical kilograms and convert
	// from there; flagged, never silent.
	out, _ := FromCanonicalKg(value, dst, density)
	return out, WarnUnsupportedUnitPair
}

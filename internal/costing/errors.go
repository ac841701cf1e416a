package costing

import "errors"

var (
	// ErrProductNotFound aborts the whole call; there is no partial result
	// for a rollup that references a product the store does not have.
	ErrProductNotFound = errors.New("product not found")

	// ErrFormulaNotFound: the formula id passed to Rollup does not exist.
	ErrFormulaNotFound = errors.New("formula not found")

	// ErrRecursionLimit: the assembly graph is cyclic or deeper than
	// maxDepth. Fatal, no partial result.
	ErrRecursionLimit = errors.New("assembly recursion limit exceeded")
)

// Warning marks a line whose inputs were degraded. The rollup still
// completes (an unpriced ingredient contributes zero cost rather than
// failing the preview) but every degraded line carries its warnings and
// flips the aggregate IsEstimate flag.
type Warning string

const (
	// WarnMissingCost: the ingredient had no usable cost; the line
	// contributed zero.
	WarnMissingCost Warning = "missing_cost"

	// WarnMissingDensity: a mass<->volume conversion was needed but the
	// product has no density; the kilogram value was passed through.
	WarnMissingDensity Warning = "missing_density"

	// WarnUnsupportedUnitPair: no conversion matrix entry for the pair; the
	// value was treated as already being in kilograms.
	WarnUnsupportedUnitPair Warning = "unsupported_unit_pair"
)

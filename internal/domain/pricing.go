package domain

// ModifierType identifies how a price modifier adjusts the running price.
type ModifierType string

const (
	ModifierTypePercentage      ModifierType = "PERCENTAGE"
	ModifierTypeFixed           ModifierType = "FIXED"
	ModifierTypeAdditive        ModifierType = "ADDITIVE"
	ModifierTypeRangePercentage ModifierType = "RANGE_PERCENTAGE"
	ModifierTypeFormula         ModifierType = "FORMULA"
)

// Modifier is a catalog-owned pricing rule applied to an item's unit price.
// Value holds basis points for percentage kinds and minor units for FIXED and
// ADDITIVE. MinValue/MaxValue bound RANGE_PERCENTAGE modifiers in basis points.
// Modifiers are immutable for the duration of a calculation call.
type Modifier struct {
	Code              string
	Name              string
	Type              ModifierType
	Value             int64
	MinValue          int64
	MaxValue          int64
	FormulaExpression string
	SortOrder         int
	Active            bool
}

// IsFormula reports whether the modifier is priced through the formula path.
func (m Modifier) IsFormula() bool { return m.Type == ModifierTypeFormula }

// CalculationStep records one incremental price adjustment in the audit trace.
// Steps are created only during calculation and never persisted by the core.
type CalculationStep struct {
	Index        int
	ModifierCode string
	Description  string
	DeltaAmount  int64
	RunningTotal int64
}

// ItemCalculation holds the monetary outcome of pricing a single order line.
// The sequential calculator fills the per-unit fields (BaseAmount, Steps,
// ModifiersTotal, FinalAmount); the aggregator scales them to line level and
// fills Quantity, Subtotal, UrgencyAmount, DiscountAmount and DiscountEligible.
// Invariant after aggregation: FinalAmount == Subtotal + UrgencyAmount -
// DiscountAmount, clamped at the configured price floor.
type ItemCalculation struct {
	BaseAmount       int64
	Quantity         int
	Steps            []CalculationStep
	ModifiersTotal   int64
	Subtotal         int64
	UrgencyAmount    int64
	DiscountAmount   int64
	DiscountEligible bool
	FinalAmount      int64
}

// OrderTotals aggregates item calculations into order-level amounts. Values are
// derived once by the aggregator and never mutated afterwards.
type OrderTotals struct {
	ItemsSubtotal            int64
	UrgencyAmount            int64
	DiscountAmount           int64
	DiscountApplicableAmount int64
	Total                    int64
}

// CalculationResult is the outcome of pricing one item: either a completed
// calculation or a failure carrying the steps computed before the error.
// Exactly one variant is populated; construct through SuccessResult or
// FailureResult.
type CalculationResult struct {
	calculation  *ItemCalculation
	partialSteps []CalculationStep
	errorMessage string
}

// SuccessResult wraps a completed item calculation.
func SuccessResult(calc ItemCalculation) CalculationResult {
	return CalculationResult{calculation: &calc}
}

// FailureResult records a failed calculation together with the steps that were
// produced before the failing modifier.
func FailureResult(partial []CalculationStep, message string) CalculationResult {
	steps := make([]CalculationStep, len(partial))
	copy(steps, partial)
	return CalculationResult{partialSteps: steps, errorMessage: message}
}

// Failed reports whether the result is the failure variant.
func (r CalculationResult) Failed() bool { return r.calculation == nil }

// Calculation returns the completed calculation when the result succeeded.
func (r CalculationResult) Calculation() (ItemCalculation, bool) {
	if r.calculation == nil {
		return ItemCalculation{}, false
	}
	return *r.calculation, true
}

// PartialSteps returns a copy of the steps computed before a failure occurred.
func (r CalculationResult) PartialSteps() []CalculationStep {
	steps := make([]CalculationStep, len(r.partialSteps))
	copy(steps, r.partialSteps)
	return steps
}

// ErrorMessage returns the human-readable failure description.
func (r CalculationResult) ErrorMessage() string { return r.errorMessage }

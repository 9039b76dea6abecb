package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelierdesk/api/internal/domain"
)

// ItemAdjustments carries the request-scoped overrides for one item, keyed by
// modifier code.
type ItemAdjustments struct {
	RangeBasisPoints map[string]int64
	FixedQuantities  map[string]int
	// FormulaVars are extra variables exposed to FORMULA expressions besides
	// currentPrice and basePrice.
	FormulaVars map[string]any
}

// SequentialCalculator applies an ordered modifier list to a base unit price,
// recording one calculation step per modifier. Order is significant and is
// preserved exactly; the pipeline is non-commutative.
type SequentialCalculator struct {
	dispatcher *ModifierDispatcher
	formulas   *FormulaEvaluator
	floor      int64
	logger     func(context.Context, string, map[string]any)
}

// SequentialCalculatorDeps configures the calculator.
type SequentialCalculatorDeps struct {
	Dispatcher *ModifierDispatcher
	Formulas   *FormulaEvaluator
	PriceFloor int64
	Logger     func(context.Context, string, map[string]any)
}

// NewSequentialCalculator wires the calculator.
func NewSequentialCalculator(deps SequentialCalculatorDeps) (*SequentialCalculator, error) {
	if deps.Dispatcher == nil {
		return nil, errors.New("sequential calculator: dispatcher is required")
	}
	if deps.Formulas == nil {
		return nil, errors.New("sequential calculator: formula evaluator is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &SequentialCalculator{
		dispatcher: deps.Dispatcher,
		formulas:   deps.Formulas,
		floor:      deps.PriceFloor,
		logger:     logger,
	}, nil
}

// Calculate prices one item. Structured and formula modifiers are mutually
// exclusive per invocation; a mix is a configuration problem surfaced as a
// calculation failure. The returned error is reserved for fail-fast input and
// configuration problems (ErrInvalidParameter, ErrUnsupportedModifierType);
// formula evaluation problems are represented in the result itself.
func (c *SequentialCalculator) Calculate(ctx context.Context, basePrice int64, modifiers []domain.Modifier, adj ItemAdjustments) (domain.CalculationResult, error) {
	if basePrice < 0 {
		return domain.CalculationResult{}, fmt.Errorf("%w: base price must not be negative", ErrInvalidParameter)
	}

	formulaCount := 0
	for _, m := range modifiers {
		if m.IsFormula() {
			formulaCount++
		}
	}
	if formulaCount > 0 && formulaCount < len(modifiers) {
		return domain.FailureResult(nil, "structured and formula modifiers cannot be mixed in one item"), nil
	}
	if formulaCount > 0 {
		return c.calculateFormula(ctx, basePrice, modifiers, adj), nil
	}
	return c.calculateStructured(ctx, basePrice, modifiers, adj)
}

func (c *SequentialCalculator) calculateStructured(ctx context.Context, basePrice int64, modifiers []domain.Modifier, adj ItemAdjustments) (domain.CalculationResult, error) {
	price := basePrice
	steps := make([]domain.CalculationStep, 0, len(modifiers))
	for i, m := range modifiers {
		opts := ApplyOptions{}
		if basisPoints, ok := adj.RangeBasisPoints[m.Code]; ok {
			value := basisPoints
			opts.RangeBasisPoints = &value
		}
		if quantity, ok := adj.FixedQuantities[m.Code]; ok {
			opts.FixedQuantity = quantity
		}

		next, err := c.dispatcher.Apply(price, m, opts)
		if err != nil {
			return domain.CalculationResult{}, err
		}
		steps = append(steps, domain.CalculationStep{
			Index:        i,
			ModifierCode: m.Code,
			Description:  stepDescription(m),
			DeltaAmount:  next - price,
			RunningTotal: next,
		})
		price = next
	}

	return domain.SuccessResult(domain.ItemCalculation{
		BaseAmount:     basePrice,
		Steps:          steps,
		ModifiersTotal: price - basePrice,
		FinalAmount:    price,
	}), nil
}

func (c *SequentialCalculator) calculateFormula(ctx context.Context, basePrice int64, modifiers []domain.Modifier, adj ItemAdjustments) domain.CalculationResult {
	vars := map[string]any{
		"basePrice":    float64(basePrice),
		"currentPrice": float64(basePrice),
	}
	for name, value := range adj.FormulaVars {
		vars[name] = value
	}

	price := basePrice
	steps := make([]domain.CalculationStep, 0, len(modifiers))
	for i, m := range modifiers {
		value, numeric, err := c.formulas.Evaluate(ctx, m.FormulaExpression, vars)
		if err != nil {
			c.logger(ctx, "formula_modifier_failed", map[string]any{
				"modifierCode": m.Code,
				"error":        err.Error(),
			})
			return domain.FailureResult(steps, fmt.Sprintf("modifier %s: %v", m.Code, err))
		}

		next := price
		if numeric {
			next = roundHalfUpFloat(value)
			if next < c.floor {
				next = c.floor
			}
		}
		steps = append(steps, domain.CalculationStep{
			Index:        i,
			ModifierCode: m.Code,
			Description:  stepDescription(m),
			DeltaAmount:  next - price,
			RunningTotal: next,
		})
		price = next
		vars["currentPrice"] = float64(price)
	}

	return domain.SuccessResult(domain.ItemCalculation{
		BaseAmount:     basePrice,
		Steps:          steps,
		ModifiersTotal: price - basePrice,
		FinalAmount:    price,
	})
}

func stepDescription(m domain.Modifier) string {
	name := m.Name
	if name == "" {
		name = m.Code
	}
	return fmt.Sprintf("%s (%s)", name, m.Type)
}

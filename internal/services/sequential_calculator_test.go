package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atelierdesk/api/internal/domain"
)

func newTestCalculator(t *testing.T, floor int64) *SequentialCalculator {
	t.Helper()
	formulas, err := NewFormulaEvaluator(FormulaEvaluatorDeps{})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}
	calculator, err := NewSequentialCalculator(SequentialCalculatorDeps{
		Dispatcher: NewModifierDispatcher(ModifierDispatcherDeps{PriceFloor: floor}),
		Formulas:   formulas,
		PriceFloor: floor,
	})
	if err != nil {
		t.Fatalf("NewSequentialCalculator returned error: %v", err)
	}
	return calculator
}

func TestCalculateStructuredSequence(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	modifiers := []domain.Modifier{
		{Code: "LEATHER", Name: "Leather material", Type: domain.ModifierTypePercentage, Value: 3000, Active: true},
		{Code: "BUTTONS", Name: "Button replacement", Type: domain.ModifierTypeAdditive, Value: 1500, Active: true},
	}
	adj := ItemAdjustments{FixedQuantities: map[string]int{"BUTTONS": 2}}

	result, err := calculator.Calculate(context.Background(), 100000, modifiers, adj)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	calc, ok := result.Calculation()
	if !ok {
		t.Fatalf("expected success, got failure: %s", result.ErrorMessage())
	}

	if calc.FinalAmount != 133000 {
		t.Fatalf("FinalAmount = %d, want 133000", calc.FinalAmount)
	}
	if calc.ModifiersTotal != 33000 {
		t.Fatalf("ModifiersTotal = %d, want 33000", calc.ModifiersTotal)
	}
	if len(calc.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(calc.Steps))
	}

	first := calc.Steps[0]
	if first.Index != 0 || first.ModifierCode != "LEATHER" || first.DeltaAmount != 30000 || first.RunningTotal != 130000 {
		t.Fatalf("unexpected first step: %+v", first)
	}
	second := calc.Steps[1]
	if second.Index != 1 || second.ModifierCode != "BUTTONS" || second.DeltaAmount != 3000 || second.RunningTotal != 133000 {
		t.Fatalf("unexpected second step: %+v", second)
	}

	// The step deltas reconcile exactly against the base amount.
	total := calc.BaseAmount
	for _, step := range calc.Steps {
		total += step.DeltaAmount
	}
	if total != calc.FinalAmount {
		t.Fatalf("step deltas sum to %d, final amount is %d", total, calc.FinalAmount)
	}
}

func TestCalculateOrderMatters(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	percentage := domain.Modifier{Code: "PCT", Type: domain.ModifierTypePercentage, Value: 1000, Active: true}
	additive := domain.Modifier{Code: "ADD", Type: domain.ModifierTypeAdditive, Value: 5000, Active: true}

	forward, err := calculator.Calculate(context.Background(), 100000, []domain.Modifier{percentage, additive}, ItemAdjustments{})
	if err != nil {
		t.Fatalf("forward Calculate returned error: %v", err)
	}
	reverse, err := calculator.Calculate(context.Background(), 100000, []domain.Modifier{additive, percentage}, ItemAdjustments{})
	if err != nil {
		t.Fatalf("reverse Calculate returned error: %v", err)
	}

	forwardCalc, _ := forward.Calculation()
	reverseCalc, _ := reverse.Calculation()
	if forwardCalc.FinalAmount == reverseCalc.FinalAmount {
		t.Fatalf("modifier order must matter: both orders produced %d", forwardCalc.FinalAmount)
	}
	if forwardCalc.FinalAmount != 115000 {
		t.Fatalf("percentage then additive = %d, want 115000", forwardCalc.FinalAmount)
	}
	if reverseCalc.FinalAmount != 115500 {
		t.Fatalf("additive then percentage = %d, want 115500", reverseCalc.FinalAmount)
	}
}

func TestCalculateFormulaSequence(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	modifiers := []domain.Modifier{
		{
			Code:              "SEASONAL",
			Name:              "Seasonal formula",
			Type:              domain.ModifierTypeFormula,
			FormulaExpression: "max(currentPrice * 0.9, basePrice * 0.5)",
			Active:            true,
		},
	}

	result, err := calculator.Calculate(context.Background(), 100000, modifiers, ItemAdjustments{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	calc, ok := result.Calculation()
	if !ok {
		t.Fatalf("expected success, got failure: %s", result.ErrorMessage())
	}
	if calc.FinalAmount != 90000 {
		t.Fatalf("FinalAmount = %d, want 90000", calc.FinalAmount)
	}
	if calc.ModifiersTotal != -10000 {
		t.Fatalf("ModifiersTotal = %d, want -10000", calc.ModifiersTotal)
	}
	if len(calc.Steps) != 1 || calc.Steps[0].ModifierCode != "SEASONAL" {
		t.Fatalf("unexpected steps: %+v", calc.Steps)
	}
}

func TestCalculateFormulaChainSeesUpdatedCurrentPrice(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	modifiers := []domain.Modifier{
		{Code: "FIRST", Type: domain.ModifierTypeFormula, FormulaExpression: "currentPrice * 2", Active: true},
		{Code: "SECOND", Type: domain.ModifierTypeFormula, FormulaExpression: "currentPrice + 1000", Active: true},
	}

	result, err := calculator.Calculate(context.Background(), 10000, modifiers, ItemAdjustments{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	calc, ok := result.Calculation()
	if !ok {
		t.Fatalf("expected success, got failure: %s", result.ErrorMessage())
	}
	if calc.FinalAmount != 21000 {
		t.Fatalf("FinalAmount = %d, want 21000", calc.FinalAmount)
	}
}

func TestCalculateFormulaFailureKeepsPartialSteps(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	modifiers := []domain.Modifier{
		{Code: "GOOD", Type: domain.ModifierTypeFormula, FormulaExpression: "currentPrice * 1.1", Active: true},
		{Code: "BROKEN", Type: domain.ModifierTypeFormula, FormulaExpression: "currentPrice *", Active: true},
	}

	result, err := calculator.Calculate(context.Background(), 100000, modifiers, ItemAdjustments{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if !result.Failed() {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.ErrorMessage(), "BROKEN") {
		t.Fatalf("failure message must name the modifier: %s", result.ErrorMessage())
	}
	steps := result.PartialSteps()
	if len(steps) != 1 || steps[0].ModifierCode != "GOOD" {
		t.Fatalf("expected one partial step from GOOD, got %+v", steps)
	}
}

func TestCalculateRejectsMixedModifierKinds(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	modifiers := []domain.Modifier{
		{Code: "LEATHER", Type: domain.ModifierTypePercentage, Value: 3000, Active: true},
		{Code: "SEASONAL", Type: domain.ModifierTypeFormula, FormulaExpression: "currentPrice", Active: true},
	}

	result, err := calculator.Calculate(context.Background(), 100000, modifiers, ItemAdjustments{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if !result.Failed() {
		t.Fatal("expected failure for mixed structured and formula modifiers")
	}
}

func TestCalculateNegativeBasePrice(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	_, err := calculator.Calculate(context.Background(), -1, nil, ItemAdjustments{})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestCalculateDispatcherErrorFailsFast(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	modifiers := []domain.Modifier{{Code: "X", Type: "EXOTIC", Active: true}}
	_, err := calculator.Calculate(context.Background(), 10000, modifiers, ItemAdjustments{})
	if !errors.Is(err, ErrUnsupportedModifierType) {
		t.Fatalf("expected ErrUnsupportedModifierType, got %v", err)
	}
}

func TestCalculateFormulaFloorClamp(t *testing.T) {
	calculator := newTestCalculator(t, 5000)

	modifiers := []domain.Modifier{
		{Code: "CRASH", Type: domain.ModifierTypeFormula, FormulaExpression: "currentPrice * 0.1", Active: true},
	}

	result, err := calculator.Calculate(context.Background(), 10000, modifiers, ItemAdjustments{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	calc, ok := result.Calculation()
	if !ok {
		t.Fatalf("expected success, got failure: %s", result.ErrorMessage())
	}
	if calc.FinalAmount != 5000 {
		t.Fatalf("FinalAmount = %d, want clamp to 5000", calc.FinalAmount)
	}
}

func TestCalculateNoModifiers(t *testing.T) {
	calculator := newTestCalculator(t, 0)

	result, err := calculator.Calculate(context.Background(), 45000, nil, ItemAdjustments{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	calc, ok := result.Calculation()
	if !ok {
		t.Fatalf("expected success, got failure: %s", result.ErrorMessage())
	}
	if calc.FinalAmount != 45000 || calc.ModifiersTotal != 0 || len(calc.Steps) != 0 {
		t.Fatalf("unexpected calculation for bare item: %+v", calc)
	}
}

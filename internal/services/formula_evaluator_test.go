package services

import (
	"context"
	"strings"
	"testing"
)

func TestFormulaEvaluatorArithmetic(t *testing.T) {
	evaluator, err := NewFormulaEvaluator(FormulaEvaluatorDeps{})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}

	vars := map[string]any{
		"currentPrice": 100000.0,
		"basePrice":    100000.0,
	}

	got, numeric, err := evaluator.Evaluate(context.Background(), "currentPrice * 1.1", vars)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !numeric {
		t.Fatal("expected a numeric result")
	}
	if got != 110000.0 {
		t.Fatalf("Evaluate = %f, want 110000", got)
	}
}

func TestFormulaEvaluatorMinMax(t *testing.T) {
	evaluator, err := NewFormulaEvaluator(FormulaEvaluatorDeps{})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}

	vars := map[string]any{
		"currentPrice": 40000.0,
		"basePrice":    100000.0,
	}

	got, numeric, err := evaluator.Evaluate(context.Background(), "max(currentPrice * 0.9, basePrice * 0.5)", vars)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !numeric {
		t.Fatal("expected a numeric result")
	}
	if got != 50000.0 {
		t.Fatalf("max clamp = %f, want 50000", got)
	}

	got, numeric, err = evaluator.Evaluate(context.Background(), "min(currentPrice, 25000)", vars)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !numeric || got != 25000.0 {
		t.Fatalf("min clamp = %f (numeric=%v), want 25000", got, numeric)
	}
}

func TestFormulaEvaluatorNonNumericResult(t *testing.T) {
	events := make([]string, 0, 1)
	evaluator, err := NewFormulaEvaluator(FormulaEvaluatorDeps{
		Logger: func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		},
	})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}

	vars := map[string]any{"currentPrice": 100.0}
	_, numeric, err := evaluator.Evaluate(context.Background(), "currentPrice > 50", vars)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if numeric {
		t.Fatal("comparison result must be reported as non-numeric")
	}
	if len(events) != 1 || events[0] != "formula_non_numeric_result" {
		t.Fatalf("expected one formula_non_numeric_result event, got %v", events)
	}
}

func TestFormulaEvaluatorCompileError(t *testing.T) {
	evaluator, err := NewFormulaEvaluator(FormulaEvaluatorDeps{})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}

	_, _, err = evaluator.Evaluate(context.Background(), "currentPrice *", nil)
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if !strings.Contains(err.Error(), "compile") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormulaEvaluatorRejectsOversizedExpression(t *testing.T) {
	evaluator, err := NewFormulaEvaluator(FormulaEvaluatorDeps{})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}

	expression := "1" + strings.Repeat("+1", 300)
	_, _, err = evaluator.Evaluate(context.Background(), expression, nil)
	if err == nil {
		t.Fatal("expected an error for an oversized expression")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormulaEvaluatorCachesCompiledExpressions(t *testing.T) {
	evaluator, err := NewFormulaEvaluator(FormulaEvaluatorDeps{CacheSize: 4})
	if err != nil {
		t.Fatalf("NewFormulaEvaluator returned error: %v", err)
	}

	vars := map[string]any{"currentPrice": 100.0}
	for i := 0; i < 3; i++ {
		if _, _, err := evaluator.Evaluate(context.Background(), "currentPrice + 1", vars); err != nil {
			t.Fatalf("Evaluate returned error: %v", err)
		}
	}

	if got := evaluator.cache.Len(); got != 1 {
		t.Fatalf("cache holds %d entries after repeated evaluation, want 1", got)
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierdesk/api/internal/domain"
)

func newTestAggregator(t *testing.T, floor int64) *OrderAggregator {
	t.Helper()
	aggregator, err := NewOrderAggregator(OrderAggregatorDeps{
		Policy:     NewStaticDiscountPolicy(StaticDiscountPolicyDeps{}),
		PriceFloor: floor,
	})
	if err != nil {
		t.Fatalf("NewOrderAggregator returned error: %v", err)
	}
	return aggregator
}

func unitCalc(base, final int64) domain.ItemCalculation {
	return domain.ItemCalculation{
		BaseAmount:     base,
		ModifiersTotal: final - base,
		FinalAmount:    final,
	}
}

func TestAggregateExcludedCategorySkipsDiscount(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	items := []AggregationItem{
		{CategoryCode: domain.CategoryLaundry, Quantity: 1, Calculation: unitCalc(800, 800)},
	}

	calcs, totals, err := aggregator.Aggregate(context.Background(), items, domain.UrgencyNone, 1000)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	calc := calcs[0]
	if calc.DiscountEligible {
		t.Fatal("laundry items must not be discount eligible")
	}
	if calc.DiscountAmount != 0 {
		t.Fatalf("DiscountAmount = %d, want 0", calc.DiscountAmount)
	}
	if calc.FinalAmount != 800 {
		t.Fatalf("FinalAmount = %d, want 800", calc.FinalAmount)
	}
	if totals.DiscountApplicableAmount != 0 {
		t.Fatalf("DiscountApplicableAmount = %d, want 0", totals.DiscountApplicableAmount)
	}
	if totals.Total != 800 {
		t.Fatalf("Total = %d, want 800", totals.Total)
	}
}

func TestAggregateUrgencyAndDiscount(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	items := []AggregationItem{
		{CategoryCode: domain.CategoryCleaning, Quantity: 1, Calculation: unitCalc(10000, 10000)},
	}

	calcs, totals, err := aggregator.Aggregate(context.Background(), items, domain.UrgencyUrgent, 1000)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	calc := calcs[0]
	if calc.UrgencyAmount != 5000 {
		t.Fatalf("UrgencyAmount = %d, want 5000", calc.UrgencyAmount)
	}
	if !calc.DiscountEligible || calc.DiscountAmount != 1000 {
		t.Fatalf("discount: eligible=%v amount=%d, want eligible with 1000", calc.DiscountEligible, calc.DiscountAmount)
	}
	if calc.FinalAmount != 14000 {
		t.Fatalf("FinalAmount = %d, want 14000", calc.FinalAmount)
	}
	if totals.DiscountApplicableAmount != 10000 {
		t.Fatalf("DiscountApplicableAmount = %d, want 10000", totals.DiscountApplicableAmount)
	}
}

func TestAggregateScalesToQuantity(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	items := []AggregationItem{
		{CategoryCode: domain.CategoryCleaning, Quantity: 3, Calculation: unitCalc(1000, 1200)},
	}

	calcs, totals, err := aggregator.Aggregate(context.Background(), items, domain.UrgencyNone, 0)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	calc := calcs[0]
	if calc.Quantity != 3 {
		t.Fatalf("Quantity = %d, want 3", calc.Quantity)
	}
	if calc.ModifiersTotal != 600 {
		t.Fatalf("ModifiersTotal = %d, want 600", calc.ModifiersTotal)
	}
	if calc.Subtotal != 3600 {
		t.Fatalf("Subtotal = %d, want 3600", calc.Subtotal)
	}
	if calc.Subtotal != calc.BaseAmount*int64(calc.Quantity)+calc.ModifiersTotal {
		t.Fatalf("subtotal invariant broken: %+v", calc)
	}
	if totals.ItemsSubtotal != 3600 || totals.Total != 3600 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestAggregateMixedEligibility(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	items := []AggregationItem{
		{CategoryCode: domain.CategoryCleaning, Quantity: 1, Calculation: unitCalc(10000, 10000)},
		{CategoryCode: domain.CategoryIroning, Quantity: 1, Calculation: unitCalc(6000, 6000)},
	}

	_, totals, err := aggregator.Aggregate(context.Background(), items, domain.UrgencyNone, 1000)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if totals.ItemsSubtotal != 16000 {
		t.Fatalf("ItemsSubtotal = %d, want 16000", totals.ItemsSubtotal)
	}
	if totals.DiscountApplicableAmount != 10000 {
		t.Fatalf("DiscountApplicableAmount = %d, want 10000", totals.DiscountApplicableAmount)
	}
	if totals.DiscountAmount != 1000 {
		t.Fatalf("DiscountAmount = %d, want 1000", totals.DiscountAmount)
	}
	if totals.Total != 15000 {
		t.Fatalf("Total = %d, want 15000", totals.Total)
	}
}

func TestAggregateFloorClamp(t *testing.T) {
	aggregator := newTestAggregator(t, 500)

	items := []AggregationItem{
		{CategoryCode: domain.CategoryCleaning, Quantity: 1, Calculation: unitCalc(1000, 1000)},
	}

	calcs, totals, err := aggregator.Aggregate(context.Background(), items, domain.UrgencyNone, 10000)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if calcs[0].FinalAmount != 500 {
		t.Fatalf("FinalAmount = %d, want clamp to 500", calcs[0].FinalAmount)
	}
	if totals.Total != 500 {
		t.Fatalf("Total = %d, want 500", totals.Total)
	}
}

func TestAggregateUnknownUrgency(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	_, _, err := aggregator.Aggregate(context.Background(), nil, domain.UrgencyType("SOMEDAY"), 0)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestAggregateNegativeDiscount(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	_, _, err := aggregator.Aggregate(context.Background(), nil, domain.UrgencyNone, -1)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestAggregateBlankUrgencyDefaultsToNone(t *testing.T) {
	aggregator := newTestAggregator(t, 0)

	items := []AggregationItem{
		{CategoryCode: domain.CategoryCleaning, Quantity: 1, Calculation: unitCalc(1000, 1000)},
	}

	calcs, _, err := aggregator.Aggregate(context.Background(), items, "", 0)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if calcs[0].UrgencyAmount != 0 {
		t.Fatalf("UrgencyAmount = %d, want 0", calcs[0].UrgencyAmount)
	}
}

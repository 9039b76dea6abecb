package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelierdesk/api/internal/domain"
)

// defaultUrgencyRates maps turnaround options to their basis-point surcharge.
var defaultUrgencyRates = map[domain.UrgencyType]int64{
	domain.UrgencyNone:    0,
	domain.UrgencyUrgent:  5000,
	domain.UrgencyExpress: 10000,
}

// AggregationItem pairs a per-unit calculation with its order-line context.
type AggregationItem struct {
	CategoryCode string
	Quantity     int
	Calculation  domain.ItemCalculation
}

// OrderAggregator combines per-item calculations into order totals, applying
// the global urgency surcharge uniformly and the global discount only to
// discount-eligible categories.
type OrderAggregator struct {
	policy       DiscountPolicy
	urgencyRates map[domain.UrgencyType]int64
	floor        int64
	logger       func(context.Context, string, map[string]any)
}

// OrderAggregatorDeps configures the aggregator.
type OrderAggregatorDeps struct {
	Policy DiscountPolicy
	// UrgencyRates overrides the default surcharge table (basis points).
	UrgencyRates map[domain.UrgencyType]int64
	PriceFloor   int64
	Logger       func(context.Context, string, map[string]any)
}

// NewOrderAggregator wires the aggregator.
func NewOrderAggregator(deps OrderAggregatorDeps) (*OrderAggregator, error) {
	if deps.Policy == nil {
		return nil, errors.New("order aggregator: discount policy is required")
	}
	rates := deps.UrgencyRates
	if len(rates) == 0 {
		rates = defaultUrgencyRates
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &OrderAggregator{
		policy:       deps.Policy,
		urgencyRates: rates,
		floor:        deps.PriceFloor,
		logger:       logger,
	}, nil
}

// Aggregate scales per-unit calculations to line level, applies urgency and
// discount, and sums order totals. discountBasisPoints of zero disables the
// discount entirely.
func (a *OrderAggregator) Aggregate(ctx context.Context, items []AggregationItem, urgency domain.UrgencyType, discountBasisPoints int64) ([]domain.ItemCalculation, domain.OrderTotals, error) {
	if urgency == "" {
		urgency = domain.UrgencyNone
	}
	urgencyRate, ok := a.urgencyRates[urgency]
	if !ok {
		return nil, domain.OrderTotals{}, fmt.Errorf("%w: unknown urgency type %s", ErrInvalidParameter, urgency)
	}
	if discountBasisPoints < 0 {
		return nil, domain.OrderTotals{}, fmt.Errorf("%w: discount must not be negative", ErrInvalidParameter)
	}

	calculations := make([]domain.ItemCalculation, 0, len(items))
	var totals domain.OrderTotals
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}

		calc := item.Calculation
		calc.Quantity = quantity
		calc.ModifiersTotal = calc.ModifiersTotal * int64(quantity)
		calc.Subtotal = calc.BaseAmount*int64(quantity) + calc.ModifiersTotal
		calc.UrgencyAmount = percentageOf(calc.Subtotal, urgencyRate)
		calc.DiscountEligible = a.policy.EligibleCategory(item.CategoryCode)
		if calc.DiscountEligible && discountBasisPoints > 0 {
			calc.DiscountAmount = percentageOf(calc.Subtotal, discountBasisPoints)
		} else {
			calc.DiscountAmount = 0
		}

		calc.FinalAmount = calc.Subtotal + calc.UrgencyAmount - calc.DiscountAmount
		if calc.FinalAmount < a.floor {
			a.logger(ctx, "item_floor_clamped", map[string]any{
				"categoryCode": item.CategoryCode,
				"subtotal":     calc.Subtotal,
				"finalAmount":  calc.FinalAmount,
			})
			calc.FinalAmount = a.floor
		}

		totals.ItemsSubtotal += calc.Subtotal
		totals.UrgencyAmount += calc.UrgencyAmount
		totals.DiscountAmount += calc.DiscountAmount
		if calc.DiscountEligible {
			totals.DiscountApplicableAmount += calc.Subtotal
		}
		totals.Total += calc.FinalAmount

		calculations = append(calculations, calc)
	}

	return calculations, totals, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierdesk/api/internal/domain"
)

const pricingInstrumentationName = "github.com/atelierdesk/api/internal/services"

// QuoteService orchestrates a pricing request: validation, catalog resolution,
// sequential calculation per item, and order aggregation. It owns no state and
// performs no I/O beyond the injected gateways.
type QuoteService struct {
	catalog    CatalogGateway
	modifiers  ModifierGateway
	policy     DiscountPolicy
	validator  *QuoteValidator
	resolver   *CatalogPriceResolver
	calculator *SequentialCalculator
	aggregator *OrderAggregator
	logger     func(context.Context, string, map[string]any)
	tracer     trace.Tracer
	quoted     metric.Int64Counter
}

// QuoteServiceDeps bundles the collaborators of the quote service.
type QuoteServiceDeps struct {
	Catalog    CatalogGateway
	Modifiers  ModifierGateway
	Policy     DiscountPolicy
	Validator  *QuoteValidator
	Resolver   *CatalogPriceResolver
	Calculator *SequentialCalculator
	Aggregator *OrderAggregator
	Logger     func(context.Context, string, map[string]any)
}

// NewQuoteService wires the service.
func NewQuoteService(deps QuoteServiceDeps) (*QuoteService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("quote service: catalog gateway is required")
	}
	if deps.Modifiers == nil {
		return nil, errors.New("quote service: modifier gateway is required")
	}
	if deps.Policy == nil {
		return nil, errors.New("quote service: discount policy is required")
	}
	if deps.Validator == nil {
		return nil, errors.New("quote service: validator is required")
	}
	if deps.Calculator == nil {
		return nil, errors.New("quote service: calculator is required")
	}
	if deps.Aggregator == nil {
		return nil, errors.New("quote service: aggregator is required")
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = NewCatalogPriceResolver()
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	meter := otel.Meter(pricingInstrumentationName)
	quoted, err := meter.Int64Counter("pricing.quotes_priced")
	if err != nil {
		return nil, fmt.Errorf("quote service: %w", err)
	}

	return &QuoteService{
		catalog:    deps.Catalog,
		modifiers:  deps.Modifiers,
		policy:     deps.Policy,
		validator:  deps.Validator,
		resolver:   resolver,
		calculator: deps.Calculator,
		aggregator: deps.Aggregator,
		logger:     logger,
		tracer:     otel.Tracer(pricingInstrumentationName),
		quoted:     quoted,
	}, nil
}

// Quote prices a full request. Request-level validation problems return an
// error wrapping ErrQuoteInvalidInput; per-item formula failures are reported
// as data inside the result so the caller can decide how to proceed.
func (s *QuoteService) Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "pricing.Quote",
		trace.WithAttributes(attribute.Int("pricing.item_count", len(req.Items))))
	defer span.End()

	if err := s.validator.Validate(ctx, req); err != nil {
		return domain.QuoteResult{}, err
	}

	discountBasisPoints, err := s.resolveDiscountBasisPoints(req.Discount)
	if err != nil {
		return domain.QuoteResult{}, err
	}

	result := domain.QuoteResult{QuoteID: ulid.Make().String()}

	type pricedItem struct {
		categoryCode  string
		itemName      string
		baseUnitPrice int64
		quantity      int
	}
	priced := make([]pricedItem, 0, len(req.Items))
	aggregation := make([]AggregationItem, 0, len(req.Items))

	for _, item := range req.Items {
		entry, err := s.catalog.ResolveItem(ctx, item.CategoryCode, item.ItemName)
		if err != nil {
			if isNotFound(err) {
				return domain.QuoteResult{}, fmt.Errorf("%w: unknown catalog item %s/%s", ErrQuoteInvalidInput, item.CategoryCode, item.ItemName)
			}
			return domain.QuoteResult{}, fmt.Errorf("resolve item %s/%s: %w", item.CategoryCode, item.ItemName, err)
		}

		baseUnitPrice := s.resolver.ResolveUnitPrice(entry, item.Color)
		modifiers, err := s.loadModifiers(ctx, item.ModifierCodes)
		if err != nil {
			return domain.QuoteResult{}, err
		}

		calcResult, err := s.calculator.Calculate(ctx, baseUnitPrice, modifiers, buildAdjustments(item))
		if err != nil {
			return domain.QuoteResult{}, err
		}
		if calcResult.Failed() {
			s.logger(ctx, "quote_item_failed", map[string]any{
				"categoryCode": entry.CategoryCode,
				"itemName":     entry.ItemName,
				"message":      calcResult.ErrorMessage(),
			})
			result.Failures = append(result.Failures, domain.ItemFailure{
				CategoryCode: entry.CategoryCode,
				ItemName:     entry.ItemName,
				Message:      calcResult.ErrorMessage(),
				PartialSteps: calcResult.PartialSteps(),
			})
			continue
		}

		calc, _ := calcResult.Calculation()
		priced = append(priced, pricedItem{
			categoryCode:  entry.CategoryCode,
			itemName:      entry.ItemName,
			baseUnitPrice: baseUnitPrice,
			quantity:      item.Quantity,
		})
		aggregation = append(aggregation, AggregationItem{
			CategoryCode: entry.CategoryCode,
			Quantity:     item.Quantity,
			Calculation:  calc,
		})
	}

	lineCalculations, totals, err := s.aggregator.Aggregate(ctx, aggregation, req.Urgency, discountBasisPoints)
	if err != nil {
		return domain.QuoteResult{}, err
	}

	result.Items = make([]domain.CalculatedItemPrice, 0, len(lineCalculations))
	for i, calc := range lineCalculations {
		meta := priced[i]
		unitFinal := aggregation[i].Calculation.FinalAmount
		result.Items = append(result.Items, domain.CalculatedItemPrice{
			CategoryCode:     meta.categoryCode,
			ItemName:         meta.itemName,
			BaseUnitPrice:    meta.baseUnitPrice,
			FinalUnitPrice:   unitFinal,
			FinalTotalPrice:  calc.FinalAmount,
			Quantity:         calc.Quantity,
			DiscountEligible: calc.DiscountEligible,
			UrgencyAmount:    calc.UrgencyAmount,
			DiscountAmount:   calc.DiscountAmount,
			Steps:            calc.Steps,
		})
	}
	result.Totals = totals

	s.quoted.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("pricing.items", len(result.Items)),
		attribute.Int("pricing.failures", len(result.Failures)),
	))
	s.logger(ctx, "quote_priced", map[string]any{
		"quoteId":  result.QuoteID,
		"items":    len(result.Items),
		"failures": len(result.Failures),
		"total":    totals.Total,
	})
	return result, nil
}

// resolveDiscountBasisPoints converts the validated discount selection into a
// basis-point rate using the policy table, or the caller-supplied percentage
// for OTHER.
func (s *QuoteService) resolveDiscountBasisPoints(discount domain.DiscountSelection) (int64, error) {
	discountType := discount.Type
	if discountType == "" {
		discountType = domain.DiscountNone
	}
	if discountType == domain.DiscountOther {
		if discount.Percent == nil {
			return 0, fmt.Errorf("%w: discount type OTHER requires a percentage", ErrQuoteInvalidInput)
		}
		return int64(math.Round(*discount.Percent * 100)), nil
	}
	basisPoints, ok := s.policy.ExpectedPercent(discountType)
	if !ok {
		return 0, fmt.Errorf("%w: unknown discount type %s", ErrQuoteInvalidInput, discountType)
	}
	return basisPoints, nil
}

// loadModifiers fetches the modifier definitions for an item, drops inactive
// ones, and orders the remainder by SortOrder while keeping the request order
// for ties.
func (s *QuoteService) loadModifiers(ctx context.Context, codes []string) ([]domain.Modifier, error) {
	modifiers := make([]domain.Modifier, 0, len(codes))
	for _, code := range codes {
		trimmed := strings.TrimSpace(code)
		m, err := s.modifiers.FindByCode(ctx, trimmed)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: unknown modifier code %s", ErrQuoteInvalidInput, trimmed)
			}
			return nil, fmt.Errorf("find modifier %s: %w", trimmed, err)
		}
		if !m.Active {
			s.logger(ctx, "modifier_inactive_skipped", map[string]any{"modifierCode": m.Code})
			continue
		}
		modifiers = append(modifiers, m)
	}
	sort.SliceStable(modifiers, func(i, j int) bool {
		return modifiers[i].SortOrder < modifiers[j].SortOrder
	})
	return modifiers, nil
}

func buildAdjustments(item domain.QuoteItem) ItemAdjustments {
	adj := ItemAdjustments{}
	if len(item.RangeValues) > 0 {
		adj.RangeBasisPoints = make(map[string]int64, len(item.RangeValues))
		for _, rv := range item.RangeValues {
			adj.RangeBasisPoints[rv.ModifierCode] = int64(math.Round(rv.Percent * 100))
		}
	}
	if len(item.FixedQuantities) > 0 {
		adj.FixedQuantities = make(map[string]int, len(item.FixedQuantities))
		for _, fq := range item.FixedQuantities {
			adj.FixedQuantities[fq.ModifierCode] = fq.Quantity
		}
	}
	return adj
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/atelierdesk/api/internal/domain"
)

// ErrQuoteInvalidInput signals a malformed pricing request. Requests failing
// validation are rejected before any pricing work starts.
var ErrQuoteInvalidInput = errors.New("pricing quote: invalid input")

const (
	defaultMaxQuoteItems         = 100
	defaultMaxItemQuantity       = 1000
	defaultMaxModifierCodes      = 20
	defaultMaxModifierCodeLength = 50
)

// Code format mismatches are logged, not rejected: legacy catalogs carry
// lower-case codes that still price correctly.
var modifierCodePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// QuoteValidator runs pre-flight constraint checks on a quote request.
type QuoteValidator struct {
	maxItems         int
	maxQuantity      int
	maxModifierCodes int
	maxCodeLength    int
	policy           DiscountPolicy
	logger           func(context.Context, string, map[string]any)
}

// QuoteValidatorDeps configures the validator. Zero limits fall back to the
// business defaults.
type QuoteValidatorDeps struct {
	Policy           DiscountPolicy
	MaxItems         int
	MaxQuantity      int
	MaxModifierCodes int
	MaxCodeLength    int
	Logger           func(context.Context, string, map[string]any)
}

// NewQuoteValidator wires the validator.
func NewQuoteValidator(deps QuoteValidatorDeps) (*QuoteValidator, error) {
	if deps.Policy == nil {
		return nil, errors.New("quote validator: discount policy is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	v := &QuoteValidator{
		maxItems:         deps.MaxItems,
		maxQuantity:      deps.MaxQuantity,
		maxModifierCodes: deps.MaxModifierCodes,
		maxCodeLength:    deps.MaxCodeLength,
		policy:           deps.Policy,
		logger:           logger,
	}
	if v.maxItems <= 0 {
		v.maxItems = defaultMaxQuoteItems
	}
	if v.maxQuantity <= 0 {
		v.maxQuantity = defaultMaxItemQuantity
	}
	if v.maxModifierCodes <= 0 {
		v.maxModifierCodes = defaultMaxModifierCodes
	}
	if v.maxCodeLength <= 0 {
		v.maxCodeLength = defaultMaxModifierCodeLength
	}
	return v, nil
}

// Validate checks the request against all pre-flight constraints. It returns
// an error wrapping ErrQuoteInvalidInput on the first violation.
func (v *QuoteValidator) Validate(ctx context.Context, req domain.QuoteRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrQuoteInvalidInput)
	}
	if len(req.Items) > v.maxItems {
		return fmt.Errorf("%w: item count %d exceeds maximum %d", ErrQuoteInvalidInput, len(req.Items), v.maxItems)
	}

	for i, item := range req.Items {
		if item.Quantity < 1 || item.Quantity > v.maxQuantity {
			return fmt.Errorf("%w: item %d quantity must be between 1 and %d", ErrQuoteInvalidInput, i, v.maxQuantity)
		}
		if len(item.ModifierCodes) > v.maxModifierCodes {
			return fmt.Errorf("%w: item %d has %d modifier codes, maximum is %d", ErrQuoteInvalidInput, i, len(item.ModifierCodes), v.maxModifierCodes)
		}
		for _, code := range item.ModifierCodes {
			trimmed := strings.TrimSpace(code)
			if trimmed == "" {
				return fmt.Errorf("%w: item %d has an empty modifier code", ErrQuoteInvalidInput, i)
			}
			if len(trimmed) > v.maxCodeLength {
				return fmt.Errorf("%w: item %d modifier code %q exceeds %d characters", ErrQuoteInvalidInput, i, trimmed, v.maxCodeLength)
			}
			if !modifierCodePattern.MatchString(trimmed) {
				v.logger(ctx, "modifier_code_format_mismatch", map[string]any{
					"itemIndex":    i,
					"modifierCode": trimmed,
				})
			}
		}
	}

	return v.validateDiscount(req.Discount)
}

func (v *QuoteValidator) validateDiscount(discount domain.DiscountSelection) error {
	discountType := discount.Type
	if discountType == "" {
		discountType = domain.DiscountNone
	}

	switch discountType {
	case domain.DiscountNone:
		if discount.Percent != nil && *discount.Percent != 0 {
			return fmt.Errorf("%w: discount type NONE does not accept a percentage", ErrQuoteInvalidInput)
		}
		return nil
	case domain.DiscountOther:
		if discount.Percent == nil {
			return fmt.Errorf("%w: discount type OTHER requires a percentage", ErrQuoteInvalidInput)
		}
		if *discount.Percent < 0 || *discount.Percent > 100 {
			return fmt.Errorf("%w: discount percentage must be between 0 and 100", ErrQuoteInvalidInput)
		}
		return nil
	default:
		expected, ok := v.policy.ExpectedPercent(discountType)
		if !ok {
			return fmt.Errorf("%w: unknown discount type %s", ErrQuoteInvalidInput, discountType)
		}
		if discount.Percent != nil {
			suppliedBasisPoints := int64(math.Round(*discount.Percent * 100))
			if suppliedBasisPoints != expected {
				return fmt.Errorf("%w: discount type %s expects %g%%", ErrQuoteInvalidInput, discountType, float64(expected)/100)
			}
		}
		return nil
	}
}

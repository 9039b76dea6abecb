package services

import (
	"fmt"
	"math"

	"github.com/atelierdesk/api/internal/domain"
)

// DefaultRangeWeightFactor weights RANGE_PERCENTAGE defaults toward the lower
// bound when no explicit value is supplied.
const DefaultRangeWeightFactor = 0.3

// ApplyOptions carries per-request overrides for a single modifier application.
type ApplyOptions struct {
	// RangeBasisPoints is the explicit percentage for a RANGE_PERCENTAGE
	// modifier, in basis points. Nil selects the weighted default.
	RangeBasisPoints *int64
	// FixedQuantity multiplies ADDITIVE modifier values. Values below one are
	// treated as one.
	FixedQuantity int
}

// ModifierStrategy prices one kind of structured modifier. Implementations are
// stateless; Apply must be deterministic and side-effect free.
type ModifierStrategy interface {
	Supports(m domain.Modifier) bool
	Apply(price int64, m domain.Modifier, opts ApplyOptions) (int64, error)
}

// PercentageStrategy adjusts the price by a basis-point percentage.
type PercentageStrategy struct{}

func (PercentageStrategy) Supports(m domain.Modifier) bool {
	return m.Type == domain.ModifierTypePercentage
}

func (PercentageStrategy) Apply(price int64, m domain.Modifier, _ ApplyOptions) (int64, error) {
	return roundHalfUpDiv(price*(basisPointsScale+m.Value), basisPointsScale), nil
}

// FixedStrategy replaces the running price with the modifier value outright
// rather than adding to it. Flat promotional prices depend on the replacement
// semantics.
type FixedStrategy struct{}

func (FixedStrategy) Supports(m domain.Modifier) bool {
	return m.Type == domain.ModifierTypeFixed
}

func (FixedStrategy) Apply(_ int64, m domain.Modifier, _ ApplyOptions) (int64, error) {
	return m.Value, nil
}

// AdditiveStrategy adds a fixed minor-unit amount, multiplied by the requested
// quantity for modifiers charged per piece (buttons, patches).
type AdditiveStrategy struct{}

func (AdditiveStrategy) Supports(m domain.Modifier) bool {
	return m.Type == domain.ModifierTypeAdditive
}

func (AdditiveStrategy) Apply(price int64, m domain.Modifier, opts ApplyOptions) (int64, error) {
	quantity := opts.FixedQuantity
	if quantity < 1 {
		quantity = 1
	}
	return price + m.Value*int64(quantity), nil
}

// RangePercentageStrategy applies a percentage chosen inside the modifier's
// [MinValue, MaxValue] bounds: the caller's explicit value when supplied,
// otherwise a default weighted toward the minimum.
type RangePercentageStrategy struct {
	// WeightFactor overrides DefaultRangeWeightFactor when non-zero.
	WeightFactor float64
}

func (s RangePercentageStrategy) Supports(m domain.Modifier) bool {
	return m.Type == domain.ModifierTypeRangePercentage
}

func (s RangePercentageStrategy) Apply(price int64, m domain.Modifier, opts ApplyOptions) (int64, error) {
	if m.MinValue > m.MaxValue {
		return 0, fmt.Errorf("range bounds inverted: min %d > max %d", m.MinValue, m.MaxValue)
	}
	basisPoints := s.defaultBasisPoints(m)
	if opts.RangeBasisPoints != nil {
		basisPoints = *opts.RangeBasisPoints
	}
	return roundHalfUpDiv(price*(basisPointsScale+basisPoints), basisPointsScale), nil
}

func (s RangePercentageStrategy) defaultBasisPoints(m domain.Modifier) int64 {
	weight := s.WeightFactor
	if weight == 0 {
		weight = DefaultRangeWeightFactor
	}
	return m.MinValue + int64(math.Round(float64(m.MaxValue-m.MinValue)*weight))
}

package services

import (
	"errors"
	"fmt"

	"github.com/atelierdesk/api/internal/domain"
)

var (
	// ErrInvalidParameter signals a missing or broken calculation input; it is
	// a programming or configuration error and fails fast.
	ErrInvalidParameter = errors.New("pricing: invalid parameter")
	// ErrUnsupportedModifierType is returned when no strategy is registered
	// for a modifier's type.
	ErrUnsupportedModifierType = errors.New("pricing: unsupported modifier type")
)

// ModifierDispatcher selects the first strategy supporting a modifier and
// applies it, enforcing the global price floor. This is the only place floor
// enforcement happens for structured modifiers.
type ModifierDispatcher struct {
	strategies []ModifierStrategy
	floor      int64
}

// ModifierDispatcherDeps configures a dispatcher.
type ModifierDispatcherDeps struct {
	// Strategies defaults to the four structured strategies in registration
	// order: percentage, fixed, additive, range-percentage.
	Strategies []ModifierStrategy
	// PriceFloor is the minimum price after any application. Zero keeps
	// prices non-negative.
	PriceFloor int64
	// RangeWeightFactor overrides the range default weighting.
	RangeWeightFactor float64
}

// NewModifierDispatcher wires the dispatcher with its strategy set.
func NewModifierDispatcher(deps ModifierDispatcherDeps) *ModifierDispatcher {
	strategies := deps.Strategies
	if len(strategies) == 0 {
		strategies = []ModifierStrategy{
			PercentageStrategy{},
			FixedStrategy{},
			AdditiveStrategy{},
			RangePercentageStrategy{WeightFactor: deps.RangeWeightFactor},
		}
	}
	return &ModifierDispatcher{strategies: strategies, floor: deps.PriceFloor}
}

// Apply runs the matching strategy and clamps the result to the price floor.
// Strategy errors are rewrapped as ErrInvalidParameter naming the offending
// modifier code; they never propagate raw.
func (d *ModifierDispatcher) Apply(price int64, m domain.Modifier, opts ApplyOptions) (int64, error) {
	if price < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrInvalidParameter)
	}
	if m.Code == "" {
		return 0, fmt.Errorf("%w: modifier code is required", ErrInvalidParameter)
	}
	if m.Type == "" {
		return 0, fmt.Errorf("%w: modifier %s has no type", ErrInvalidParameter, m.Code)
	}

	for _, strategy := range d.strategies {
		if !strategy.Supports(m) {
			continue
		}
		next, err := strategy.Apply(price, m, opts)
		if err != nil {
			return 0, fmt.Errorf("%w: modifier %s: %v", ErrInvalidParameter, m.Code, err)
		}
		if next < d.floor {
			next = d.floor
		}
		return next, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedModifierType, m.Type)
}

package services

import (
	"context"
	"errors"

	"github.com/atelierdesk/api/internal/domain"
)

// CatalogGateway resolves the price card of a catalog item. Implementations
// return fully resolved data before calculation starts; the pricing core
// performs no I/O of its own on the hot path.
type CatalogGateway interface {
	ResolveItem(ctx context.Context, categoryCode, itemName string) (domain.CatalogEntry, error)
}

// ModifierGateway looks up modifier definitions by their stable code.
type ModifierGateway interface {
	FindByCode(ctx context.Context, code string) (domain.Modifier, error)
}

// DiscountPolicy answers category eligibility for the global discount and the
// expected percentage (in basis points) for predefined discount types.
type DiscountPolicy interface {
	EligibleCategory(categoryCode string) bool
	ExpectedPercent(discount domain.DiscountType) (int64, bool)
}

// NotFoundError is implemented by gateway errors describing missing records.
type NotFoundError interface {
	error
	IsNotFound() bool
}

func isNotFound(err error) bool {
	var notFound NotFoundError
	return errors.As(err, &notFound) && notFound.IsNotFound()
}

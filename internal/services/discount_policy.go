package services

import (
	"strings"

	"github.com/atelierdesk/api/internal/domain"
)

// StaticDiscountPolicy implements DiscountPolicy from fixed tables: a category
// exclusion list and the expected percentage per predefined discount type.
type StaticDiscountPolicy struct {
	excluded map[string]struct{}
	percents map[domain.DiscountType]int64
}

// StaticDiscountPolicyDeps allows overriding the default tables.
type StaticDiscountPolicyDeps struct {
	ExcludedCategories []string
	// PercentOverrides maps discount types to basis points.
	PercentOverrides map[domain.DiscountType]int64
}

// NewStaticDiscountPolicy builds the policy with business defaults: laundry,
// ironing and dyeing services never participate in the global discount.
func NewStaticDiscountPolicy(deps StaticDiscountPolicyDeps) *StaticDiscountPolicy {
	categories := deps.ExcludedCategories
	if len(categories) == 0 {
		categories = []string{domain.CategoryLaundry, domain.CategoryIroning, domain.CategoryDyeing}
	}
	excluded := make(map[string]struct{}, len(categories))
	for _, code := range categories {
		trimmed := strings.ToUpper(strings.TrimSpace(code))
		if trimmed == "" {
			continue
		}
		excluded[trimmed] = struct{}{}
	}

	percents := map[domain.DiscountType]int64{
		domain.DiscountNone:        0,
		domain.DiscountEvercard:    1000,
		domain.DiscountSocialMedia: 500,
		domain.DiscountMilitary:    1000,
	}
	for discountType, basisPoints := range deps.PercentOverrides {
		percents[discountType] = basisPoints
	}

	return &StaticDiscountPolicy{excluded: excluded, percents: percents}
}

// EligibleCategory reports whether the category participates in the discount.
func (p *StaticDiscountPolicy) EligibleCategory(categoryCode string) bool {
	_, blocked := p.excluded[strings.ToUpper(strings.TrimSpace(categoryCode))]
	return !blocked
}

// ExpectedPercent returns the fixed basis-point percentage for a predefined
// discount type. OTHER has no fixed percentage and reports false.
func (p *StaticDiscountPolicy) ExpectedPercent(discount domain.DiscountType) (int64, bool) {
	basisPoints, ok := p.percents[discount]
	return basisPoints, ok
}

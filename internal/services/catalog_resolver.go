package services

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/atelierdesk/api/internal/domain"
)

// defaultBlackColorTokens are the color names that select the dedicated black
// price when one is present on the price card. The catalog is bilingual, so
// both the English and Ukrainian spellings are recognised.
var defaultBlackColorTokens = []string{"black", "чорний", "чорна", "чорне", "чорні"}

// CatalogPriceResolver picks the base unit price for an item from its price
// card and the requested color. Pure function of its inputs.
type CatalogPriceResolver struct {
	blackTokens map[string]struct{}
}

// NewCatalogPriceResolver builds a resolver; extraBlackTokens widen the set of
// color names treated as black.
func NewCatalogPriceResolver(extraBlackTokens ...string) *CatalogPriceResolver {
	tokens := make(map[string]struct{}, len(defaultBlackColorTokens)+len(extraBlackTokens))
	for _, token := range defaultBlackColorTokens {
		tokens[foldColorName(token)] = struct{}{}
	}
	for _, token := range extraBlackTokens {
		if folded := foldColorName(token); folded != "" {
			tokens[folded] = struct{}{}
		}
	}
	return &CatalogPriceResolver{blackTokens: tokens}
}

// ResolveUnitPrice returns the black price for recognised black colors, the
// color price for any other non-blank color, and the base price otherwise.
func (r *CatalogPriceResolver) ResolveUnitPrice(entry domain.CatalogEntry, color string) int64 {
	folded := foldColorName(color)
	if folded == "" {
		return entry.BasePrice
	}
	if _, ok := r.blackTokens[folded]; ok && entry.BlackPrice != nil {
		return *entry.BlackPrice
	}
	if entry.ColorPrice != nil {
		return *entry.ColorPrice
	}
	return entry.BasePrice
}

// foldColorName normalises a color for comparison. Unicode case folding keeps
// Cyrillic color names matching regardless of the customer's input casing.
func foldColorName(color string) string {
	trimmed := strings.TrimSpace(color)
	if trimmed == "" {
		return ""
	}
	return cases.Fold().String(trimmed)
}

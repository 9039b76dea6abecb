// Package memory provides read-only, seed-backed implementations of the
// pricing gateways. Catalog and modifier management proper live in a separate
// system; these stores hold the already-resolved data the pricing core
// consumes.
package memory

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/atelierdesk/api/internal/domain"
)

// NotFoundError reports a missing catalog or modifier record.
type NotFoundError struct {
	Kind string
	Key  string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memory: %s %q not found", e.Kind, e.Key)
}

// IsNotFound marks the error for behavioural checks in the service layer.
func (e *NotFoundError) IsNotFound() bool { return true }

// CatalogStore resolves catalog entries by category code and item name.
// Lookups are case-insensitive; the store is immutable after construction and
// safe for concurrent use.
type CatalogStore struct {
	entries map[string]domain.CatalogEntry
}

// NewCatalogStore indexes the provided entries.
func NewCatalogStore(entries []domain.CatalogEntry) *CatalogStore {
	indexed := make(map[string]domain.CatalogEntry, len(entries))
	for _, entry := range entries {
		indexed[catalogKey(entry.CategoryCode, entry.ItemName)] = entry
	}
	return &CatalogStore{entries: indexed}
}

// ResolveItem implements services.CatalogGateway.
func (s *CatalogStore) ResolveItem(_ context.Context, categoryCode, itemName string) (domain.CatalogEntry, error) {
	entry, ok := s.entries[catalogKey(categoryCode, itemName)]
	if !ok {
		return domain.CatalogEntry{}, &NotFoundError{Kind: "catalog item", Key: categoryCode + "/" + itemName}
	}
	return entry, nil
}

// ModifierStore resolves modifier definitions by code. Immutable after
// construction and safe for concurrent use.
type ModifierStore struct {
	byCode map[string]domain.Modifier
}

// NewModifierStore indexes the provided modifiers.
func NewModifierStore(modifiers []domain.Modifier) *ModifierStore {
	indexed := make(map[string]domain.Modifier, len(modifiers))
	for _, m := range modifiers {
		indexed[strings.ToUpper(strings.TrimSpace(m.Code))] = m
	}
	return &ModifierStore{byCode: indexed}
}

// FindByCode implements services.ModifierGateway.
func (s *ModifierStore) FindByCode(_ context.Context, code string) (domain.Modifier, error) {
	m, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return domain.Modifier{}, &NotFoundError{Kind: "modifier", Key: code}
	}
	return m, nil
}

func catalogKey(categoryCode, itemName string) string {
	category := strings.ToUpper(strings.TrimSpace(categoryCode))
	name := cases.Fold().String(strings.TrimSpace(itemName))
	return category + "|" + name
}

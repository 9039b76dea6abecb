package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierdesk/api/internal/domain"
)

func TestCatalogStoreResolveItem(t *testing.T) {
	store := NewCatalogStore(SeedCatalog())

	entry, err := store.ResolveItem(context.Background(), "CLEANING", "coat")
	if err != nil {
		t.Fatalf("ResolveItem returned error: %v", err)
	}
	if entry.BasePrice != 45000 {
		t.Fatalf("BasePrice = %d, want 45000", entry.BasePrice)
	}
	if entry.BlackPrice == nil || *entry.BlackPrice != 52000 {
		t.Fatalf("unexpected BlackPrice: %v", entry.BlackPrice)
	}
}

func TestCatalogStoreLookupIsCaseInsensitive(t *testing.T) {
	store := NewCatalogStore(SeedCatalog())

	entry, err := store.ResolveItem(context.Background(), "cleaning", "  Coat ")
	if err != nil {
		t.Fatalf("ResolveItem returned error: %v", err)
	}
	if entry.ItemName != "coat" {
		t.Fatalf("ItemName = %q, want coat", entry.ItemName)
	}
}

func TestCatalogStoreNotFound(t *testing.T) {
	store := NewCatalogStore(SeedCatalog())

	_, err := store.ResolveItem(context.Background(), "CLEANING", "spacesuit")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if !notFound.IsNotFound() {
		t.Fatal("IsNotFound must report true")
	}
}

func TestCatalogStoreSameNameAcrossCategories(t *testing.T) {
	store := NewCatalogStore(SeedCatalog())

	laundry, err := store.ResolveItem(context.Background(), domain.CategoryLaundry, "shirt")
	if err != nil {
		t.Fatalf("ResolveItem returned error: %v", err)
	}
	ironing, err := store.ResolveItem(context.Background(), domain.CategoryIroning, "shirt")
	if err != nil {
		t.Fatalf("ResolveItem returned error: %v", err)
	}
	if laundry.BasePrice == ironing.BasePrice {
		t.Fatal("categories must key separate price cards")
	}
}

func TestModifierStoreFindByCode(t *testing.T) {
	store := NewModifierStore(SeedModifiers())

	m, err := store.FindByCode(context.Background(), " leather ")
	if err != nil {
		t.Fatalf("FindByCode returned error: %v", err)
	}
	if m.Code != "LEATHER" || m.Type != domain.ModifierTypePercentage || m.Value != 3000 {
		t.Fatalf("unexpected modifier: %+v", m)
	}
}

func TestModifierStoreNotFound(t *testing.T) {
	store := NewModifierStore(SeedModifiers())

	_, err := store.FindByCode(context.Background(), "MYSTERY")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSeedModifiersCarryInactiveEntry(t *testing.T) {
	store := NewModifierStore(SeedModifiers())

	m, err := store.FindByCode(context.Background(), "RETIRED")
	if err != nil {
		t.Fatalf("FindByCode returned error: %v", err)
	}
	if m.Active {
		t.Fatal("RETIRED seed must be inactive")
	}
}

package memory

import "github.com/atelierdesk/api/internal/domain"

func int64Ptr(v int64) *int64 { return &v }

// SeedCatalog returns the default garment-care price card used when no
// external catalog is wired. Amounts are minor units (kopiykas).
func SeedCatalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{CategoryCode: domain.CategoryCleaning, ItemName: "coat", BasePrice: 45000, BlackPrice: int64Ptr(52000), ColorPrice: int64Ptr(48000)},
		{CategoryCode: domain.CategoryCleaning, ItemName: "suit", BasePrice: 38000, ColorPrice: int64Ptr(40000)},
		{CategoryCode: domain.CategoryCleaning, ItemName: "dress", BasePrice: 32000, BlackPrice: int64Ptr(36000), ColorPrice: int64Ptr(34000)},
		{CategoryCode: domain.CategoryCleaning, ItemName: "jacket", BasePrice: 30000},
		{CategoryCode: domain.CategoryLaundry, ItemName: "shirt", BasePrice: 9000},
		{CategoryCode: domain.CategoryLaundry, ItemName: "bedding set", BasePrice: 25000},
		{CategoryCode: domain.CategoryIroning, ItemName: "shirt", BasePrice: 6000},
		{CategoryCode: domain.CategoryIroning, ItemName: "trousers", BasePrice: 7000},
		{CategoryCode: domain.CategoryDyeing, ItemName: "jeans", BasePrice: 42000, BlackPrice: int64Ptr(47000), ColorPrice: int64Ptr(45000)},
		{CategoryCode: domain.CategoryRepair, ItemName: "zipper replacement", BasePrice: 15000},
	}
}

// SeedModifiers returns the default modifier definitions.
func SeedModifiers() []domain.Modifier {
	return []domain.Modifier{
		{Code: "LEATHER", Name: "Leather material", Type: domain.ModifierTypePercentage, Value: 3000, SortOrder: 10, Active: true},
		{Code: "KIDS", Name: "Children's garment", Type: domain.ModifierTypePercentage, Value: -2000, SortOrder: 10, Active: true},
		{Code: "DELICATE", Name: "Delicate fabric", Type: domain.ModifierTypePercentage, Value: 1500, SortOrder: 20, Active: true},
		{Code: "FLAT_PROMO", Name: "Flat promotional price", Type: domain.ModifierTypeFixed, Value: 20000, SortOrder: 30, Active: true},
		{Code: "BUTTONS", Name: "Button replacement", Type: domain.ModifierTypeAdditive, Value: 1500, SortOrder: 40, Active: true},
		{Code: "STAIN", Name: "Heavy staining", Type: domain.ModifierTypeRangePercentage, MinValue: 1000, MaxValue: 3000, SortOrder: 50, Active: true},
		{Code: "WEAR", Name: "Wear and tear surcharge", Type: domain.ModifierTypeRangePercentage, MinValue: 500, MaxValue: 2500, SortOrder: 50, Active: true},
		{Code: "SEASONAL", Name: "Seasonal formula", Type: domain.ModifierTypeFormula, FormulaExpression: "max(currentPrice * 0.9, basePrice * 0.5)", SortOrder: 60, Active: true},
		{Code: "RETIRED", Name: "Retired modifier", Type: domain.ModifierTypePercentage, Value: 500, SortOrder: 70, Active: false},
	}
}

package domain

// UrgencyType selects the global turnaround surcharge applied to every item.
type UrgencyType string

const (
	UrgencyNone    UrgencyType = "NONE"
	UrgencyUrgent  UrgencyType = "URGENT"
	UrgencyExpress UrgencyType = "EXPRESS"
)

// DiscountType selects the global order discount. Predefined types carry a
// fixed expected percentage; OTHER accepts a caller-supplied percentage.
type DiscountType string

const (
	DiscountNone        DiscountType = "NONE"
	DiscountEvercard    DiscountType = "EVERCARD"
	DiscountSocialMedia DiscountType = "SOCIAL_MEDIA"
	DiscountMilitary    DiscountType = "MILITARY"
	DiscountOther       DiscountType = "OTHER"
)

// Service category codes used for discount eligibility decisions.
const (
	CategoryCleaning = "CLEANING"
	CategoryLaundry  = "LAUNDRY"
	CategoryIroning  = "IRONING"
	CategoryDyeing   = "DYEING"
	CategoryRepair   = "REPAIR"
)

// CatalogEntry is the already-resolved price card for one catalog item.
// BlackPrice and ColorPrice are optional overrides for dyed garments.
type CatalogEntry struct {
	CategoryCode string
	ItemName     string
	BasePrice    int64
	BlackPrice   *int64
	ColorPrice   *int64
}

// RangeModifierValue supplies an explicit percentage for a RANGE_PERCENTAGE
// modifier on one item. Percent is expressed in percent, not basis points.
type RangeModifierValue struct {
	ModifierCode string
	Percent      float64
}

// FixedModifierQuantity supplies the multiplier for an ADDITIVE modifier.
type FixedModifierQuantity struct {
	ModifierCode string
	Quantity     int
}

// QuoteItem describes one order line in a pricing request.
type QuoteItem struct {
	CategoryCode    string
	ItemName        string
	Color           string
	Quantity        int
	ModifierCodes   []string
	RangeValues     []RangeModifierValue
	FixedQuantities []FixedModifierQuantity
}

// DiscountSelection carries the requested global discount. Percent is required
// for OTHER and must match the expected value for predefined types when set.
type DiscountSelection struct {
	Type    DiscountType
	Percent *float64
}

// QuoteRequest is the full input of a pricing calculation.
type QuoteRequest struct {
	Items    []QuoteItem
	Urgency  UrgencyType
	Discount DiscountSelection
}

// CalculatedItemPrice is the per-item output of a priced quote.
type CalculatedItemPrice struct {
	CategoryCode     string
	ItemName         string
	BaseUnitPrice    int64
	FinalUnitPrice   int64
	FinalTotalPrice  int64
	Quantity         int
	DiscountEligible bool
	UrgencyAmount    int64
	DiscountAmount   int64
	Steps            []CalculationStep
}

// ItemFailure reports an item whose calculation aborted, carrying the steps
// produced before the failing modifier.
type ItemFailure struct {
	CategoryCode string
	ItemName     string
	Message      string
	PartialSteps []CalculationStep
}

// QuoteResult is the full output of a pricing calculation.
type QuoteResult struct {
	QuoteID  string
	Items    []CalculatedItemPrice
	Failures []ItemFailure
	Totals   OrderTotals
}

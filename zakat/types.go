/*
Package zakat provides the core zakat calculation engine.

PURPOSE:
  This package contains the types and algorithms for computing the zakat
  obligation across nine asset categories: cash, gold, silver, camels,
  cattle, sheep/goats, crops, business inventory, and an aggregate "total"
  mode. Each category has its own minimum threshold (nisab) test; the
  livestock categories map a head count to a specific obligation (an animal
  type and count) through ordered bracket tables rather than a percentage.

KEY CONCEPTS IN THIS FILE (types.go):
  - Asset: A tagged union discriminated by AssetType, one variant per category
  - CategoryResult: The outcome of a single-category calculation
  - AggregateResult: Per-category results plus overall total and guidance
  - AnimalDue: One line of a livestock obligation (type + head count)

DESIGN PRINCIPLES:
  1. Purity: Every calculation is a pure function of its inputs and the
     configuration. No I/O, no mutation, no hidden state.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Rules as data: Bracket tables live in Config, not in code branches.
  4. Graceful degradation: "no obligation due" is a normal result, never
     an error; calculation functions do not fail on zero or boundary input.

USAGE:
  engine := zakat.NewEngine(zakat.DefaultConfig())
  result := engine.CalculateCashZakat(decimal.NewFromInt(10000))
  // result.IsAboveNisab == true, result.ZakatAmount == 250

SEE ALSO:
  - config.go: Thresholds, rates, and bracket tables
  - brackets.go: Ordered bracket lookup and extrapolation
  - engine.go: Category calculators and the aggregator
  - validation.go: Structural and business validation of assets
*/
package zakat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ASSET - Tagged union of the eight asset categories
// =============================================================================

// AssetType discriminates the Asset union. The codes match the category
// names used in stored records and API payloads, case-sensitive.
type AssetType string

const (
	AssetCash              AssetType = "CASH"
	AssetGold              AssetType = "GOLD"
	AssetSilver            AssetType = "SILVER"
	AssetCamel             AssetType = "CAMEL"
	AssetCattle            AssetType = "CATTLE"
	AssetSheepGoats        AssetType = "SHEEP_GOATS"
	AssetCrops             AssetType = "CROPS"
	AssetBusinessInventory AssetType = "BUSINESS_INVENTORY"
)

// AssetTypes lists every known category code, in display order.
var AssetTypes = []AssetType{
	AssetCash, AssetGold, AssetSilver,
	AssetCamel, AssetCattle, AssetSheepGoats,
	AssetCrops, AssetBusinessInventory,
}

// KnownAssetType reports whether t is one of the eight category codes.
// Matching is case-sensitive and exact.
func KnownAssetType(t AssetType) bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CategoryKey returns the lower-cased category name used to key
// per-category results in an AggregateResult (e.g. "sheep_goats").
func (t AssetType) CategoryKey() string {
	return strings.ToLower(string(t))
}

// IrrigationMethod selects the crops zakat rate. Anything other than the
// two known values is rejected by validation rather than silently defaulted.
type IrrigationMethod string

const (
	IrrigationIrrigated IrrigationMethod = "irrigated"
	IrrigationRainfall  IrrigationMethod = "rainfall"
)

// Asset is one holding to be assessed. It is a tagged union discriminated
// by Type: each variant reads only the fields it needs and ignores the rest.
//
//	CASH:               Amount
//	GOLD, SILVER:       QuantityGrams, PricePerGram
//	CAMEL, CATTLE,
//	SHEEP_GOATS:        Count
//	CROPS:              Tons, IrrigationMethod (PricePerTon optional)
//	BUSINESS_INVENTORY: Value
//
// Every variant carries a required, non-empty Name for display and
// validation reporting. All numeric fields must be non-negative.
type Asset struct {
	Type AssetType `json:"type" validate:"required"`
	Name string    `json:"name" validate:"required"`

	// CASH
	Amount decimal.Decimal `json:"amount"`

	// GOLD / SILVER
	QuantityGrams decimal.Decimal `json:"quantity_grams"`
	PricePerGram  decimal.Decimal `json:"price_per_gram"`

	// CAMEL / CATTLE / SHEEP_GOATS
	Count int `json:"count"`

	// CROPS. PricePerTon is optional: when positive, the crops obligation
	// is also expressed in currency, otherwise it stays denominated in tons.
	Tons             decimal.Decimal  `json:"tons"`
	IrrigationMethod IrrigationMethod `json:"irrigation_method"`
	PricePerTon      decimal.Decimal  `json:"price_per_ton"`

	// BUSINESS_INVENTORY
	Value decimal.Decimal `json:"value"`
}

// =============================================================================
// RESULTS
// =============================================================================

// AnimalDue is one line of a livestock obligation: a zakat type code (see
// config.go) and how many animals of that type are due.
type AnimalDue struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CategoryResult is the outcome of a single-category calculation. Which
// fields are meaningful depends on the category:
//
//	All:                 Category, IsAboveNisab, ZakatAmount
//	Cash, inventory:     Rate
//	Gold, silver:        TotalValue, Rate, ZakatGrams
//	Camel, cattle, sheep: ZakatType, ZakatCount, Animals
//	Crops:               Rate, ZakatTons
//
// Livestock obligations are denominated in animals, not currency, so their
// ZakatAmount is zero and only ZakatType/ZakatCount/Animals carry the due.
type CategoryResult struct {
	Category     AssetType       `json:"category"`
	IsAboveNisab bool            `json:"is_above_nisab"`
	TotalValue   decimal.Decimal `json:"total_value"`
	ZakatAmount  decimal.Decimal `json:"zakat_amount"`
	Rate         decimal.Decimal `json:"rate"`
	ZakatType    string          `json:"zakat_type,omitempty"`
	ZakatCount   int             `json:"zakat_count,omitempty"`
	ZakatGrams   decimal.Decimal `json:"zakat_grams"`
	ZakatTons    decimal.Decimal `json:"zakat_tons"`
	Animals      []AnimalDue     `json:"animals,omitempty"`
}

// AggregateResult is the outcome of CalculateTotalZakat: one CategoryResult
// per category present in the input (keyed by lower-cased category name),
// the sum of every category's ZakatAmount, and human-readable guidance.
type AggregateResult struct {
	Categories      map[string]CategoryResult `json:"categories"`
	TotalZakat      decimal.Decimal           `json:"total_zakat"`
	Recommendations []string                  `json:"recommendations"`
}

/*
config.go - Zakat rules configuration

PURPOSE:
  Defines the data tables that govern every calculation: nisab thresholds,
  flat rates, the livestock bracket tables, and display descriptions for
  zakat type codes. Pure data, no behavior beyond lookups.

LIFECYCLE:
  A Config is built once at process start (DefaultConfig or the factory's
  JSON parser) and treated as read-only for the lifetime of the process.
  Concurrent calculations share it without locking; nothing in this package
  mutates a Config after construction. Use Clone before customizing a
  derived configuration.

WHY CONFIGURATION, NOT CODE:
  The bracket tables carry the one area of jurisprudential ambiguity (the
  camel 76-90 row exists in variant forms across published tables). Keeping
  every row as data means a deployment can select either form by editing
  configuration, without touching engine logic.

ROUNDING:
  RoundTo controls whether currency results are rounded to a fixed number
  of decimal places. nil leaves results as exact decimal products, which is
  the default; decimal arithmetic keeps them stable either way.

SEE ALSO:
  - brackets.go: How the bracket tables are consumed
  - factory/config.go: JSON representation for editing without code changes
*/
package zakat

import "github.com/shopspring/decimal"

// =============================================================================
// ZAKAT TYPE CODES
// =============================================================================

// Zakat type codes identify what kind of animal (or nothing) is due.
// TypeDescriptions maps them to display strings; unknown codes pass
// through unchanged.
const (
	ZakatTypeNone                 = "NONE"
	ZakatTypeSheep                = "SHEEP"
	ZakatTypeDaughterOfOneYear    = "DAUGHTER_OF_ONE_YEAR"
	ZakatTypeDaughterOfTwoYears   = "DAUGHTER_OF_TWO_YEARS"
	ZakatTypeHiqqah               = "HIQQAH"
	ZakatTypeJadhaah              = "JADHAAH"
	ZakatTypeYoungCalfOneYear     = "YOUNG_CALF_ONE_YEAR"
	ZakatTypeFemaleCattleTwoYears = "FEMALE_CATTLE_TWO_YEARS"
)

// =============================================================================
// CONFIG
// =============================================================================

// Thresholds holds the per-category nisab values. Currency thresholds are
// in the deployment's currency; gold/silver are gram thresholds converted
// at calculation time using the supplied per-gram price, so they stay
// comparable with the cash nisab.
type Thresholds struct {
	CashNisab        decimal.Decimal
	GoldNisabGrams   decimal.Decimal
	SilverNisabGrams decimal.Decimal
	CropsNisabTons   decimal.Decimal
	CamelNisab       int
	CattleNisab      int
	SheepNisab       int
}

// Rates holds the flat zakat rates.
type Rates struct {
	Standard       decimal.Decimal // cash, gold, silver, business inventory
	CropsIrrigated decimal.Decimal
	CropsRainfall  decimal.Decimal
}

// Config is the complete, immutable rule set consumed by the engine.
type Config struct {
	Thresholds Thresholds
	Rates      Rates

	// LivestockBrackets holds one ordered bracket table per livestock
	// category (CAMEL, CATTLE, SHEEP_GOATS). Each table partitions
	// [0, inf) with contiguous, non-overlapping ranges.
	LivestockBrackets map[AssetType][]Bracket

	// TypeDescriptions maps zakat type codes to display strings.
	TypeDescriptions map[string]string

	// RoundTo is the number of decimal places currency results are rounded
	// to. nil disables rounding.
	RoundTo *int32
}

// GetZakatTypeDescription returns the display string for a zakat type code.
// Unknown codes are returned unchanged; this lookup is purely for display
// and never fails.
func (c *Config) GetZakatTypeDescription(code string) string {
	if desc, ok := c.TypeDescriptions[code]; ok {
		return desc
	}
	return code
}

// Round applies the configured rounding policy to a currency amount.
func (c *Config) Round(d decimal.Decimal) decimal.Decimal {
	if c.RoundTo == nil {
		return d
	}
	return d.Round(*c.RoundTo)
}

// Clone returns a deep copy. Customize the copy, never a shared Config.
func (c *Config) Clone() *Config {
	out := &Config{
		Thresholds: c.Thresholds,
		Rates:      c.Rates,
	}
	if c.RoundTo != nil {
		v := *c.RoundTo
		out.RoundTo = &v
	}
	out.LivestockBrackets = make(map[AssetType][]Bracket, len(c.LivestockBrackets))
	for t, table := range c.LivestockBrackets {
		cp := make([]Bracket, len(table))
		for i, b := range table {
			cp[i] = b.clone()
		}
		out.LivestockBrackets[t] = cp
	}
	out.TypeDescriptions = make(map[string]string, len(c.TypeDescriptions))
	for k, v := range c.TypeDescriptions {
		out.TypeDescriptions[k] = v
	}
	return out
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultConfig returns the standard rule set. The cash nisab is a plain
// currency value; deployments normally set it to the local-currency value
// of the gold nisab (85g at the prevailing price).
func DefaultConfig() *Config {
	return &Config{
		Thresholds: Thresholds{
			CashNisab:        decimal.NewFromInt(5000),
			GoldNisabGrams:   decimal.NewFromInt(85),
			SilverNisabGrams: decimal.NewFromInt(595),
			CropsNisabTons:   decimal.NewFromFloat(0.653), // five wasq, ~653 kg
			CamelNisab:       5,
			CattleNisab:      30,
			SheepNisab:       40,
		},
		Rates: Rates{
			Standard:       decimal.NewFromFloat(0.025),
			CropsIrrigated: decimal.NewFromFloat(0.05),
			CropsRainfall:  decimal.NewFromFloat(0.10),
		},
		LivestockBrackets: map[AssetType][]Bracket{
			AssetCamel:      defaultCamelBrackets(),
			AssetCattle:     defaultCattleBrackets(),
			AssetSheepGoats: defaultSheepBrackets(),
		},
		TypeDescriptions: defaultTypeDescriptions(),
	}
}

func defaultCamelBrackets() []Bracket {
	return []Bracket{
		{MinCount: 0, MaxCount: intPtr(4), ZakatType: ZakatTypeNone, ZakatCount: 0},
		{MinCount: 5, MaxCount: intPtr(9), ZakatType: ZakatTypeSheep, ZakatCount: 1},
		{MinCount: 10, MaxCount: intPtr(14), ZakatType: ZakatTypeSheep, ZakatCount: 2},
		{MinCount: 15, MaxCount: intPtr(19), ZakatType: ZakatTypeSheep, ZakatCount: 3},
		{MinCount: 20, MaxCount: intPtr(24), ZakatType: ZakatTypeSheep, ZakatCount: 4},
		{MinCount: 25, MaxCount: intPtr(35), ZakatType: ZakatTypeDaughterOfOneYear, ZakatCount: 1},
		{MinCount: 36, MaxCount: intPtr(45), ZakatType: ZakatTypeDaughterOfTwoYears, ZakatCount: 1},
		{MinCount: 46, MaxCount: intPtr(60), ZakatType: ZakatTypeHiqqah, ZakatCount: 1},
		{MinCount: 61, MaxCount: intPtr(75), ZakatType: ZakatTypeJadhaah, ZakatCount: 1},
		// Published tables disagree on this row; it is a single data row so
		// either variant can be configured without code changes.
		{MinCount: 76, MaxCount: intPtr(90), ZakatType: ZakatTypeDaughterOfTwoYears, ZakatCount: 2},
		{MinCount: 91, MaxCount: intPtr(120), ZakatType: ZakatTypeHiqqah, ZakatCount: 2},
		{MinCount: 121, Extrapolation: &Extrapolation{
			Kind:   ExtrapolationPartition,
			Prefer: PreferFewestAnimals,
			Units: []PartitionUnit{
				{GroupSize: 40, ZakatType: ZakatTypeDaughterOfTwoYears},
				{GroupSize: 50, ZakatType: ZakatTypeHiqqah},
			},
		}},
	}
}

func defaultCattleBrackets() []Bracket {
	return []Bracket{
		{MinCount: 0, MaxCount: intPtr(29), ZakatType: ZakatTypeNone, ZakatCount: 0},
		{MinCount: 30, Extrapolation: &Extrapolation{
			Kind:   ExtrapolationPartition,
			Prefer: PreferMostAnimals,
			Units: []PartitionUnit{
				{GroupSize: 30, ZakatType: ZakatTypeYoungCalfOneYear},
				{GroupSize: 40, ZakatType: ZakatTypeFemaleCattleTwoYears},
			},
		}},
	}
}

func defaultSheepBrackets() []Bracket {
	return []Bracket{
		{MinCount: 0, MaxCount: intPtr(39), ZakatType: ZakatTypeNone, ZakatCount: 0},
		{MinCount: 40, MaxCount: intPtr(120), ZakatType: ZakatTypeSheep, ZakatCount: 1},
		{MinCount: 121, MaxCount: intPtr(200), ZakatType: ZakatTypeSheep, ZakatCount: 2},
		{MinCount: 201, MaxCount: intPtr(300), ZakatType: ZakatTypeSheep, ZakatCount: 3},
		{MinCount: 301, ZakatType: ZakatTypeSheep, ZakatCount: 3, Extrapolation: &Extrapolation{
			Kind:     ExtrapolationStep,
			StepFrom: 300,
			StepSize: 100,
		}},
	}
}

func defaultTypeDescriptions() map[string]string {
	return map[string]string{
		ZakatTypeNone:                 "No zakat due",
		ZakatTypeSheep:                "A sheep or goat of at least one year",
		ZakatTypeDaughterOfOneYear:    "A one-year-old she-camel (bint makhad)",
		ZakatTypeDaughterOfTwoYears:   "A two-year-old she-camel (bint labun)",
		ZakatTypeHiqqah:               "A three-year-old she-camel (hiqqah)",
		ZakatTypeJadhaah:              "A four-year-old she-camel (jadha'ah)",
		ZakatTypeYoungCalfOneYear:     "A one-year-old calf (tabi')",
		ZakatTypeFemaleCattleTwoYears: "A two-year-old female cow (musinnah)",
	}
}

func intPtr(n int) *int { return &n }

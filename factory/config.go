/*
Package factory provides JSON to Go zakat configuration conversion.

PURPOSE:
  Converts JSON configuration documents into zakat.Config values. This
  enables rule changes without code changes - the nisab thresholds, rates,
  and every livestock bracket row (including the rows published tables
  disagree on) are plain data a reviewer can edit and reload.

WHY JSON?
  - Non-developers can adjust thresholds and bracket rows
  - Version control for rule definitions
  - Database or file storage of rule sets per deployment

JSON SCHEMA:
  {
    "thresholds": {
      "cash_nisab": 5000,
      "gold_nisab_grams": 85,
      "silver_nisab_grams": 595,
      "crops_nisab_tons": 0.653,
      "camel_nisab": 5, "cattle_nisab": 30, "sheep_nisab": 40
    },
    "rates": {"standard": 0.025, "crops_irrigated": 0.05, "crops_rainfall": 0.10},
    "livestock_brackets": {
      "CAMEL": [
        {"min_count": 0, "max_count": 4, "zakat_type": "NONE"},
        {"min_count": 5, "max_count": 9, "zakat_type": "SHEEP", "zakat_count": 1},
        ...
        {"min_count": 121, "extrapolation": {
          "kind": "partition", "prefer": "fewest_animals",
          "units": [{"group_size": 40, "zakat_type": "DAUGHTER_OF_TWO_YEARS"},
                    {"group_size": 50, "zakat_type": "HIQQAH"}]}}
      ], ...
    },
    "type_descriptions": {"SHEEP": "A sheep or goat of at least one year", ...},
    "round_to": 2
  }

DEFAULTS:
  Omitted sections fall back to the corresponding DefaultConfig section,
  so a document can override only the rows it cares about. Unknown zakat
  type codes are kept verbatim; they resolve through the description
  lookup's identity fallback.

SEE ALSO:
  - zakat/config.go: The Go-side Config and DefaultConfig
  - zakat/brackets.go: How bracket rows are consumed
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amanah/zakat-engine/zakat"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of a zakat rule set.
type ConfigJSON struct {
	Thresholds        *ThresholdsJSON             `json:"thresholds,omitempty"`
	Rates             *RatesJSON                  `json:"rates,omitempty"`
	LivestockBrackets map[string][]BracketJSON    `json:"livestock_brackets,omitempty"`
	TypeDescriptions  map[string]string           `json:"type_descriptions,omitempty"`
	RoundTo           *int32                      `json:"round_to,omitempty"`
}

// ThresholdsJSON carries the nisab values.
type ThresholdsJSON struct {
	CashNisab        float64 `json:"cash_nisab"`
	GoldNisabGrams   float64 `json:"gold_nisab_grams"`
	SilverNisabGrams float64 `json:"silver_nisab_grams"`
	CropsNisabTons   float64 `json:"crops_nisab_tons"`
	CamelNisab       int     `json:"camel_nisab"`
	CattleNisab      int     `json:"cattle_nisab"`
	SheepNisab       int     `json:"sheep_nisab"`
}

// RatesJSON carries the flat rates.
type RatesJSON struct {
	Standard       float64 `json:"standard"`
	CropsIrrigated float64 `json:"crops_irrigated"`
	CropsRainfall  float64 `json:"crops_rainfall"`
}

// BracketJSON is one livestock bracket row.
type BracketJSON struct {
	MinCount      int                `json:"min_count"`
	MaxCount      *int               `json:"max_count,omitempty"`
	ZakatType     string             `json:"zakat_type,omitempty"`
	ZakatCount    int                `json:"zakat_count,omitempty"`
	Extrapolation *ExtrapolationJSON `json:"extrapolation,omitempty"`
}

// ExtrapolationJSON describes an open-ended bracket's rule.
type ExtrapolationJSON struct {
	Kind     string              `json:"kind"` // step, partition
	StepFrom int                 `json:"step_from,omitempty"`
	StepSize int                 `json:"step_size,omitempty"`
	Units    []PartitionUnitJSON `json:"units,omitempty"`
	Prefer   string              `json:"prefer,omitempty"` // fewest_animals, most_animals
}

// PartitionUnitJSON is one group size available to the partition solver.
type PartitionUnitJSON struct {
	GroupSize int    `json:"group_size"`
	ZakatType string `json:"zakat_type"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON rule sets to zakat.Config values.
type ConfigFactory struct{}

// NewConfigFactory creates a new config factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseConfig parses a JSON document into a Config. Omitted sections keep
// their defaults.
func (f *ConfigFactory) ParseConfig(jsonStr string) (*zakat.Config, error) {
	var cj ConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON converts ConfigJSON to a zakat.Config, layered over defaults.
func (f *ConfigFactory) FromJSON(cj ConfigJSON) (*zakat.Config, error) {
	cfg := zakat.DefaultConfig()

	if cj.Thresholds != nil {
		cfg.Thresholds = zakat.Thresholds{
			CashNisab:        decimal.NewFromFloat(cj.Thresholds.CashNisab),
			GoldNisabGrams:   decimal.NewFromFloat(cj.Thresholds.GoldNisabGrams),
			SilverNisabGrams: decimal.NewFromFloat(cj.Thresholds.SilverNisabGrams),
			CropsNisabTons:   decimal.NewFromFloat(cj.Thresholds.CropsNisabTons),
			CamelNisab:       cj.Thresholds.CamelNisab,
			CattleNisab:      cj.Thresholds.CattleNisab,
			SheepNisab:       cj.Thresholds.SheepNisab,
		}
	}

	if cj.Rates != nil {
		cfg.Rates = zakat.Rates{
			Standard:       decimal.NewFromFloat(cj.Rates.Standard),
			CropsIrrigated: decimal.NewFromFloat(cj.Rates.CropsIrrigated),
			CropsRainfall:  decimal.NewFromFloat(cj.Rates.CropsRainfall),
		}
	}

	for name, rows := range cj.LivestockBrackets {
		category := zakat.AssetType(name)
		switch category {
		case zakat.AssetCamel, zakat.AssetCattle, zakat.AssetSheepGoats:
		default:
			return nil, fmt.Errorf("livestock_brackets: %q is not a livestock category", name)
		}

		table := make([]zakat.Bracket, 0, len(rows))
		for _, row := range rows {
			b, err := parseBracket(row)
			if err != nil {
				return nil, fmt.Errorf("livestock_brackets.%s: %w", name, err)
			}
			table = append(table, b)
		}
		if err := checkTable(name, table); err != nil {
			return nil, err
		}
		cfg.LivestockBrackets[category] = table
	}

	for code, desc := range cj.TypeDescriptions {
		cfg.TypeDescriptions[code] = desc
	}

	if cj.RoundTo != nil {
		v := *cj.RoundTo
		cfg.RoundTo = &v
	}

	return cfg, nil
}

// ToJSON converts a Config back to its JSON representation.
func (f *ConfigFactory) ToJSON(cfg *zakat.Config) ConfigJSON {
	thresholds := ThresholdsJSON{
		CashNisab:        cfg.Thresholds.CashNisab.InexactFloat64(),
		GoldNisabGrams:   cfg.Thresholds.GoldNisabGrams.InexactFloat64(),
		SilverNisabGrams: cfg.Thresholds.SilverNisabGrams.InexactFloat64(),
		CropsNisabTons:   cfg.Thresholds.CropsNisabTons.InexactFloat64(),
		CamelNisab:       cfg.Thresholds.CamelNisab,
		CattleNisab:      cfg.Thresholds.CattleNisab,
		SheepNisab:       cfg.Thresholds.SheepNisab,
	}
	rates := RatesJSON{
		Standard:       cfg.Rates.Standard.InexactFloat64(),
		CropsIrrigated: cfg.Rates.CropsIrrigated.InexactFloat64(),
		CropsRainfall:  cfg.Rates.CropsRainfall.InexactFloat64(),
	}

	cj := ConfigJSON{
		Thresholds:        &thresholds,
		Rates:             &rates,
		LivestockBrackets: make(map[string][]BracketJSON, len(cfg.LivestockBrackets)),
		TypeDescriptions:  make(map[string]string, len(cfg.TypeDescriptions)),
	}
	if cfg.RoundTo != nil {
		v := *cfg.RoundTo
		cj.RoundTo = &v
	}

	for category, table := range cfg.LivestockBrackets {
		rows := make([]BracketJSON, 0, len(table))
		for _, b := range table {
			rows = append(rows, bracketToJSON(b))
		}
		cj.LivestockBrackets[string(category)] = rows
	}
	for code, desc := range cfg.TypeDescriptions {
		cj.TypeDescriptions[code] = desc
	}

	return cj
}

// DefaultConfigJSON returns the default rule set as a JSON document,
// a convenient starting point for deployment-specific edits.
func DefaultConfigJSON() (string, error) {
	cj := NewConfigFactory().ToJSON(zakat.DefaultConfig())
	out, err := json.MarshalIndent(cj, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseBracket(row BracketJSON) (zakat.Bracket, error) {
	b := zakat.Bracket{
		MinCount:   row.MinCount,
		ZakatType:  row.ZakatType,
		ZakatCount: row.ZakatCount,
	}
	if row.MaxCount != nil {
		v := *row.MaxCount
		b.MaxCount = &v
	}
	if row.Extrapolation == nil {
		return b, nil
	}

	ex := &zakat.Extrapolation{
		StepFrom: row.Extrapolation.StepFrom,
		StepSize: row.Extrapolation.StepSize,
	}
	switch row.Extrapolation.Kind {
	case "step":
		ex.Kind = zakat.ExtrapolationStep
		if ex.StepSize <= 0 {
			return b, fmt.Errorf("step extrapolation requires a positive step_size")
		}
	case "partition":
		ex.Kind = zakat.ExtrapolationPartition
		if len(row.Extrapolation.Units) == 0 {
			return b, fmt.Errorf("partition extrapolation requires units")
		}
		for _, u := range row.Extrapolation.Units {
			if u.GroupSize <= 0 {
				return b, fmt.Errorf("partition unit group_size must be positive")
			}
			ex.Units = append(ex.Units, zakat.PartitionUnit{
				GroupSize: u.GroupSize,
				ZakatType: u.ZakatType,
			})
		}
		switch row.Extrapolation.Prefer {
		case "most_animals":
			ex.Prefer = zakat.PreferMostAnimals
		case "", "fewest_animals":
			ex.Prefer = zakat.PreferFewestAnimals
		default:
			return b, fmt.Errorf("unknown partition preference %q", row.Extrapolation.Prefer)
		}
	default:
		return b, fmt.Errorf("unknown extrapolation kind %q", row.Extrapolation.Kind)
	}

	b.Extrapolation = ex
	return b, nil
}

// checkTable verifies a custom table still partitions [0, inf): ordered,
// contiguous, non-overlapping, with an open-ended final row.
func checkTable(name string, table []zakat.Bracket) error {
	if len(table) == 0 {
		return fmt.Errorf("livestock_brackets.%s: table is empty", name)
	}
	next := 0
	for i, b := range table {
		if b.MinCount != next {
			return fmt.Errorf("livestock_brackets.%s: bracket %d starts at %d, want %d (gap or overlap)",
				name, i, b.MinCount, next)
		}
		if b.MaxCount == nil {
			if i != len(table)-1 {
				return fmt.Errorf("livestock_brackets.%s: open-ended bracket %d is not last", name, i)
			}
			return nil
		}
		if *b.MaxCount < b.MinCount {
			return fmt.Errorf("livestock_brackets.%s: bracket %d has max below min", name, i)
		}
		next = *b.MaxCount + 1
	}
	return fmt.Errorf("livestock_brackets.%s: final bracket must be open-ended", name)
}

func bracketToJSON(b zakat.Bracket) BracketJSON {
	row := BracketJSON{
		MinCount:   b.MinCount,
		ZakatType:  b.ZakatType,
		ZakatCount: b.ZakatCount,
	}
	if b.MaxCount != nil {
		v := *b.MaxCount
		row.MaxCount = &v
	}
	if b.Extrapolation != nil {
		ex := &ExtrapolationJSON{
			Kind:     string(b.Extrapolation.Kind),
			StepFrom: b.Extrapolation.StepFrom,
			StepSize: b.Extrapolation.StepSize,
			Prefer:   string(b.Extrapolation.Prefer),
		}
		for _, u := range b.Extrapolation.Units {
			ex.Units = append(ex.Units, PartitionUnitJSON{GroupSize: u.GroupSize, ZakatType: u.ZakatType})
		}
		row.Extrapolation = ex
	}
	return row
}

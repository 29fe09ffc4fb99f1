/*
validation.go - Structural and business validation of asset records

PURPOSE:
  Validates a single asset record before it reaches the engine, and
  provides the generic amount-vs-nisab boundary check. Violations are
  accumulated, not fail-fast, so the caller can report every problem in
  one response.

RULES:
  - type must be one of the eight category codes (case-sensitive)
  - name must be present and non-empty
  - every numeric field the variant reads must be non-negative
  - crops must carry a known irrigation method

LAYERING:
  Struct-level checks (required fields) run through validator/v10; the
  variant-specific business rules accumulate on top. Both feed the same
  ValidationResult so HTTP callers see a single flat error list.
*/
package zakat

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate is shared; validator instances cache struct metadata and are
// safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationResult accumulates every violation found in one asset.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// NisabCheck is the outcome of the generic boundary test.
type NisabCheck struct {
	IsAboveNisab bool `json:"is_above_nisab"`
}

// ValidateAsset checks one asset record structurally and against the
// variant's business rules. All violations are collected.
func ValidateAsset(a Asset) ValidationResult {
	var errs []string

	if err := validate.Struct(a); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Type":
					errs = append(errs, "type is required")
				case "Name":
					errs = append(errs, "name is required and must be non-empty")
				default:
					errs = append(errs, fmt.Sprintf("%s is invalid", fe.Field()))
				}
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if a.Type != "" && !KnownAssetType(a.Type) {
		errs = append(errs, fmt.Sprintf("type %q is not a known asset category", a.Type))
	}

	errs = append(errs, validateVariant(a)...)

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateAssets validates a whole list, keyed by position for reporting.
func ValidateAssets(assets []Asset) ValidationResult {
	var errs []string
	for i, a := range assets {
		if r := ValidateAsset(a); !r.IsValid {
			for _, msg := range r.Errors {
				errs = append(errs, fmt.Sprintf("asset %d: %s", i, msg))
			}
		}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateZakatDue is the generic boundary check: the nisab amount itself
// qualifies (inclusive). Pure, no side effects; usable for any category
// whose nisab is a plain value.
func ValidateZakatDue(amount, nisab decimal.Decimal) NisabCheck {
	return NisabCheck{IsAboveNisab: amount.GreaterThanOrEqual(nisab)}
}

func validateVariant(a Asset) []string {
	var errs []string

	nonNegative := func(field string, v decimal.Decimal) {
		if v.IsNegative() {
			errs = append(errs, fmt.Sprintf("%s must be non-negative", field))
		}
	}

	switch a.Type {
	case AssetCash:
		nonNegative("amount", a.Amount)
	case AssetGold, AssetSilver:
		nonNegative("quantity_grams", a.QuantityGrams)
		nonNegative("price_per_gram", a.PricePerGram)
	case AssetCamel, AssetCattle, AssetSheepGoats:
		if a.Count < 0 {
			errs = append(errs, "count must be a non-negative integer")
		}
	case AssetCrops:
		nonNegative("tons", a.Tons)
		nonNegative("price_per_ton", a.PricePerTon)
		switch a.IrrigationMethod {
		case IrrigationIrrigated, IrrigationRainfall:
		default:
			errs = append(errs, fmt.Sprintf("irrigation_method %q is not recognized (use %q or %q)",
				a.IrrigationMethod, IrrigationIrrigated, IrrigationRainfall))
		}
	case AssetBusinessInventory:
		nonNegative("value", a.Value)
	}

	return errs
}

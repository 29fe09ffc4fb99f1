/*
errors.go - Centralized error types for the zakat engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The controller layer maps these onto HTTP status codes.

ERROR CATEGORIES:
  1. Input errors - unknown category code, unknown irrigation method
  2. Validation errors - accumulated structural/business violations

Calculation functions never fail for well-formed input: zero amounts and
boundary counts yield a normal "no obligation due" result. Errors exist only
for input that validation would have rejected.

SEE ALSO:
  - validation.go: Produces ValidationResult rather than errors
  - engine.go: Returns these from the aggregator as a defensive boundary
*/
package zakat

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownAssetType is returned when an asset's type code is not one
	// of the eight known categories. Matching is case-sensitive.
	ErrUnknownAssetType = errors.New("unknown asset type")

	// ErrUnknownIrrigationMethod is returned for crops with an irrigation
	// method other than "irrigated" or "rainfall". The rate difference is
	// material, so no default is applied.
	ErrUnknownIrrigationMethod = errors.New("unknown irrigation method")

	// ErrInvalidAsset is returned when an asset fails validation.
	ErrInvalidAsset = errors.New("invalid asset")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAssetError carries the accumulated validation messages for one
// asset. Callers can report all violations at once.
type InvalidAssetError struct {
	Name   string
	Errors []string
}

func (e *InvalidAssetError) Error() string {
	return fmt.Sprintf("invalid asset %q: %s", e.Name, strings.Join(e.Errors, "; "))
}

func (e *InvalidAssetError) Unwrap() error {
	return ErrInvalidAsset
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownAssetType) ||
		errors.Is(err, ErrUnknownIrrigationMethod) ||
		errors.Is(err, ErrInvalidAsset)
}

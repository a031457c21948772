package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidParameter, "%s must be finite, got %g", name, v)
	}
	return nil
}

// ValidatePositive requires v > 0.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidParameter, "%s must be > 0, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative requires v >= 0.
func ValidateNonNegative(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return New(ErrCodeInvalidParameter, "%s must be >= 0, got %g", name, v)
	}
	return nil
}

// ValidateRange requires lo <= v <= hi.
func ValidateRange(name string, v, lo, hi float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return New(ErrCodeInvalidParameter, "%s must be in [%g, %g], got %g", name, lo, hi, v)
	}
	return nil
}

// ValidateMinInt requires v >= lo.
func ValidateMinInt(name string, v, lo int) error {
	if v < lo {
		return New(ErrCodeInvalidParameter, "%s must be >= %d, got %d", name, lo, v)
	}
	return nil
}

// ValidateAtLeast requires v >= lo, used for radius-versus-minimum checks.
func ValidateAtLeast(name string, v, lo float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < lo {
		return New(ErrCodeInvalidParameter, "%s %g is below the minimum %g", name, v, lo)
	}
	return nil
}

// nameRegex matches component, port and layer names.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.:+-]*$`)

// ValidateName validates a human-readable identifier (component, port or layer name).
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters or whitespace
//   - No path separators
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidParameter, "%s name cannot be empty", kind)
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidParameter, "%s name too long (max 256 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidParameter, "%s name %q contains whitespace or control characters", kind, name)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidParameter, "%s name %q cannot contain path separators", kind, name)
	}

	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidParameter, "invalid %s name: %q", kind, name)
	}

	return nil
}

// First returns the first non-nil error, so configs can validate fields in declaration order.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

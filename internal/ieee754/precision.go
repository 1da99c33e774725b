// Package ieee754 implements bit-exact encoding, decoding and arithmetic
// for the IEEE 754 binary32 and binary64 formats. Every result is derived
// by direct manipulation of the sign, exponent and mantissa fields; the
// host float types are never consulted to produce a value, only to
// cross-check one.
package ieee754

import (
	"fmt"
	"strings"
)

// Precision selects one of the two supported binary formats.
type Precision string

const (
	// Single is IEEE 754 binary32: 1 sign bit, 8 exponent bits, 23 mantissa bits.
	Single Precision = "single"
	// Double is IEEE 754 binary64: 1 sign bit, 11 exponent bits, 52 mantissa bits.
	Double Precision = "double"
)

// ParsePrecision maps a precision name to a Precision. Besides the
// canonical names it accepts the usual width aliases.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "float32", "fp32", "32", "binary32":
		return Single, nil
	case "double", "float64", "fp64", "64", "binary64":
		return Double, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPrecision, s)
	}
}

// IsValid reports whether p is a recognized precision.
func (p Precision) IsValid() bool {
	return p == Single || p == Double
}

func (p Precision) String() string { return string(p) }

// TotalBits returns the width of the packed word.
func (p Precision) TotalBits() int {
	if p == Double {
		return 64
	}
	return 32
}

// ExponentBits returns the width of the stored exponent field.
func (p Precision) ExponentBits() int {
	if p == Double {
		return 11
	}
	return 8
}

// MantissaBits returns the width of the stored mantissa field, excluding
// the implicit leading bit.
func (p Precision) MantissaBits() int {
	if p == Double {
		return 52
	}
	return 23
}

// Bias returns the exponent bias: 127 for single, 1023 for double.
func (p Precision) Bias() int {
	return 1<<(p.ExponentBits()-1) - 1
}

// maxExponent is the all-ones stored exponent field, reserved for
// infinities and NaNs.
func (p Precision) maxExponent() uint64 {
	return 1<<uint(p.ExponentBits()) - 1
}

// minExponent is the smallest unbiased exponent of a normal number, and
// the fixed effective exponent of every subnormal.
func (p Precision) minExponent() int {
	return 1 - p.Bias()
}

func (p Precision) mantissaMask() uint64 {
	return 1<<uint(p.MantissaBits()) - 1
}

// quietBit is the mantissa bit that separates quiet NaNs from signaling
// ones.
func (p Precision) quietBit() uint64 {
	return 1 << uint(p.MantissaBits()-1)
}

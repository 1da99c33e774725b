package ieee754

import (
	"math"
	"math/big"
)

// DecimalKind tags the three shapes a decimal value can take.
type DecimalKind int

const (
	KindFinite DecimalKind = iota
	KindInfinite
	KindNaN
)

// Decimal is the exact value domain on the decimal side of a conversion:
// a sign plus either a non-negative rational magnitude or a special tag.
// Keeping the sign out of the magnitude lets negative zero survive the
// round trip.
type Decimal struct {
	Kind DecimalKind
	Neg  bool
	Mag  *big.Rat // nil unless Kind is KindFinite
}

// NewDecimal returns a finite decimal carrying the value of r. The sign
// is split off and r itself is not retained.
func NewDecimal(r *big.Rat) Decimal {
	return Decimal{Kind: KindFinite, Neg: r.Sign() < 0, Mag: new(big.Rat).Abs(r)}
}

// ZeroDecimal returns a finite zero of the given sign.
func ZeroDecimal(neg bool) Decimal {
	return Decimal{Kind: KindFinite, Neg: neg, Mag: new(big.Rat)}
}

// InfDecimal returns an infinity of the given sign.
func InfDecimal(neg bool) Decimal {
	return Decimal{Kind: KindInfinite, Neg: neg}
}

// NaNDecimal returns the NaN tag. NaN decimals carry no sign or payload.
func NaNDecimal() Decimal {
	return Decimal{Kind: KindNaN}
}

// DecimalFromFloat converts a host float to its exact decimal value. It
// exists for shells and cross-checks; core arithmetic never feeds host
// floats back into itself.
func DecimalFromFloat(f float64) Decimal {
	switch {
	case math.IsNaN(f):
		return NaNDecimal()
	case math.IsInf(f, 0):
		return InfDecimal(math.Signbit(f))
	case f == 0:
		return ZeroDecimal(math.Signbit(f))
	}
	return NewDecimal(new(big.Rat).SetFloat64(f))
}

// IsZero reports whether the decimal is a finite zero of either sign.
func (d Decimal) IsZero() bool {
	return d.Kind == KindFinite && d.Mag.Sign() == 0
}

// Float64 returns the nearest host double. Shells use it to render and to
// cross-check against the FPU; it plays no part in producing core results.
func (d Decimal) Float64() float64 {
	switch d.Kind {
	case KindNaN:
		return math.NaN()
	case KindInfinite:
		if d.Neg {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, _ := d.Signed().Float64()
	if f == 0 && d.Neg {
		return math.Copysign(0, -1)
	}
	return f
}

// Float32 is the single precision sibling of Float64.
func (d Decimal) Float32() float32 {
	switch d.Kind {
	case KindNaN:
		return float32(math.NaN())
	case KindInfinite:
		if d.Neg {
			return float32(math.Inf(-1))
		}
		return float32(math.Inf(1))
	}
	f, _ := d.Signed().Float32()
	if f == 0 && d.Neg {
		return float32(math.Copysign(0, -1))
	}
	return f
}

// Signed returns the magnitude with the sign applied. It is only
// meaningful for finite decimals.
func (d Decimal) Signed() *big.Rat {
	r := new(big.Rat).Set(d.Mag)
	if d.Neg {
		r.Neg(r)
	}
	return r
}

package ieee754

import "math/big"

// Decode reconstructs the exact decimal value a triple represents. The
// conversion is always exact: every finite float is a dyadic rational.
// The trace records the classification, the reconstructed significand and
// the effective exponent.
func Decode(t Triple, p Precision) (Decimal, *Trace) {
	tr := NewTrace()
	cls := Classify(t, p)
	tr.Append("class", cls.String())
	neg := t.Sign == 1
	mb := p.MantissaBits()

	switch cls {
	case PositiveZero, NegativeZero:
		tr.Append("value", "zero, sign taken from the sign bit")
		return ZeroDecimal(neg), tr
	case PositiveInfinity, NegativeInfinity:
		return InfDecimal(neg), tr
	case QuietNaN, SignalingNaN:
		tr.Appendf("payload", "%#x", t.Mantissa)
		return NaNDecimal(), tr
	}

	var sig uint64
	var exp int
	if cls == SubnormalNumber {
		sig = t.Mantissa
		exp = p.minExponent()
		tr.Appendf("significand", "0.%0*b (no implicit bit)", mb, t.Mantissa)
		tr.Appendf("exponent", "pinned at %d for subnormals", exp)
	} else {
		sig = t.Mantissa | 1<<uint(mb)
		exp = int(t.Exponent) - p.Bias()
		tr.Appendf("significand", "1.%0*b", mb, t.Mantissa)
		tr.Appendf("exponent", "%d - %d = %d", t.Exponent, p.Bias(), exp)
	}

	tr.Appendf("formula", "%d/2^%d x 2^%d", sig, mb, exp)
	return Decimal{Kind: KindFinite, Neg: neg, Mag: ratScaled(sig, exp-mb)}, tr
}

// ratScaled returns sig x 2^shift as an exact rational.
func ratScaled(sig uint64, shift int) *big.Rat {
	n := new(big.Int).SetUint64(sig)
	if shift >= 0 {
		return new(big.Rat).SetInt(n.Lsh(n, uint(shift)))
	}
	return new(big.Rat).SetFrac(n, new(big.Int).Lsh(big.NewInt(1), uint(-shift)))
}

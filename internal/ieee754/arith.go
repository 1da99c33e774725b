package ieee754

import (
	"fmt"
	"math/bits"
)

// grsBits is the number of low-order guard, round and sticky bits carried
// below the mantissa through alignment and normalization.
const grsBits = 3

// Add computes a + b on the stored fields under round-to-nearest-even.
// It never fails: every special combination resolves to a defined value.
func Add(a, b Triple, p Precision) (Triple, *Trace) {
	tr := NewTrace()
	ca, cb := Classify(a, p), Classify(b, p)
	tr.Appendf("operands", "a: %s, b: %s", describe(a, p), describe(b, p))

	if r, ok := addSpecial(a, b, ca, cb, p, tr); ok {
		return r, tr
	}

	expA, sigA := significand(a, p)
	expB, sigB := significand(b, p)
	signA, signB := a.Sign, b.Sign

	// The larger magnitude leads; its sign decides the result's sign.
	if expA < expB || (expA == expB && sigA < sigB) {
		expA, expB = expB, expA
		sigA, sigB = sigB, sigA
		signA, signB = signB, signA
	}

	sigA <<= grsBits
	sigB <<= grsBits
	if d := expA - expB; d > 0 {
		tr.Appendf("align", "shift the smaller significand right by %d, sticky catches the lost bits", d)
		sigB = shiftRightJam(sigB, uint(d))
	}

	exp := expA
	var sig uint64
	if signA == signB {
		sig = sigA + sigB
		tr.Appendf("magnitudes", "add %#x + %#x = %#x", sigA, sigB, sig)
		if sig >= 1<<uint(p.MantissaBits()+1+grsBits) {
			sig = shiftRightJam(sig, 1)
			exp++
			tr.Appendf("normalize", "sum carried, exponent bumped to %d", exp)
		}
	} else {
		sig = sigA - sigB
		tr.Appendf("magnitudes", "subtract %#x - %#x = %#x", sigA, sigB, sig)
		if sig == 0 {
			tr.Append("cancel", "magnitudes cancel exactly, result is +0")
			return Triple{}, tr
		}
		top := uint64(1) << uint(p.MantissaBits()+grsBits)
		shifted := 0
		for sig < top && exp > p.minExponent() {
			sig <<= 1
			exp--
			shifted++
		}
		if shifted > 0 {
			tr.Appendf("normalize", "shift left %d to restore the leading bit, exponent %d", shifted, exp)
		}
	}

	return roundPacked(signA, sig, exp, p, tr), tr
}

// Mul computes a * b on the stored fields under round-to-nearest-even.
func Mul(a, b Triple, p Precision) (Triple, *Trace) {
	tr := NewTrace()
	ca, cb := Classify(a, p), Classify(b, p)
	tr.Appendf("operands", "a: %s, b: %s", describe(a, p), describe(b, p))
	sign := a.Sign ^ b.Sign

	if r, ok := mulSpecial(a, b, ca, cb, sign, p, tr); ok {
		return r, tr
	}

	expA, sigA := significand(a, p)
	expB, sigB := significand(b, p)
	tr.Appendf("sign", "%d xor %d = %d", a.Sign, b.Sign, sign)
	tr.Appendf("exponent", "%d + %d = %d", expA, expB, expA+expB)

	hi, lo := bits.Mul64(sigA, sigB)
	tr.Appendf("product", "%#x x %#x = %s", sigA, sigB, hex128(hi, lo))

	// Normalize the product into a window of mantissa+1 significand bits
	// plus the rounding tail.
	window := p.MantissaBits() + 1 + grsBits
	width := 128 - leadingZeros128(hi, lo)
	shift := width - window
	var sig uint64
	if shift > 0 {
		sig = shiftRightJam128(hi, lo, uint(shift))
	} else {
		sig = lo << uint(-shift)
	}
	exp := expA + expB - p.MantissaBits() + grsBits + shift
	tr.Appendf("normalize", "product is %d bits wide, shift by %d, exponent %d", width, shift, exp)

	if exp < p.minExponent() {
		tr.Appendf("underflow", "exponent %d is below the minimum %d, shifting into the subnormal range", exp, p.minExponent())
		sig = shiftRightJam(sig, uint(p.minExponent()-exp))
		exp = p.minExponent()
	}

	return roundPacked(sign, sig, exp, p, tr), tr
}

func addSpecial(a, b Triple, ca, cb Class, p Precision, tr *Trace) (Triple, bool) {
	switch {
	case ca.IsNaN():
		tr.Append("special", "nan operand propagates, quieted")
		return quieted(a, p), true
	case cb.IsNaN():
		tr.Append("special", "nan operand propagates, quieted")
		return quieted(b, p), true
	case ca.IsInfinity():
		if cb.IsInfinity() && a.Sign != b.Sign {
			tr.Append("special", "opposite infinities, result is nan")
			return canonicalNaN(p), true
		}
		tr.Append("special", "infinity absorbs the finite addend")
		return a, true
	case cb.IsInfinity():
		tr.Append("special", "infinity absorbs the finite addend")
		return b, true
	case ca.IsZero() && cb.IsZero():
		if a.Sign == b.Sign {
			tr.Append("special", "zeros of one sign keep it")
			return Triple{Sign: a.Sign}, true
		}
		tr.Append("special", "opposite zeros sum to +0")
		return Triple{}, true
	case ca.IsZero():
		tr.Append("special", "zero addend, the other operand passes through")
		return b, true
	case cb.IsZero():
		tr.Append("special", "zero addend, the other operand passes through")
		return a, true
	}
	return Triple{}, false
}

func mulSpecial(a, b Triple, ca, cb Class, sign uint8, p Precision, tr *Trace) (Triple, bool) {
	switch {
	case ca.IsNaN():
		tr.Append("special", "nan operand propagates, quieted")
		return quieted(a, p), true
	case cb.IsNaN():
		tr.Append("special", "nan operand propagates, quieted")
		return quieted(b, p), true
	case ca.IsInfinity():
		if cb.IsZero() {
			tr.Append("special", "infinity times zero, result is nan")
			return canonicalNaN(p), true
		}
		tr.Append("special", "infinity times a nonzero value, signed infinity")
		return Triple{Sign: sign, Exponent: p.maxExponent()}, true
	case cb.IsInfinity():
		if ca.IsZero() {
			tr.Append("special", "infinity times zero, result is nan")
			return canonicalNaN(p), true
		}
		tr.Append("special", "infinity times a nonzero value, signed infinity")
		return Triple{Sign: sign, Exponent: p.maxExponent()}, true
	case ca.IsZero() || cb.IsZero():
		tr.Append("special", "zero factor, signed zero by xor")
		return Triple{Sign: sign}, true
	}
	return Triple{}, false
}

// roundPacked rounds a significand carrying grsBits tail bits, valued
// sig x 2^(exp-mantissa-grsBits), and assembles the final fields. The
// caller guarantees exp is at least the minimum exponent and that a
// below-window significand only occurs at the minimum.
func roundPacked(sign uint8, sig uint64, exp int, p Precision, tr *Trace) Triple {
	mb := uint(p.MantissaBits())
	kept := sig >> grsBits
	g := sig >> 2 & 1
	r := sig >> 1 & 1
	s := sig & 1
	if g|r|s == 0 {
		tr.Append("round", "exact, nothing discarded")
	} else if g == 1 && (r == 1 || s == 1 || kept&1 == 1) {
		tr.Appendf("round", "guard=%d round=%d sticky=%d lsb=%d: round up", g, r, s, kept&1)
		kept++
		if kept == 1<<(mb+1) {
			kept >>= 1
			exp++
			tr.Appendf("carry", "rounded mantissa overflowed, exponent bumped to %d", exp)
		}
	} else {
		tr.Appendf("round", "guard=%d round=%d sticky=%d lsb=%d: round down", g, r, s, kept&1)
	}

	switch {
	case kept == 0:
		tr.Append("underflow", "rounded to zero")
		return Triple{Sign: sign}
	case kept < 1<<mb:
		tr.Append("subnormal", "stored exponent 0, no implicit bit")
		return Triple{Sign: sign, Mantissa: kept}
	case exp+p.Bias() >= int(p.maxExponent()):
		tr.Append("overflow", "exponent beyond the finite range, result is infinity")
		return Triple{Sign: sign, Exponent: p.maxExponent()}
	}
	t := Triple{Sign: sign, Exponent: uint64(exp + p.Bias()), Mantissa: kept & p.mantissaMask()}
	tr.Appendf("fields", "exponent=%0*b mantissa=%0*b", p.ExponentBits(), t.Exponent, int(mb), t.Mantissa)
	return t
}

// significand restores the implicit bit and the true exponent of a
// finite operand. Subnormals keep their leading zeros and the fixed
// minimum exponent.
func significand(t Triple, p Precision) (int, uint64) {
	if t.Exponent == 0 {
		return p.minExponent(), t.Mantissa
	}
	return int(t.Exponent) - p.Bias(), t.Mantissa | 1<<uint(p.MantissaBits())
}

// quieted returns the NaN operand with its quiet bit forced, payload
// preserved.
func quieted(t Triple, p Precision) Triple {
	t.Mantissa |= p.quietBit()
	return t
}

// canonicalNaN is the quiet NaN produced by invalid operations: sign
// zero, payload just the quiet bit.
func canonicalNaN(p Precision) Triple {
	return Triple{Exponent: p.maxExponent(), Mantissa: p.quietBit()}
}

// shiftRightJam shifts v right by n, ORing every lost bit into the
// result's low bit so the sticky information survives.
func shiftRightJam(v uint64, n uint) uint64 {
	if n == 0 {
		return v
	}
	if n >= 64 {
		if v != 0 {
			return 1
		}
		return 0
	}
	out := v >> n
	if v&(1<<n-1) != 0 {
		out |= 1
	}
	return out
}

// shiftRightJam128 is shiftRightJam for a 128-bit value whose shifted
// result fits 64 bits.
func shiftRightJam128(hi, lo uint64, n uint) uint64 {
	var out, lost uint64
	switch {
	case n == 0:
		out = lo
	case n < 64:
		out = hi<<(64-n) | lo>>n
		lost = lo & (1<<n - 1)
	case n == 64:
		out = hi
		lost = lo
	case n < 128:
		out = hi >> (n - 64)
		lost = hi&(1<<(n-64)-1) | lo
	default:
		lost = hi | lo
	}
	if lost != 0 {
		out |= 1
	}
	return out
}

func leadingZeros128(hi, lo uint64) int {
	if hi != 0 {
		return bits.LeadingZeros64(hi)
	}
	return 64 + bits.LeadingZeros64(lo)
}

func hex128(hi, lo uint64) string {
	if hi == 0 {
		return fmt.Sprintf("%#x", lo)
	}
	return fmt.Sprintf("%#x%016x", hi, lo)
}

func describe(t Triple, p Precision) string {
	return fmt.Sprintf("sign=%d exponent=%#x mantissa=%#x (%s)", t.Sign, t.Exponent, t.Mantissa, Classify(t, p))
}

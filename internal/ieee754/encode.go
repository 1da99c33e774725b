package ieee754

import "math/big"

// Encode converts a decimal value into the nearest stored-field triple
// under round-to-nearest-even, together with a trace of every decision
// taken. Encoding never fails: magnitudes beyond the finite range become
// signed infinities and magnitudes below half the smallest subnormal
// become signed zeros.
func Encode(d Decimal, p Precision) (Triple, *Trace) {
	tr := NewTrace()
	sign := uint8(0)
	if d.Neg {
		sign = 1
	}

	switch d.Kind {
	case KindNaN:
		tr.Append("class", "nan: exponent all ones, quiet bit set")
		return Triple{Exponent: p.maxExponent(), Mantissa: p.quietBit()}, tr
	case KindInfinite:
		tr.Append("class", "infinity: exponent all ones, mantissa zero")
		tr.Appendf("sign", "%d", sign)
		return Triple{Sign: sign, Exponent: p.maxExponent()}, tr
	}

	if d.Mag.Sign() == 0 {
		tr.Append("class", "zero: exponent and mantissa zero, sign preserved")
		tr.Appendf("sign", "%d", sign)
		return Triple{Sign: sign}, tr
	}

	if d.Neg {
		tr.Append("sign", "1 (negative)")
	} else {
		tr.Append("sign", "0 (positive)")
	}

	mb := p.MantissaBits()
	e := floorLog2(d.Mag)
	tr.Appendf("normalize", "magnitude is 1.f x 2^%d", e)

	// The quantum is the weight of the last kept mantissa bit. Normal
	// values keep mb bits below the leading one; subnormals are pinned to
	// the fixed minimum exponent instead.
	var q int
	subnormal := e < p.minExponent()
	if subnormal {
		q = p.minExponent() - mb
		tr.Appendf("subnormal", "exponent %d is below the minimum %d, gradual underflow with stored exponent 0", e, p.minExponent())
	} else {
		q = e - mb
	}

	kept, pre, guard, sticky := roundedScale(d.Mag, q)
	if subnormal {
		tr.Appendf("mantissa", "raw field bits %0*b", mb, pre)
	} else {
		tr.Appendf("mantissa", "raw field bits %0*b", mb, pre&p.mantissaMask())
	}
	appendRounding(tr, guard, sticky, pre, kept)

	if subnormal {
		switch {
		case kept == 0:
			tr.Append("underflow", "rounded to zero")
			return Triple{Sign: sign}, tr
		case kept == 1<<uint(mb):
			// Rounding carried into the implicit position: the result is
			// the smallest normal number.
			tr.Append("carry", "rounding carried into the implicit bit, smallest normal")
			return Triple{Sign: sign, Exponent: 1}, tr
		}
		t := Triple{Sign: sign, Mantissa: kept}
		tr.Appendf("fields", "exponent=%0*b mantissa=%0*b", p.ExponentBits(), 0, mb, t.Mantissa)
		return t, tr
	}

	if kept == 1<<uint(mb+1) {
		kept >>= 1
		e++
		tr.Appendf("carry", "mantissa overflowed after rounding, exponent bumped to %d", e)
	}
	biased := e + p.Bias()
	tr.Appendf("exponent", "%d + %d = %d (biased)", e, p.Bias(), biased)
	if biased >= int(p.maxExponent()) {
		tr.Append("overflow", "biased exponent reaches the all-ones field, result is infinity")
		return Triple{Sign: sign, Exponent: p.maxExponent()}, tr
	}
	t := Triple{Sign: sign, Exponent: uint64(biased), Mantissa: kept & p.mantissaMask()}
	tr.Appendf("fields", "exponent=%0*b mantissa=%0*b", p.ExponentBits(), t.Exponent, mb, t.Mantissa)
	return t, tr
}

// floorLog2 returns floor(log2(r)) for a positive rational. The bit
// length difference of numerator and denominator lands within one of the
// answer; two comparisons settle it.
func floorLog2(r *big.Rat) int {
	e := r.Num().BitLen() - r.Denom().BitLen()
	if cmpPow2(r, e) < 0 {
		e--
	} else if cmpPow2(r, e+1) >= 0 {
		e++
	}
	return e
}

// cmpPow2 compares a positive rational against 2^e.
func cmpPow2(r *big.Rat, e int) int {
	num := new(big.Int).Set(r.Num())
	den := new(big.Int).Set(r.Denom())
	if e >= 0 {
		den.Lsh(den, uint(e))
	} else {
		num.Lsh(num, uint(-e))
	}
	return num.Cmp(den)
}

// roundedScale computes round-to-nearest-even of mag/2^q as an integer.
// It returns the rounded value, the pre-rounding floor, and the guard and
// sticky summary of the discarded fraction: guard set when the fraction
// is at least one half, sticky when any bit beyond the guard position is
// set. Ties go to the even candidate.
func roundedScale(mag *big.Rat, q int) (kept, pre uint64, guard, sticky bool) {
	num := new(big.Int).Set(mag.Num())
	den := new(big.Int).Set(mag.Denom())
	if q >= 0 {
		den.Lsh(den, uint(q))
	} else {
		num.Lsh(num, uint(-q))
	}
	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	pre = quo.Uint64()
	kept = pre
	if rem.Sign() == 0 {
		return kept, pre, false, false
	}
	switch rem.Lsh(rem, 1).Cmp(den) {
	case 1:
		guard, sticky = true, true
	case 0:
		guard = true
	default:
		sticky = true
	}
	if guard && (sticky || kept&1 == 1) {
		kept++
	}
	return kept, pre, guard, sticky
}

func appendRounding(tr *Trace, guard, sticky bool, pre, post uint64) {
	switch {
	case post != pre:
		tr.Appendf("round", "guard=%d sticky=%d lsb=%d: round up", b2i(guard), b2i(sticky), pre&1)
	case guard || sticky:
		tr.Appendf("round", "guard=%d sticky=%d lsb=%d: round down", b2i(guard), b2i(sticky), pre&1)
	default:
		tr.Append("round", "exact, nothing discarded")
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

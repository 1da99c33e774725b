package ieee754

import "fmt"

// Triple holds the three stored fields of an IEEE 754 value. Exponent is
// the biased field exactly as stored, and Mantissa carries only the
// fractional bits; the implicit leading bit is never stored.
type Triple struct {
	Sign     uint8  `json:"sign"`
	Exponent uint64 `json:"exponent"`
	Mantissa uint64 `json:"mantissa"`
}

// Pack assembles the fields into a word of the precision's width: sign in
// the top bit, exponent below it, mantissa in the low bits. A field that
// does not fit its width fails with ErrFieldOverflow.
func Pack(t Triple, p Precision) (uint64, error) {
	if t.Sign > 1 {
		return 0, fmt.Errorf("%w: sign %d does not fit 1 bit", ErrFieldOverflow, t.Sign)
	}
	if t.Exponent > p.maxExponent() {
		return 0, fmt.Errorf("%w: exponent %#x does not fit %d bits", ErrFieldOverflow, t.Exponent, p.ExponentBits())
	}
	if t.Mantissa > p.mantissaMask() {
		return 0, fmt.Errorf("%w: mantissa %#x does not fit %d bits", ErrFieldOverflow, t.Mantissa, p.MantissaBits())
	}
	mb := uint(p.MantissaBits())
	return uint64(t.Sign)<<uint(p.TotalBits()-1) | t.Exponent<<mb | t.Mantissa, nil
}

// Unpack splits a word into its stored fields. It is a pure bit
// extraction and succeeds for every word of the precision's width.
func Unpack(word uint64, p Precision) Triple {
	mb := uint(p.MantissaBits())
	return Triple{
		Sign:     uint8(word >> uint(p.TotalBits()-1) & 1),
		Exponent: word >> mb & p.maxExponent(),
		Mantissa: word & p.mantissaMask(),
	}
}

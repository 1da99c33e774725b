package literal

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/23skdu/floatlab/internal/ieee754"
)

// literalPattern accepts standard numeric literals: optional sign, digits
// with an optional fraction or a bare fraction, optional scientific
// exponent.
var literalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

const (
	// maxLiteralLen bounds parser work on hostile input; no literal this
	// long denotes a value a shorter one could not.
	maxLiteralLen = 4096

	// expClamp bounds the effective decimal exponent. Ten to this power
	// is far outside double range in either direction, so clamping to
	// infinity or zero preserves every encoded result.
	expClamp = 9999
)

// Parse converts a decimal literal into the exact value it denotes.
// The spellings inf, infinity and nan are accepted in any case with an
// optional sign; everything else must be a standard numeric literal.
func Parse(raw string) (ieee754.Decimal, error) {
	s := Normalize(raw)
	if s == "" {
		return ieee754.Decimal{}, fmt.Errorf("%w: empty input", ErrInvalidLiteral)
	}
	if len(s) > maxLiteralLen {
		return ieee754.Decimal{}, fmt.Errorf("%w: literal longer than %d characters", ErrInvalidLiteral, maxLiteralLen)
	}

	neg := false
	body := s
	switch s[0] {
	case '+':
		body = s[1:]
	case '-':
		neg = true
		body = s[1:]
	}
	switch strings.ToLower(body) {
	case "inf", "infinity":
		return ieee754.InfDecimal(neg), nil
	case "nan":
		return ieee754.NaNDecimal(), nil
	}

	if !literalPattern.MatchString(s) {
		return ieee754.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidLiteral, raw)
	}

	mantissa := body
	exp := 0
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		e, err := strconv.Atoi(mantissa[i+1:])
		if err != nil {
			// The pattern only admits digit runs here, so a failure means
			// the exponent itself overflows int.
			return ieee754.Decimal{}, fmt.Errorf("%w: exponent of %q is out of range", ErrInvalidLiteral, raw)
		}
		exp = e
		mantissa = mantissa[:i]
	}
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		exp -= len(mantissa) - i - 1
		mantissa = mantissa[:i] + mantissa[i+1:]
	}

	n, ok := new(big.Int).SetString(mantissa, 10)
	if !ok {
		return ieee754.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidLiteral, raw)
	}
	if n.Sign() == 0 {
		return ieee754.ZeroDecimal(neg), nil
	}
	if exp > expClamp {
		return ieee754.InfDecimal(neg), nil
	}
	if exp+len(mantissa) < -expClamp {
		return ieee754.ZeroDecimal(neg), nil
	}

	r := new(big.Rat).SetInt(n)
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(exp))), nil)
	if exp >= 0 {
		r.Mul(r, new(big.Rat).SetInt(pow))
	} else {
		r.Quo(r, new(big.Rat).SetInt(pow))
	}
	if neg {
		r.Neg(r)
	}
	return ieee754.NewDecimal(r), nil
}

// Format renders a decimal as the shortest string that reads back to the
// same value at the given precision. Decoded values are exact dyadic
// rationals, so the host conversion underneath is lossless.
func Format(d ieee754.Decimal, p ieee754.Precision) string {
	if p == ieee754.Single {
		return strconv.FormatFloat(float64(d.Float32()), 'g', -1, 32)
	}
	return strconv.FormatFloat(d.Float64(), 'g', -1, 64)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

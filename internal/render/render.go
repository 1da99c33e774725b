// Package render turns core results into displayable text: field spans
// for highlighting, grouped bit strings, and step-by-step trace listings.
package render

import (
	"fmt"
	"strings"

	"github.com/23skdu/floatlab/internal/ieee754"
)

// Span is one field of a bit string with its offsets, half-open.
type Span struct {
	Field string `json:"field"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Bits  string `json:"bits"`
}

// Segment splits a full-width bit string into its sign, exponent and
// mantissa spans. The input is validated the same way the parser
// validates it, so a wrong width or a stray character fails with
// ErrInvalidBitString.
func Segment(bits string, p ieee754.Precision) ([]Span, error) {
	if _, err := ieee754.ParseBits(bits, p); err != nil {
		return nil, err
	}
	eb := p.ExponentBits()
	return []Span{
		{Field: "sign", Start: 0, End: 1, Bits: bits[:1]},
		{Field: "exponent", Start: 1, End: 1 + eb, Bits: bits[1 : 1+eb]},
		{Field: "mantissa", Start: 1 + eb, End: len(bits), Bits: bits[1+eb:]},
	}, nil
}

// Group inserts a space after every n bits, counted from the left. A
// non-positive n returns the string unchanged.
func Group(bits string, n int) string {
	if n <= 0 || len(bits) <= n {
		return bits
	}
	var b strings.Builder
	b.Grow(len(bits) + len(bits)/n)
	for i := 0; i < len(bits); i += n {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + n
		if end > len(bits) {
			end = len(bits)
		}
		b.WriteString(bits[i:end])
	}
	return b.String()
}

// TraceText renders trace steps as numbered lines, one step each.
func TraceText(steps []ieee754.Step) string {
	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "%2d. %-10s %s\n", i+1, s.Label, s.Value)
	}
	return b.String()
}

const (
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// Colorize renders spans with the calculator's traditional colors: sign
// red, exponent blue, mantissa green. Fields it does not recognize pass
// through uncolored.
func Colorize(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Field {
		case "sign":
			b.WriteString(ansiRed)
		case "exponent":
			b.WriteString(ansiBlue)
		case "mantissa":
			b.WriteString(ansiGreen)
		default:
			b.WriteString(s.Bits)
			continue
		}
		b.WriteString(s.Bits)
		b.WriteString(ansiReset)
	}
	return b.String()
}

// ColorizeSpaced is Colorize with a space between fields, the way the
// interactive shell prints a word.
func ColorizeSpaced(spans []Span) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		parts = append(parts, Colorize([]Span{s}))
	}
	return strings.Join(parts, " ")
}

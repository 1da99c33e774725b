// Package literal converts decimal text to and from the converter's exact
// value domain. Parsing is exact: "0.1" becomes the rational 1/10, never a
// host float.
package literal

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minusSign is the Unicode minus U+2212 that calculators and typeset
// sources use where the parser expects ASCII '-'.
const minusSign = '−'

// Normalize folds raw input into parseable ASCII shape: compatibility
// normalization (fullwidth digits, thin spaces), whitespace stripped,
// Unicode minus mapped to '-'. The transform chain is built per call; the
// chained transformer carries buffers and must not be shared.
func Normalize(s string) string {
	t := transform.Chain(
		norm.NFKC,
		runes.Remove(runes.In(unicode.White_Space)),
		runes.Map(func(r rune) rune {
			if r == minusSign {
				return '-'
			}
			return r
		}),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

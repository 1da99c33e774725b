package ieee754

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBits converts a textual binary word into its integer form. The
// string must be exactly the precision's width and contain only '0' and
// '1'; anything else fails with ErrInvalidBitString and no partial
// result.
func ParseBits(s string, p Precision) (uint64, error) {
	if len(s) != p.TotalBits() {
		return 0, fmt.Errorf("%w: got %d characters, want %d", ErrInvalidBitString, len(s), p.TotalBits())
	}
	var word uint64
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			word <<= 1
		case '1':
			word = word<<1 | 1
		default:
			return 0, fmt.Errorf("%w: character %q at position %d", ErrInvalidBitString, s[i], i)
		}
	}
	return word, nil
}

// FormatBits renders a word as a zero-padded binary string of the
// precision's width, most significant bit first.
func FormatBits(word uint64, p Precision) string {
	return fmt.Sprintf("%0*b", p.TotalBits(), word)
}

// FormatHex renders a word in the 0x-prefixed uppercase form used across
// the API surface.
func FormatHex(word uint64, p Precision) string {
	return fmt.Sprintf("0x%0*X", p.TotalBits()/4, word)
}

// ParseWord accepts either a full-width binary string or a 0x-prefixed
// hexadecimal word of at most the width's digits.
func ParseWord(s string, p Precision) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" || len(digits) > p.TotalBits()/4 {
			return 0, fmt.Errorf("%w: hex word %q does not fit %d bits", ErrInvalidBitString, s, p.TotalBits())
		}
		word, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidBitString, s)
		}
		return word, nil
	}
	return ParseBits(s, p)
}

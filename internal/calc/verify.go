package calc

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/23skdu/floatlab/internal/ieee754"
)

// Check records how one result compares against the host FPU performing
// the same operation. Match means bit-identical, with any NaN matching
// any NaN since payloads are host-specific. On a mismatch, ULP is the
// distance between the two words on the ordered-float scale and
// WithinOneULP flags a boundary difference rather than a wrong path.
type Check struct {
	Match        bool   `json:"match"`
	Host         string `json:"host"`
	ULP          uint64 `json:"ulp,omitempty"`
	WithinOneULP bool   `json:"within_one_ulp,omitempty"`
}

func checkEncode(d ieee754.Decimal, word uint64, p ieee754.Precision) *Check {
	if p == ieee754.Single {
		return compare(uint64(math.Float32bits(d.Float32())), word, p)
	}
	return compare(math.Float64bits(d.Float64()), word, p)
}

func checkDecode(decimal string, word uint64, p ieee754.Precision) *Check {
	f, err := strconv.ParseFloat(decimal, p.TotalBits())
	if err != nil {
		verifyMismatches.Inc()
		return &Check{}
	}
	if p == ieee754.Single {
		return compare(uint64(math.Float32bits(float32(f))), word, p)
	}
	return compare(math.Float64bits(f), word, p)
}

func checkArith(op string, a, b ieee754.Triple, word uint64, p ieee754.Precision) *Check {
	if p == ieee754.Single {
		fa := math.Float32frombits(uint32(packedWord(a, p)))
		fb := math.Float32frombits(uint32(packedWord(b, p)))
		h := fa + fb
		if op == "*" {
			h = fa * fb
		}
		return compare(uint64(math.Float32bits(h)), word, p)
	}
	fa := math.Float64frombits(packedWord(a, p))
	fb := math.Float64frombits(packedWord(b, p))
	h := fa + fb
	if op == "*" {
		h = fa * fb
	}
	return compare(math.Float64bits(h), word, p)
}

func compare(host, word uint64, p ieee754.Precision) *Check {
	c := &Check{Host: ieee754.FormatHex(host, p)}
	if host == word {
		c.Match = true
		return c
	}
	if ieee754.Classify(ieee754.Unpack(host, p), p).IsNaN() &&
		ieee754.Classify(ieee754.Unpack(word, p), p).IsNaN() {
		c.Match = true
		return c
	}

	verifyMismatches.Inc()
	if p == ieee754.Single {
		c.ULP = ulpDist(ordered32(host), ordered32(word))
		c.WithinOneULP = c.ULP <= 1
		return c
	}
	c.ULP = ulpDist(ordered64(host), ordered64(word))
	c.WithinOneULP = scalar.EqualWithinULP(math.Float64frombits(host), math.Float64frombits(word), 1)
	return c
}

func packedWord(t ieee754.Triple, p ieee754.Precision) uint64 {
	w, _ := ieee754.Pack(t, p)
	return w
}

// ordered32 maps a single word onto a scale where consecutive floats are
// consecutive integers and both zeros land on zero.
func ordered32(w uint64) int64 {
	v := int64(int32(uint32(w)))
	if v < 0 {
		v = math.MinInt32 - v
	}
	return v
}

// ordered64 is ordered32 for doubles.
func ordered64(w uint64) int64 {
	v := int64(w)
	if v < 0 {
		v = math.MinInt64 - v
	}
	return v
}

func ulpDist(a, b int64) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(b) - uint64(a)
}

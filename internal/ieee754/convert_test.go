package ieee754

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeWord(t *testing.T, d Decimal, p Precision) uint64 {
	t.Helper()
	tr, trace := Encode(d, p)
	require.NotZero(t, trace.Len(), "trace must record the taken path")
	w, err := Pack(tr, p)
	require.NoError(t, err)
	return w
}

func TestEncodeSingleFixtures(t *testing.T) {
	cases := []struct {
		name string
		num  int64
		den  int64
		want uint64
	}{
		{"one", 1, 1, 0x3F800000},
		{"minus two point five", -5, 2, 0xC0200000},
		{"tenth", 1, 10, 0x3DCCCCCD},
		{"two", 2, 1, 0x40000000},
		{"three", 3, 1, 0x40400000},
		{"half", 1, 2, 0x3F000000},
		{"minus one", -1, 1, 0xBF800000},
		{"hundred", 100, 1, 0x42C80000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecimal(big.NewRat(tc.num, tc.den))
			assert.Equal(t, tc.want, encodeWord(t, d, Single))
		})
	}
}

func TestEncodeDoubleFixtures(t *testing.T) {
	d := NewDecimal(big.NewRat(1, 10))
	assert.Equal(t, uint64(0x3FB999999999999A), encodeWord(t, d, Double))

	d = NewDecimal(big.NewRat(1, 1))
	assert.Equal(t, uint64(0x3FF0000000000000), encodeWord(t, d, Double))

	d = NewDecimal(big.NewRat(-5, 2))
	assert.Equal(t, uint64(0xC004000000000000), encodeWord(t, d, Double))
}

func TestEncodeSubnormal(t *testing.T) {
	// 2^-149 is the smallest positive single subnormal.
	smallest := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 149))
	assert.Equal(t, uint64(0x00000001), encodeWord(t, NewDecimal(smallest), Single))

	// 1e-45 is under 2^-149 but above half of it, so it rounds up to the
	// smallest subnormal rather than to zero.
	tiny := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Exp(big.NewInt(10), big.NewInt(45), nil))
	assert.Equal(t, uint64(0x00000001), encodeWord(t, NewDecimal(tiny), Single))

	// Below half the smallest subnormal the result is a signed zero.
	dust := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 151))
	assert.Equal(t, uint64(0x00000000), encodeWord(t, NewDecimal(dust), Single))
	neg := NewDecimal(new(big.Rat).Neg(dust))
	assert.Equal(t, uint64(0x80000000), encodeWord(t, neg, Single))
}

func TestEncodeSubnormalCarryToNormal(t *testing.T) {
	// Just below the smallest normal 2^-126: the subnormal path rounds up
	// and the carry lands exactly on the smallest normal number.
	almost := new(big.Rat).SetFrac(
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 24), big.NewInt(1)),
		new(big.Int).Lsh(big.NewInt(1), 150),
	)
	assert.Equal(t, uint64(0x00800000), encodeWord(t, NewDecimal(almost), Single))
}

func TestEncodeOverflowToInfinity(t *testing.T) {
	big39 := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(39), nil))
	assert.Equal(t, uint64(0x7F800000), encodeWord(t, NewDecimal(big39), Single))

	neg := NewDecimal(new(big.Rat).Neg(big39))
	assert.Equal(t, uint64(0xFF800000), encodeWord(t, neg, Single))

	// The same magnitude fits comfortably in double precision.
	w := encodeWord(t, NewDecimal(big39), Double)
	assert.Equal(t, NormalNumber, Classify(Unpack(w, Double), Double))
}

func TestEncodeTieToEven(t *testing.T) {
	// 1 + 2^-24 sits exactly between 1.0 and the next single; the even
	// mantissa wins.
	lo := new(big.Rat).Add(big.NewRat(1, 1), new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 24)))
	assert.Equal(t, uint64(0x3F800000), encodeWord(t, NewDecimal(lo), Single))

	// 1 + 3*2^-24 ties between mantissa 1 and 2; even again, upward.
	hi := new(big.Rat).Add(big.NewRat(1, 1), new(big.Rat).SetFrac(big.NewInt(3), new(big.Int).Lsh(big.NewInt(1), 24)))
	assert.Equal(t, uint64(0x3F800002), encodeWord(t, NewDecimal(hi), Single))
}

func TestEncodeSpecials(t *testing.T) {
	assert.Equal(t, uint64(0x7F800000), encodeWord(t, InfDecimal(false), Single))
	assert.Equal(t, uint64(0xFF800000), encodeWord(t, InfDecimal(true), Single))
	assert.Equal(t, uint64(0x7FC00000), encodeWord(t, NaNDecimal(), Single))
	assert.Equal(t, uint64(0x7FF8000000000000), encodeWord(t, NaNDecimal(), Double))
	assert.Equal(t, uint64(0x80000000), encodeWord(t, ZeroDecimal(true), Single))
	assert.Equal(t, uint64(0x00000000), encodeWord(t, ZeroDecimal(false), Single))
}

func TestEncodeMatchesHostSingle(t *testing.T) {
	values := []float32{
		0, 1, -1, 2, 0.5, 0.1, 0.2, 0.3, 3.1415927, 1e-40, 1e38,
		math.MaxFloat32, math.SmallestNonzeroFloat32, 16777215, 16777217,
		1.0000001, -2.5, 6.62607e-34, 123456789,
	}
	for _, v := range values {
		d := DecimalFromFloat(float64(v))
		w := encodeWord(t, d, Single)
		assert.Equal(t, uint64(math.Float32bits(v)), w, "value %g", v)
	}
}

func TestEncodeMatchesHostDouble(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.1, 0.2, 0.3, math.Pi, math.MaxFloat64,
		math.SmallestNonzeroFloat64, 1e-310, 2.2250738585072014e-308,
		9007199254740993, -123.456,
	}
	for _, v := range values {
		d := DecimalFromFloat(v)
		w := encodeWord(t, d, Double)
		assert.Equal(t, math.Float64bits(v), w, "value %g", v)
	}
}

func TestDecodeExact(t *testing.T) {
	d, trace := Decode(Unpack(0x3DCCCCCD, Single), Single)
	require.Equal(t, KindFinite, d.Kind)
	require.NotZero(t, trace.Len())
	// 0x3DCCCCCD is 13421773 * 2^-27, not one tenth.
	want := big.NewRat(13421773, 1<<27)
	assert.Zero(t, d.Signed().Cmp(want))
	assert.NotZero(t, d.Signed().Cmp(big.NewRat(1, 10)))
}

func TestDecodeSubnormal(t *testing.T) {
	d, _ := Decode(Unpack(0x00000001, Single), Single)
	require.Equal(t, KindFinite, d.Kind)
	want := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 149))
	assert.Zero(t, d.Signed().Cmp(want))
}

func TestDecodeSpecials(t *testing.T) {
	d, _ := Decode(Unpack(0x7F800000, Single), Single)
	assert.Equal(t, KindInfinite, d.Kind)
	assert.False(t, d.Neg)

	d, _ = Decode(Unpack(0xFF800000, Single), Single)
	assert.Equal(t, KindInfinite, d.Kind)
	assert.True(t, d.Neg)

	d, _ = Decode(Unpack(0x7FC00000, Single), Single)
	assert.Equal(t, KindNaN, d.Kind)

	d, _ = Decode(Unpack(0x80000000, Single), Single)
	require.Equal(t, KindFinite, d.Kind)
	assert.True(t, d.Neg)
	assert.True(t, d.IsZero())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	words := []uint64{
		0x3F800000, 0xC0200000, 0x3DCCCCCD, 0x00000001, 0x807FFFFF,
		0x00800000, 0x7F7FFFFF, 0x42F6E979, 0x80000000, 0x00000000,
	}
	for _, w := range words {
		d, _ := Decode(Unpack(w, Single), Single)
		tr, _ := Encode(d, Single)
		got, err := Pack(tr, Single)
		require.NoError(t, err)
		assert.Equal(t, w, got, "word %#x", w)
	}
}

func TestDecodeMonotonicAcrossBoundaries(t *testing.T) {
	// Incrementing a positive word never skips or reorders magnitudes,
	// including across the subnormal/normal seam and exponent steps.
	ranges := [][2]uint64{
		{0x00000000, 0x00000010},
		{0x007FFFF0, 0x00800010},
		{0x3F7FFFF0, 0x3F800010},
		{0x7F7FFFEF, 0x7F7FFFFF},
	}
	for _, r := range ranges {
		prev, _ := Decode(Unpack(r[0], Single), Single)
		for w := r[0] + 1; w <= r[1]; w++ {
			cur, _ := Decode(Unpack(w, Single), Single)
			require.Equal(t, KindFinite, cur.Kind, "word %#x", w)
			assert.Equal(t, 1, cur.Mag.Cmp(prev.Mag), "word %#x did not grow past %#x", w, w-1)
			prev = cur
		}
	}

	// Same seam in double precision.
	prev, _ := Decode(Unpack(0x000FFFFFFFFFFFF0, Double), Double)
	for w := uint64(0x000FFFFFFFFFFFF1); w <= 0x0010000000000010; w++ {
		cur, _ := Decode(Unpack(w, Double), Double)
		assert.Equal(t, 1, cur.Mag.Cmp(prev.Mag), "word %#x", w)
		prev = cur
	}
}

func TestEncodeTraceMentionsRounding(t *testing.T) {
	_, trace := Encode(NewDecimal(big.NewRat(1, 10)), Single)
	labels := make(map[string]bool)
	for _, s := range trace.Steps() {
		labels[s.Label] = true
	}
	assert.True(t, labels["round"], "inexact conversion must record a rounding step")
	assert.True(t, labels["sign"])
	assert.True(t, labels["normalize"])
}

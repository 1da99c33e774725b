package calc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/floatlab/internal/ieee754"
	"github.com/23skdu/floatlab/internal/literal"
)

func TestConvertFixtures(t *testing.T) {
	e := NewEngine(true)
	cases := []struct {
		in   string
		p    ieee754.Precision
		hex  string
		cls  string
	}{
		{"1.0", ieee754.Single, "0x3F800000", "normal"},
		{"-2.5", ieee754.Single, "0xC0200000", "normal"},
		{"0.1", ieee754.Single, "0x3DCCCCCD", "normal"},
		{"0.1", ieee754.Double, "0x3FB999999999999A", "normal"},
		{"inf", ieee754.Single, "0x7F800000", "+inf"},
		{"-0", ieee754.Single, "0x80000000", "-zero"},
		{"1e-45", ieee754.Single, "0x00000001", "subnormal"},
		{"1e39", ieee754.Single, "0x7F800000", "+inf"},
	}
	for _, tc := range cases {
		t.Run(tc.in+"/"+string(tc.p), func(t *testing.T) {
			res, err := e.Convert(tc.in, tc.p)
			require.NoError(t, err)
			assert.Equal(t, tc.hex, res.Hex)
			assert.Equal(t, tc.cls, res.Class)
			assert.NotEmpty(t, res.Bits)
			assert.NotEmpty(t, res.Trace)
			require.NotNil(t, res.Check)
			assert.True(t, res.Check.Match, "host disagreed: %+v", res.Check)
		})
	}
}

func TestConvertRejectsBadLiteral(t *testing.T) {
	e := NewEngine(false)
	_, err := e.Convert("not a number", ieee754.Single)
	assert.True(t, errors.Is(err, literal.ErrInvalidLiteral))
}

func TestDecode(t *testing.T) {
	e := NewEngine(true)

	res, err := e.Decode("0x3DCCCCCD", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, "0.1", res.Decimal)
	assert.Equal(t, "13421773/134217728", res.Exact)
	assert.Equal(t, "normal", res.Class)
	require.NotNil(t, res.Check)
	assert.True(t, res.Check.Match)

	// Grouped bits paste back in.
	res, err = e.Decode("0011 1111 1000 0000 0000 0000 0000 0000", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3F800000), res.Word)
	assert.Equal(t, "1", res.Decimal)
}

func TestDecodeRejectsWrongWidth(t *testing.T) {
	e := NewEngine(false)
	_, err := e.Decode("0101010", ieee754.Single)
	assert.True(t, errors.Is(err, ieee754.ErrInvalidBitString))

	_, err = e.Decode("0x3F800000", ieee754.Double) // eight digits, needs sixteen or fewer but value fits; accepted
	assert.NoError(t, err)

	_, err = e.Decode("0x3F8000001", ieee754.Single)
	assert.True(t, errors.Is(err, ieee754.ErrInvalidBitString))
}

func TestAdd(t *testing.T) {
	e := NewEngine(true)

	res, err := e.Add("1", "2", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, "0x40400000", res.Hex)
	assert.Equal(t, "3", res.Decimal)
	assert.True(t, res.Check.Match)

	// Operands as packed words.
	res, err = e.Add("0x7F800000", "0xFF800000", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, "qnan", res.Class)
	assert.Equal(t, uint64(0x7FC00000), res.Word)
	assert.True(t, res.Check.Match)

	// Mixed operand styles.
	res, err = e.Add("00111111100000000000000000000000", "1.0", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, "2", res.Decimal)
}

func TestMultiply(t *testing.T) {
	e := NewEngine(true)

	res, err := e.Multiply("0x3F800000", "0x40000000", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x40000000), res.Word)
	assert.True(t, res.Check.Match)

	res, err = e.Multiply("0", "inf", ieee754.Single)
	require.NoError(t, err)
	assert.Equal(t, "qnan", res.Class)

	res, err = e.Multiply("0.1", "0.1", ieee754.Double)
	require.NoError(t, err)
	assert.Equal(t, "0.010000000000000002", res.Decimal)
	assert.True(t, res.Check.Match)
}

func TestArithOperandErrors(t *testing.T) {
	e := NewEngine(false)
	_, err := e.Add("bogus", "1", ieee754.Single)
	assert.True(t, errors.Is(err, literal.ErrInvalidLiteral))
	assert.Contains(t, err.Error(), "left operand")

	_, err = e.Multiply("1", "0xGG000000", ieee754.Single)
	assert.True(t, errors.Is(err, ieee754.ErrInvalidBitString))
	assert.Contains(t, err.Error(), "right operand")
}

func TestResultCarriesTraceAlways(t *testing.T) {
	e := NewEngine(false)
	res, err := e.Convert("3.25", ieee754.Single)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Trace)
	assert.Nil(t, res.Check, "verification off must not attach a check")
}

func TestUlpDistance(t *testing.T) {
	// Adjacent singles are one apart.
	assert.Equal(t, uint64(1), ulpDist(ordered32(0x3F800000), ordered32(0x3F800001)))
	// Both zeros coincide.
	assert.Equal(t, uint64(0), ulpDist(ordered32(0x00000000), ordered32(0x80000000)))
	// Crossing zero counts both sides.
	assert.Equal(t, uint64(2), ulpDist(ordered32(0x00000001), ordered32(0x80000001)))
	// Doubles likewise.
	assert.Equal(t, uint64(1), ulpDist(ordered64(0x3FF0000000000000), ordered64(0x3FF0000000000001)))
}

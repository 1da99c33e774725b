package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/floatlab/internal/ieee754"
)

func TestSegmentSingle(t *testing.T) {
	bits := ieee754.FormatBits(0xC0200000, ieee754.Single)
	spans, err := Segment(bits, ieee754.Single)
	require.NoError(t, err)
	require.Len(t, spans, 3)

	assert.Equal(t, Span{Field: "sign", Start: 0, End: 1, Bits: "1"}, spans[0])
	assert.Equal(t, "exponent", spans[1].Field)
	assert.Equal(t, "10000000", spans[1].Bits)
	assert.Equal(t, 1, spans[1].Start)
	assert.Equal(t, 9, spans[1].End)
	assert.Equal(t, "mantissa", spans[2].Field)
	assert.Equal(t, "01000000000000000000000", spans[2].Bits)
	assert.Equal(t, 32, spans[2].End)
}

func TestSegmentDouble(t *testing.T) {
	bits := ieee754.FormatBits(0x3FF0000000000000, ieee754.Double)
	spans, err := Segment(bits, ieee754.Double)
	require.NoError(t, err)
	assert.Equal(t, "0", spans[0].Bits)
	assert.Equal(t, "01111111111", spans[1].Bits)
	assert.Equal(t, strings.Repeat("0", 52), spans[2].Bits)
	assert.Equal(t, 64, spans[2].End)
}

func TestSegmentRejectsBadInput(t *testing.T) {
	_, err := Segment(strings.Repeat("0", 31), ieee754.Single)
	assert.True(t, errors.Is(err, ieee754.ErrInvalidBitString))

	_, err = Segment(strings.Repeat("2", 32), ieee754.Single)
	assert.True(t, errors.Is(err, ieee754.ErrInvalidBitString))
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "0011 1111 1000", Group("001111111000", 4))
	assert.Equal(t, "00 11", Group("0011", 2))
	assert.Equal(t, "0011", Group("0011", 0))
	assert.Equal(t, "0011", Group("0011", 8))
	assert.Equal(t, "001 1", Group("0011", 3))
}

func TestTraceText(t *testing.T) {
	tr := ieee754.NewTrace()
	tr.Append("sign", "0 (positive)")
	tr.Append("normalize", "magnitude is 1.f x 2^1")
	out := TraceText(tr.Steps())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " 1. sign")
	assert.Contains(t, lines[0], "0 (positive)")
	assert.Contains(t, lines[1], " 2. normalize")
}

func TestColorize(t *testing.T) {
	spans := []Span{
		{Field: "sign", Bits: "1"},
		{Field: "exponent", Bits: "10000000"},
		{Field: "mantissa", Bits: "0100"},
	}
	out := Colorize(spans)
	assert.Contains(t, out, "\x1b[31m1\x1b[0m")
	assert.Contains(t, out, "\x1b[34m10000000\x1b[0m")
	assert.Contains(t, out, "\x1b[32m0100\x1b[0m")

	spaced := ColorizeSpaced(spans)
	assert.Equal(t, 2, strings.Count(spaced, " "))
}

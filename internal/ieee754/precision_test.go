package ieee754

import (
	"errors"
	"testing"
)

func TestPrecisionGeometry(t *testing.T) {
	if Single.TotalBits() != 32 || Single.ExponentBits() != 8 || Single.MantissaBits() != 23 || Single.Bias() != 127 {
		t.Error("single geometry wrong")
	}
	if Double.TotalBits() != 64 || Double.ExponentBits() != 11 || Double.MantissaBits() != 52 || Double.Bias() != 1023 {
		t.Error("double geometry wrong")
	}
	if Single.minExponent() != -126 || Double.minExponent() != -1022 {
		t.Error("minimum exponent wrong")
	}
	if Single.maxExponent() != 255 || Double.maxExponent() != 2047 {
		t.Error("reserved exponent wrong")
	}
	if Single.quietBit() != 1<<22 || Double.quietBit() != 1<<51 {
		t.Error("quiet bit wrong")
	}
}

func TestParsePrecision(t *testing.T) {
	for _, s := range []string{"single", "Single", "SINGLE", "fp32", "32", "binary32", "float32", " single "} {
		p, err := ParsePrecision(s)
		if err != nil || p != Single {
			t.Errorf("%q: got %v, %v", s, p, err)
		}
	}
	for _, s := range []string{"double", "fp64", "64", "binary64", "float64"} {
		p, err := ParsePrecision(s)
		if err != nil || p != Double {
			t.Errorf("%q: got %v, %v", s, p, err)
		}
	}
	for _, s := range []string{"", "half", "fp16", "quad", "128"} {
		if _, err := ParsePrecision(s); !errors.Is(err, ErrInvalidPrecision) {
			t.Errorf("%q: got %v, want ErrInvalidPrecision", s, err)
		}
	}
	if Precision("half").IsValid() {
		t.Error("half must not validate")
	}
}

package ieee754

import "testing"

func TestClassifySingle(t *testing.T) {
	cases := []struct {
		word uint64
		want Class
	}{
		{0x00000000, PositiveZero},
		{0x80000000, NegativeZero},
		{0x3F800000, NormalNumber},
		{0xC0200000, NormalNumber},
		{0x00000001, SubnormalNumber},
		{0x807FFFFF, SubnormalNumber},
		{0x00800000, NormalNumber},
		{0x7F800000, PositiveInfinity},
		{0xFF800000, NegativeInfinity},
		{0x7FC00000, QuietNaN},
		{0xFFC00001, QuietNaN},
		{0x7F800001, SignalingNaN},
		{0xFF9FFFFF, SignalingNaN},
	}
	for _, tc := range cases {
		if got := Classify(Unpack(tc.word, Single), Single); got != tc.want {
			t.Errorf("%#x: got %s, want %s", tc.word, got, tc.want)
		}
	}
}

func TestClassifyDouble(t *testing.T) {
	cases := []struct {
		word uint64
		want Class
	}{
		{0x0000000000000000, PositiveZero},
		{0x8000000000000000, NegativeZero},
		{0x3FF0000000000000, NormalNumber},
		{0x0000000000000001, SubnormalNumber},
		{0x000FFFFFFFFFFFFF, SubnormalNumber},
		{0x0010000000000000, NormalNumber},
		{0x7FF0000000000000, PositiveInfinity},
		{0xFFF0000000000000, NegativeInfinity},
		{0x7FF8000000000000, QuietNaN},
		{0x7FF0000000000001, SignalingNaN},
	}
	for _, tc := range cases {
		if got := Classify(Unpack(tc.word, Double), Double); got != tc.want {
			t.Errorf("%#x: got %s, want %s", tc.word, got, tc.want)
		}
	}
}

func TestClassPredicates(t *testing.T) {
	if !QuietNaN.IsNaN() || !SignalingNaN.IsNaN() || NormalNumber.IsNaN() {
		t.Error("IsNaN misclassifies")
	}
	if !PositiveInfinity.IsInfinity() || !NegativeInfinity.IsInfinity() || PositiveZero.IsInfinity() {
		t.Error("IsInfinity misclassifies")
	}
	if !PositiveZero.IsZero() || !NegativeZero.IsZero() || SubnormalNumber.IsZero() {
		t.Error("IsZero misclassifies")
	}
	for _, c := range []Class{PositiveZero, NegativeZero, NormalNumber, SubnormalNumber} {
		if !c.IsFinite() {
			t.Errorf("%s should be finite", c)
		}
	}
	for _, c := range []Class{PositiveInfinity, NegativeInfinity, QuietNaN, SignalingNaN} {
		if c.IsFinite() {
			t.Errorf("%s should not be finite", c)
		}
	}
}

package ieee754

// Class is the semantic classification of a stored-field triple.
type Class int

const (
	PositiveZero Class = iota
	NegativeZero
	NormalNumber
	SubnormalNumber
	PositiveInfinity
	NegativeInfinity
	QuietNaN
	SignalingNaN
)

// String returns the short lowercase name used in traces and API
// responses.
func (c Class) String() string {
	switch c {
	case PositiveZero:
		return "+zero"
	case NegativeZero:
		return "-zero"
	case NormalNumber:
		return "normal"
	case SubnormalNumber:
		return "subnormal"
	case PositiveInfinity:
		return "+inf"
	case NegativeInfinity:
		return "-inf"
	case QuietNaN:
		return "qnan"
	case SignalingNaN:
		return "snan"
	default:
		return "unknown"
	}
}

// IsNaN reports whether the class is a NaN of either kind.
func (c Class) IsNaN() bool { return c == QuietNaN || c == SignalingNaN }

// IsInfinity reports whether the class is an infinity of either sign.
func (c Class) IsInfinity() bool { return c == PositiveInfinity || c == NegativeInfinity }

// IsZero reports whether the class is a zero of either sign.
func (c Class) IsZero() bool { return c == PositiveZero || c == NegativeZero }

// IsFinite reports whether the class denotes a finite value, zeros and
// subnormals included.
func (c Class) IsFinite() bool { return !c.IsNaN() && !c.IsInfinity() }

// Classify derives the class from the stored fields alone: an all-zero
// exponent field means zero or subnormal, an all-ones field means
// infinity or NaN, and everything between is a normal number. NaNs split
// on the top mantissa bit, set for quiet and clear for signaling.
func Classify(t Triple, p Precision) Class {
	switch t.Exponent {
	case 0:
		if t.Mantissa == 0 {
			if t.Sign == 1 {
				return NegativeZero
			}
			return PositiveZero
		}
		return SubnormalNumber
	case p.maxExponent():
		if t.Mantissa == 0 {
			if t.Sign == 1 {
				return NegativeInfinity
			}
			return PositiveInfinity
		}
		if t.Mantissa&p.quietBit() != 0 {
			return QuietNaN
		}
		return SignalingNaN
	default:
		return NormalNumber
	}
}

package ieee754

import "errors"

var (
	// ErrInvalidBitString is returned when a bit string has the wrong
	// width or contains characters other than '0' and '1'.
	ErrInvalidBitString = errors.New("invalid bit string")

	// ErrInvalidPrecision is returned when a precision name is not
	// recognized.
	ErrInvalidPrecision = errors.New("invalid precision")

	// ErrFieldOverflow is returned by Pack when a field value does not
	// fit its width. It indicates a defect in the caller, not bad user
	// input.
	ErrFieldOverflow = errors.New("field overflow")
)

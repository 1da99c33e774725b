package literal

import "errors"

// ErrInvalidLiteral is returned when input text is not a decimal literal
// the parser understands.
var ErrInvalidLiteral = errors.New("invalid decimal literal")

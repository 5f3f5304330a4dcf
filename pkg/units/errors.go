package units

import (
	"errors"
	"fmt"
)

// ErrUndefinedUnit indicates a unit string that no backend definition matches.
var ErrUndefinedUnit = errors.New("units: undefined unit")

// ConversionError indicates a dimensionally impossible unit conversion.
type ConversionError struct {
	From string
	To   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("units: cannot convert %q to %q", e.From, e.To)
}

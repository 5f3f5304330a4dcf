package units

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// Backend is the unit primitive contract consumed by the marshalling
// engine. Implementations must normalize "%" and "°" themselves.
type Backend interface {
	Name() string

	// Same reports exact unit equality (identical scale and offset).
	Same(unit1, unit2 string) bool

	// Compatible reports whether unit1 can be converted to unit2.
	Compatible(unit1, unit2 string) bool

	// Convert converts values from one unit to another. It returns a
	// ConversionError if the units are dimensionally incompatible.
	Convert(values []float64, from, to string) ([]float64, error)

	// Valid reports whether the unit string is recognized.
	Valid(unit string) bool

	// Clean returns a canonical form of the unit string.
	Clean(unit string) (string, error)
}

var activeBackend Backend

func init() {
	activeBackend = NewRegistry()
}

// SetBackend replaces the module-level backend.
func SetBackend(b Backend) {
	activeBackend = b
}

// CurrentBackend returns the module-level backend.
func CurrentBackend() Backend {
	return activeBackend
}

// SelectBackend installs a backend by name ("registry" or "table").
func SelectBackend(name string) error {
	switch strings.ToLower(name) {
	case "registry":
		SetBackend(NewRegistry())
	case "table":
		SetBackend(NewTable(DefaultTable()))
	default:
		return fmt.Errorf("units: unknown backend %q", name)
	}
	return nil
}

// Same reports exact equality of two unit strings using the active backend.
func Same(unit1, unit2 string) bool {
	return activeBackend.Same(unit1, unit2)
}

// Compatible reports whether unit1 can be converted to unit2 using the
// active backend.
func Compatible(unit1, unit2 string) bool {
	return activeBackend.Compatible(unit1, unit2)
}

// Convert converts values between units using the active backend.
func Convert(values []float64, from, to string) ([]float64, error) {
	return activeBackend.Convert(values, from, to)
}

// Valid reports whether the unit string is recognized by the active backend.
func Valid(unit string) bool {
	return activeBackend.Valid(unit)
}

// Clean returns the canonical form of a unit string using the active backend.
func Clean(unit string) (string, error) {
	return activeBackend.Clean(unit)
}

// ConvertDense converts every element of a dense array, returning the
// input array unchanged when the units are exactly the same and a fresh
// array otherwise. The input array is never modified.
func ConvertDense(a *sparse.DenseArray, from, to string) (*sparse.DenseArray, error) {
	if activeBackend.Same(from, to) {
		return a, nil
	}
	converted, err := activeBackend.Convert(a.Elements, from, to)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(a.Shape...)
	copy(out.Elements, converted)
	return out, nil
}

// Package units provides pluggable unit comparison, validation, and
// conversion for quantity arrays.
//
// The package exposes a small backend contract and two implementations:
//
//   - Registry: dimensional analysis over parsed CF-style unit strings
//     (compound expressions such as "W m^-2" or "kg kg^-1 s^-1")
//   - Table: whole-string lookup against a unit-definition table, which
//     may be loaded from a YAML file
//
// A module-level backend is selected at init and may be swapped:
//
//	units.SelectBackend("table")
//	ok := units.Compatible("km", "cm")
//	out, err := units.Convert([]float64{280}, "degK", "degC")
//
// Percent and degree-symbol normalization ("%" and "°") is handled inside
// the backends; callers pass unit strings through unchanged.
package units

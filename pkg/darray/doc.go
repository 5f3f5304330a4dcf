// Package darray defines the labeled, unit-tagged array type exchanged
// between model components, together with the state containers that hold
// them.
//
// A [DataArray] wraps a dense numeric array with one dimension name per
// axis and an attribute map that carries at least a "units" entry. A
// [State] maps quantity names to DataArrays and carries the model time;
// its raw counterpart [RawState] holds plain numeric arrays keyed by
// alias-or-name, as consumed by component kernels.
//
// Arithmetic that must preserve attributes is provided as explicit
// helpers ([Add], [Scale]) rather than operator overloads.
package darray

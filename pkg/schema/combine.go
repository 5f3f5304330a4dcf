package schema

import (
	"fmt"

	"github.com/san-kum/gridstate/pkg/units"
)

// CombineDims unifies two per-quantity dims declarations from different
// components. The rules, in priority order:
//
//  1. Identical lists are returned as-is.
//  2. Neither contains the wildcard: the two name sets must be equal
//     (order-insensitive); the result keeps the first list's order.
//  3. Exactly one contains the wildcard: the wildcard side's explicit
//     names must all appear on the explicit side; the result keeps the
//     wildcard followed by the union of explicit names, so downstream
//     wildcard resolution still applies.
//  4. Both contain the wildcard: always compatible; the wildcard comes
//     first, followed by the union of explicit names.
func CombineDims(dims1, dims2 []string) ([]string, error) {
	if sameList(dims1, dims2) {
		return append([]string(nil), dims1...), nil
	}
	named1, wild1 := splitWildcard(dims1)
	named2, wild2 := splitWildcard(dims2)
	switch {
	case wild1 && wild2:
		return append([]string{DimWildcard}, union(named1, named2)...), nil
	case !wild1 && !wild2:
		if !sameSet(named1, named2) {
			return nil, &PropertiesError{
				Reason: fmt.Sprintf("dims %v and %v are incompatible", dims1, dims2),
			}
		}
		return append([]string(nil), named1...), nil
	case wild1:
		if !subset(named1, named2) {
			return nil, &PropertiesError{
				Reason: fmt.Sprintf("dims %v and %v are incompatible", dims1, dims2),
			}
		}
		return append([]string{DimWildcard}, union(named1, named2)...), nil
	default: // wild2
		if !subset(named2, named1) {
			return nil, &PropertiesError{
				Reason: fmt.Sprintf("dims %v and %v are incompatible", dims1, dims2),
			}
		}
		return append([]string{DimWildcard}, union(named2, named1)...), nil
	}
}

// CombineProperties folds several property schemas into one. The first
// schema to declare a quantity fixes its entry; a quantity without dims
// borrows them from inputProps (which may be nil). Later declarations of
// the same quantity must carry convertible units (the first declaration's
// units win) and dims combinable under CombineDims; violations surface as
// a PropertiesError naming the quantity.
func CombineProperties(schemas []Schema, inputProps Schema) (Schema, error) {
	out := Schema{}
	for _, s := range schemas {
		for _, name := range s.SortedNames() {
			props := s[name]
			existing, seen := out[name]
			if !seen {
				entry := props.Copy()
				if entry.Dims == nil {
					borrowed, err := borrowDims(name, inputProps)
					if err != nil {
						return nil, err
					}
					entry.Dims = borrowed
				}
				out[name] = entry
				continue
			}
			if !units.Compatible(props.Units, existing.Units) {
				return nil, &PropertiesError{
					Quantity: name,
					Reason: fmt.Sprintf(
						"cannot combine components with incompatible units %q and %q",
						existing.Units, props.Units),
				}
			}
			newDims := props.Dims
			if newDims == nil {
				borrowed, err := borrowDims(name, inputProps)
				if err != nil {
					return nil, err
				}
				newDims = borrowed
			}
			combined, err := CombineDims(existing.Dims, newDims)
			if err != nil {
				return nil, &PropertiesError{
					Quantity: name,
					Reason:   fmt.Sprintf("incompatibility between dims: %v", err),
				}
			}
			existing.Dims = combined
			out[name] = existing
		}
	}
	return out, nil
}

func borrowDims(name string, inputProps Schema) ([]string, error) {
	if inputProps != nil {
		if in, ok := inputProps[name]; ok && in.Dims != nil {
			return append([]string(nil), in.Dims...), nil
		}
	}
	return nil, &PropertiesError{Quantity: name, Reason: "dims not specified"}
}

func splitWildcard(dims []string) (named []string, wild bool) {
	for _, d := range dims {
		if d == DimWildcard {
			wild = true
			continue
		}
		named = append(named, d)
	}
	return named, wild
}

func sameList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	return subset(a, b) && subset(b, a)
}

func subset(a, b []string) bool {
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func union(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, x := range b {
		found := false
		for _, y := range out {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			out = append(out, x)
		}
	}
	return out
}

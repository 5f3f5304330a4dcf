package marshal

import (
	"fmt"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
)

// resolution is the per-call outcome of scanning a state against a
// property schema: the shared wildcard name list, the dimension-length
// table, and each quantity's own extra dims.
type resolution struct {
	// names is the shared, order-preserving list of dimensions matched
	// by the wildcard token across all scanned quantities. It is nil
	// when no schema entry declares the wildcard.
	names []string

	hasWildcard bool
	lengths     map[string]int
	extras      map[string][]string
}

func resolve(state *darray.State, props schema.Schema) (*resolution, error) {
	res := &resolution{
		lengths: map[string]int{},
		extras:  map[string][]string{},
	}
	for _, name := range props.SortedNames() {
		p := props[name]
		if p.Dims == nil {
			return nil, &schema.PropertiesError{Quantity: name, Reason: "dims not specified"}
		}
		if p.Units == "" {
			return nil, &schema.PropertiesError{Quantity: name, Reason: "units not specified"}
		}
		if p.HasWildcard() {
			res.hasWildcard = true
		}
		quantity, ok := state.Fields[name]
		if !ok {
			return nil, &schema.StateError{Quantity: name, Reason: "missing from state"}
		}
		for i, dim := range quantity.Dims {
			length := quantity.Values.Shape[i]
			if known, seen := res.lengths[dim]; seen && known != length {
				return nil, &schema.StateError{
					Reason: fmt.Sprintf(
						"dimension %s has conflicting lengths %d and %d in different state quantities",
						dim, length, known),
				}
			}
			res.lengths[dim] = length
		}
		var extra []string
		for _, dim := range quantity.Dims {
			if !contains(p.Dims, dim) {
				extra = append(extra, dim)
			}
		}
		if len(extra) > 0 && !p.HasWildcard() {
			return nil, &schema.StateError{
				Quantity: name,
				Reason:   fmt.Sprintf("has unexpected dimensions %v", extra),
			}
		}
		res.extras[name] = extra
		for _, dim := range extra {
			if !contains(res.names, dim) {
				res.names = append(res.names, dim)
			}
		}
	}
	if !res.hasWildcard {
		res.names = nil
	}
	return res, nil
}

// ResolveWildcard scans a state against a property schema, returning the
// shared wildcard name list (nil when no schema entry declares the
// wildcard token) and the dimension-length table for this call.
func ResolveWildcard(state *darray.State, props schema.Schema) ([]string, map[string]int, error) {
	res, err := resolve(state, props)
	if err != nil {
		return nil, nil, err
	}
	return res.names, res.lengths, nil
}

// fillDims expands the wildcard token in outDims into the resolved
// wildcard names, returning the expanded dims list and the target shape
// per axis. Dimensions without a recorded length default to 1.
func fillDims(outDims []string, lengths map[string]int, wildcardNames []string) ([]string, []int) {
	expanded := make([]string, 0, len(outDims)+len(wildcardNames))
	shape := make([]int, 0, cap(expanded))
	for _, dim := range outDims {
		if dim == schema.DimWildcard {
			for _, w := range wildcardNames {
				expanded = append(expanded, w)
				shape = append(shape, lengthOr(lengths, w, 1))
			}
			continue
		}
		expanded = append(expanded, dim)
		shape = append(shape, lengthOr(lengths, dim, 1))
	}
	return expanded, shape
}

func lengthOr(lengths map[string]int, dim string, fallback int) int {
	if l, ok := lengths[dim]; ok {
		return l
	}
	return fallback
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

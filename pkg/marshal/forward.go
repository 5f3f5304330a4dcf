package marshal

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
)

// GetRawArrays converts a state into the raw numeric arrays a kernel
// expects, one per schema entry, keyed by alias-or-name. Each quantity is
// converted to its declared units, transposed into its declared dim
// order, broadcast along declared dims it does not carry, and its
// wildcard-matched axes flattened into one. The caller's state is never
// modified; arrays that needed no unit conversion and no reshaping share
// their backing storage with the state.
func GetRawArrays(state *darray.State, props schema.Schema) (*darray.RawState, error) {
	res, err := resolve(state, props)
	if err != nil {
		return nil, err
	}
	out := darray.NewRawState(state.Time)
	for _, name := range props.SortedNames() {
		p := props[name]
		quantity := state.Fields[name]
		from, ok := quantity.Units()
		if !ok {
			return nil, &schema.StateError{Quantity: name, Reason: "missing units attribute"}
		}
		converted, err := quantity.ToUnits(p.Units)
		if err != nil {
			return nil, &schema.StateError{
				Quantity: name,
				Reason: fmt.Sprintf(
					"could not convert from units %q to units %q", from, p.Units),
			}
		}
		if p.MatchDimsLike != "" {
			if err := checkMatchDimsLike(name, p.MatchDimsLike, props, res); err != nil {
				return nil, err
			}
		}
		raw, err := rawArray(converted, p, res)
		if err != nil {
			return nil, err
		}
		key := p.RawName(name)
		if _, exists := out.Arrays[key]; exists {
			return nil, &schema.PropertiesError{
				Quantity: name,
				Reason:   fmt.Sprintf("multiple arrays with output name %q", key),
			}
		}
		out.Arrays[key] = raw
	}
	return out, nil
}

// rawArray shapes a unit-converted quantity to its resolved dims list.
func rawArray(q *darray.DataArray, p schema.Properties, res *resolution) (*sparse.DenseArray, error) {
	wi := p.WildcardIndex()
	if wi < 0 && len(p.Dims) == 0 && q.Rank() == 0 {
		// 0-dimensional scalar, returned unmodified
		return q.Values, nil
	}
	outDims := p.Dims
	if wi >= 0 {
		outDims = spliceWildcard(p.Dims, wi, res.names)
	}
	expanded := q
	for _, dim := range outDims {
		if !contains(expanded.Dims, dim) {
			expanded = expanded.ExpandDims(dim)
		}
	}
	transposed, err := expanded.Transpose(outDims...)
	if err != nil {
		return nil, err
	}
	targetShape := make([]int, len(outDims))
	for i, dim := range outDims {
		targetShape[i] = lengthOr(res.lengths, dim, 1)
	}
	arr, err := darray.BroadcastTo(transposed.Values, targetShape)
	if err != nil {
		return nil, err
	}
	if wi >= 0 {
		return flattenWildcard(arr, wi, len(res.names))
	}
	return arr, nil
}

// flattenWildcard collapses axes [i, i+n) into a single axis of their
// combined length. With n == 0 a singleton axis is inserted at i.
func flattenWildcard(arr *sparse.DenseArray, i, n int) (*sparse.DenseArray, error) {
	combined := 1
	for _, length := range arr.Shape[i : i+n] {
		combined *= length
	}
	newShape := make([]int, 0, len(arr.Shape)-n+1)
	newShape = append(newShape, arr.Shape[:i]...)
	newShape = append(newShape, combined)
	newShape = append(newShape, arr.Shape[i+n:]...)
	return darray.Reshape(arr, newShape)
}

func spliceWildcard(dims []string, wi int, names []string) []string {
	out := make([]string, 0, len(dims)-1+len(names))
	out = append(out, dims[:wi]...)
	out = append(out, names...)
	out = append(out, dims[wi+1:]...)
	return out
}

func checkMatchDimsLike(name, target string, props schema.Schema, res *resolution) error {
	if _, ok := props[target]; !ok {
		return &schema.PropertiesError{
			Quantity: name,
			Reason:   fmt.Sprintf("match_dims_like refers to unknown quantity %q", target),
		}
	}
	if !sameStringSet(res.extras[name], res.extras[target]) {
		return &schema.StateError{
			Quantity: name,
			Reason: fmt.Sprintf(
				"wildcard dimensions %v do not match those of %s (%v)",
				res.extras[name], target, res.extras[target]),
		}
	}
	return nil
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !contains(b, x) {
			return false
		}
	}
	return true
}

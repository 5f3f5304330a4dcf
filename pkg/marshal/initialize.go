package marshal

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
)

// InitOptions configures tracer handling for InitRawArrays.
type InitOptions struct {
	// TracerDims, when set, requests a stacked "tracers" output array
	// with these dims; exactly one entry must be the tracer axis token.
	TracerDims []string

	// TracerNames is the ordered list of quantities stacked along the
	// tracer axis (prepended tracers first). Output quantities with
	// these names are carried inside the stacked array instead of
	// getting their own allocation.
	TracerNames []string
}

// InitRawArrays allocates zero-filled raw arrays for every output
// quantity, shaped using dimension lengths harvested from the raw input
// arrays. No wildcard resolution happens here: the input schema's dims
// are taken as already resolved against the raw input. An output
// quantity without dims of its own borrows them from the same-named
// input entry, which is how an output declares "same grid as this input"
// without repeating its shape.
func InitRawArrays(outputProps schema.Schema, rawInput *darray.RawState, inputProps schema.Schema, opts *InitOptions) (*darray.RawState, error) {
	lengths, err := rawDimLengths(rawInput, inputProps)
	if err != nil {
		return nil, err
	}
	outDims, err := outputDims(outputProps, inputProps, nil)
	if err != nil {
		return nil, err
	}
	out := darray.NewRawState(rawInput.Time)
	for _, name := range outputProps.SortedNames() {
		dims := outDims[name]
		if opts != nil && opts.TracerDims != nil && contains(opts.TracerNames, name) {
			continue
		}
		shape := make([]int, len(dims))
		for i, dim := range dims {
			length, ok := lengths[dim]
			if !ok {
				return nil, &schema.PropertiesError{
					Quantity: name,
					Reason:   fmt.Sprintf("no known length for dimension %s", dim),
				}
			}
			shape[i] = length
		}
		out.Arrays[name] = sparse.ZerosDense(shape...)
	}
	if opts != nil && opts.TracerDims != nil {
		lengths[schema.DimTracer] = len(opts.TracerNames)
		shape := make([]int, len(opts.TracerDims))
		for i, dim := range opts.TracerDims {
			length, ok := lengths[dim]
			if !ok {
				return nil, &schema.PropertiesError{
					Quantity: "tracers",
					Reason:   fmt.Sprintf("no known length for dimension %s", dim),
				}
			}
			shape[i] = length
		}
		out.Arrays["tracers"] = sparse.ZerosDense(shape...)
	}
	return out, nil
}

// rawDimLengths harvests dimension lengths from already-marshalled raw
// input arrays, indexing each axis by the input schema's resolved dims.
// Tracer-flagged inputs are skipped; they live in the stacked array.
func rawDimLengths(rawInput *darray.RawState, inputProps schema.Schema) (map[string]int, error) {
	lengths := map[string]int{}
	for _, name := range inputProps.SortedNames() {
		p := inputProps[name]
		if p.Tracer {
			continue
		}
		arr, ok := rawInput.Arrays[p.RawName(name)]
		if !ok {
			return nil, &schema.StateError{Quantity: name, Reason: "missing from raw input state"}
		}
		for i, dim := range p.Dims {
			if i >= len(arr.Shape) {
				return nil, &schema.StateError{
					Quantity: name,
					Reason: fmt.Sprintf(
						"raw array of rank %d does not satisfy dims %v", len(arr.Shape), p.Dims),
				}
			}
			if known, seen := lengths[dim]; seen && known != arr.Shape[i] {
				return nil, &schema.StateError{
					Reason: fmt.Sprintf(
						"dimension %s has differing lengths on different inputs", dim),
				}
			}
			lengths[dim] = arr.Shape[i]
		}
	}
	return lengths, nil
}

// outputDims resolves the dims for every output quantity not in ignore:
// its own declaration if present, else borrowed from the same-named
// input entry.
func outputDims(outputProps, inputProps schema.Schema, ignore []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, name := range outputProps.SortedNames() {
		if contains(ignore, name) {
			continue
		}
		p := outputProps[name]
		if p.Dims != nil {
			out[name] = p.Dims
			continue
		}
		in, ok := inputProps[name]
		if !ok {
			return nil, &schema.PropertiesError{
				Quantity: name,
				Reason:   "output dims must be specified",
			}
		}
		if in.Dims == nil {
			return nil, &schema.PropertiesError{
				Quantity: name,
				Reason:   "input dims must be specified",
			}
		}
		out[name] = in.Dims
	}
	return out, nil
}

package marshal

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
)

// RestoreOptions configures RestoreDataArrays.
type RestoreOptions struct {
	// IgnoreNames lists output quantities to skip entirely.
	IgnoreNames []string

	// IgnoreMissing, when true, silently skips output quantities with
	// no counterpart in the raw arrays instead of failing.
	IgnoreMissing bool
}

// RestoreDataArrays lifts a kernel's raw output arrays back into labeled
// arrays consistent with the input state the kernel was given. Output
// dims come from the output schema, or are borrowed from the same-named
// input entry. A wildcard axis is expanded back into the named axes
// established by re-resolving the input state; all other arrays must
// match their declared rank and any dimension length recorded elsewhere
// in this call. Only the units attribute is set on the restored arrays;
// coordinates and other metadata are deliberately dropped (use
// RestoreDimensions for a coordinate-preserving single-quantity inverse).
func RestoreDataArrays(raw *darray.RawState, outputProps schema.Schema, inputState *darray.State, inputProps schema.Schema, opts *RestoreOptions) (map[string]*darray.DataArray, error) {
	var ignore []string
	if opts != nil {
		ignore = append(ignore, opts.IgnoreNames...)
		if opts.IgnoreMissing {
			for name := range outputProps {
				rawName := restoreRawName(name, outputProps, inputProps)
				if _, ok := raw.Arrays[rawName]; !ok && !contains(ignore, name) {
					ignore = append(ignore, name)
				}
			}
		}
	}
	res, err := resolve(inputState, inputProps)
	if err != nil {
		return nil, err
	}
	outDims, err := outputDims(outputProps, inputProps, ignore)
	if err != nil {
		return nil, err
	}
	out := map[string]*darray.DataArray{}
	for _, name := range outputProps.SortedNames() {
		if contains(ignore, name) {
			continue
		}
		dims := outDims[name]
		rawName := restoreRawName(name, outputProps, inputProps)
		arr, ok := raw.Arrays[rawName]
		if !ok {
			return nil, fmt.Errorf("marshal: no raw array named %q for output %s", rawName, name)
		}
		var restored *sparse.DenseArray
		var restoredDims []string
		if contains(dims, schema.DimWildcard) {
			// lengths of named dims not seen in any input come from the
			// raw array's own shape; dims after the wildcard align from
			// the end, since the wildcard occupies one flattened axis
			wi := (schema.Properties{Dims: dims}).WildcardIndex()
			for i, dim := range dims {
				if dim == schema.DimWildcard {
					continue
				}
				pos := i
				if i > wi {
					pos = len(arr.Shape) - (len(dims) - i)
				}
				if pos < 0 || pos >= len(arr.Shape) {
					continue
				}
				if _, known := res.lengths[dim]; !known {
					res.lengths[dim] = arr.Shape[pos]
				}
			}
			expandedDims, targetShape := fillDims(dims, res.lengths, res.names)
			restored, err = darray.Reshape(arr, targetShape)
			if err != nil {
				return nil, &schema.PropertiesError{
					Quantity: name,
					Reason: fmt.Sprintf(
						"failed to restore raw shape %v to target shape %v, are the output dims %v correct?",
						arr.Shape, targetShape, dims),
				}
			}
			restoredDims = expandedDims
		} else {
			if err := checkRawShape(name, dims, arr, res.lengths); err != nil {
				return nil, err
			}
			restored = arr
			restoredDims = dims
		}
		out[name], err = darray.New(restored, append([]string(nil), restoredDims...),
			map[string]string{"units": outputProps[name].Units})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func restoreRawName(name string, outputProps, inputProps schema.Schema) string {
	if p, ok := outputProps[name]; ok && p.Alias != "" {
		return p.Alias
	}
	if p, ok := inputProps[name]; ok && p.Alias != "" {
		return p.Alias
	}
	return name
}

// checkRawShape validates a non-wildcard raw output against its declared
// dims and against dimension lengths recorded elsewhere in this call,
// cross-checking e.g. a stepped quantity against its paired tendency.
func checkRawShape(name string, dims []string, arr *sparse.DenseArray, lengths map[string]int) error {
	if len(dims) != len(arr.Shape) {
		return &schema.PropertiesError{
			Quantity: name,
			Reason: fmt.Sprintf(
				"returned array has shape %v which is incompatible with dims %v", arr.Shape, dims),
		}
	}
	for i, dim := range dims {
		if known, ok := lengths[dim]; ok && known != arr.Shape[i] {
			return &schema.PropertiesError{
				Quantity: name,
				Reason: fmt.Sprintf(
					"dimension %s has length %d, but another quantity has length %d",
					dim, arr.Shape[i], known),
			}
		}
	}
	return nil
}

// RestoreDimensions is the single-quantity inverse of the forward
// marshaller: it reshapes a raw array described by fromDims (possibly
// containing the wildcard token) back to the dimensions of a reference
// array, preserving the reference's coordinates. attrs, when non-nil,
// becomes the attribute map of the result.
func RestoreDimensions(arr *sparse.DenseArray, fromDims []string, resultLike *darray.DataArray, attrs map[string]string) (*darray.DataArray, error) {
	var origDims []string
	for _, dim := range fromDims {
		if dim == schema.DimWildcard {
			for _, d := range resultLike.Dims {
				if !contains(fromDims, d) {
					origDims = append(origDims, d)
				}
			}
			continue
		}
		origDims = append(origDims, dim)
	}
	shape := make([]int, len(origDims))
	for i, dim := range origDims {
		found := -1
		for j, d := range resultLike.Dims {
			if d == dim {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf(
				"marshal: dimension %s not present in reference array with dims %v",
				dim, resultLike.Dims)
		}
		shape[i] = resultLike.Values.Shape[found]
	}
	reshaped, err := darray.Reshape(arr, shape)
	if err != nil {
		return nil, fmt.Errorf(
			"marshal: raw shape %v does not match reference shape %v", arr.Shape, shape)
	}
	restored, err := darray.New(reshaped, origDims, attrs)
	if err != nil {
		return nil, err
	}
	restored, err = restored.Transpose(resultLike.Dims...)
	if err != nil {
		return nil, err
	}
	if resultLike.Coords != nil {
		restored.Coords = resultLike.Coords
	}
	return restored, nil
}

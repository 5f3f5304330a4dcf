package darray

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/units"
)

// DataArray is a labeled, unit-tagged multi-dimensional array. Dims holds
// one dimension name per axis of Values. Attrs must contain a "units"
// entry for the array to participate in marshalling. Coords optionally
// carries per-dimension coordinate values; the marshalling engine ignores
// them except in RestoreDimensions.
type DataArray struct {
	Values *sparse.DenseArray
	Dims   []string
	Attrs  map[string]string
	Coords map[string][]float64
}

// New builds a DataArray and checks the rank invariant
// len(dims) == len(values.Shape).
func New(values *sparse.DenseArray, dims []string, attrs map[string]string) (*DataArray, error) {
	if len(dims) != len(values.Shape) {
		return nil, fmt.Errorf(
			"darray: %d dimension names for array of rank %d", len(dims), len(values.Shape))
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &DataArray{Values: values, Dims: dims, Attrs: attrs}, nil
}

// Rank returns the number of axes.
func (a *DataArray) Rank() int { return len(a.Values.Shape) }

// Units returns the units attribute and whether it is present.
func (a *DataArray) Units() (string, bool) {
	u, ok := a.Attrs["units"]
	return u, ok
}

// Copy returns a deep copy of the array, its attributes, and coordinates.
func (a *DataArray) Copy() *DataArray {
	attrs := make(map[string]string, len(a.Attrs))
	for k, v := range a.Attrs {
		attrs[k] = v
	}
	var coords map[string][]float64
	if a.Coords != nil {
		coords = make(map[string][]float64, len(a.Coords))
		for k, v := range a.Coords {
			c := make([]float64, len(v))
			copy(c, v)
			coords[k] = c
		}
	}
	return &DataArray{
		Values: a.Values.Copy(),
		Dims:   append([]string(nil), a.Dims...),
		Attrs:  attrs,
		Coords: coords,
	}
}

// ToUnits converts the array to the given units. When the units are
// already exactly the same the receiver is returned unchanged (sharing
// its backing storage); otherwise a fresh array is returned and the
// receiver is not modified.
func (a *DataArray) ToUnits(to string) (*DataArray, error) {
	from, ok := a.Units()
	if !ok {
		return nil, fmt.Errorf("darray: array has no units attribute")
	}
	if units.Same(from, to) {
		return a, nil
	}
	values, err := units.ConvertDense(a.Values, from, to)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string, len(a.Attrs))
	for k, v := range a.Attrs {
		attrs[k] = v
	}
	attrs["units"] = to
	return &DataArray{
		Values: values,
		Dims:   append([]string(nil), a.Dims...),
		Attrs:  attrs,
		Coords: a.Coords,
	}, nil
}

// Transpose reorders axes by dimension name. The requested dims must be a
// permutation of the array's dims. A no-op permutation returns the
// receiver, sharing its backing storage.
func (a *DataArray) Transpose(dims ...string) (*DataArray, error) {
	if len(dims) != len(a.Dims) {
		return nil, fmt.Errorf(
			"darray: transpose to %v of array with dims %v", dims, a.Dims)
	}
	perm := make([]int, len(dims))
	same := true
	for i, want := range dims {
		found := -1
		for j, have := range a.Dims {
			if have == want {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf(
				"darray: transpose to %v of array with dims %v", dims, a.Dims)
		}
		perm[i] = found
		if found != i {
			same = false
		}
	}
	if same {
		return a, nil
	}
	return &DataArray{
		Values: transposeDense(a.Values, perm),
		Dims:   append([]string(nil), dims...),
		Attrs:  a.Attrs,
		Coords: a.Coords,
	}, nil
}

// ExpandDims returns a rank+1 array with a new leading length-1 axis
// named dim.
func (a *DataArray) ExpandDims(dim string) *DataArray {
	shape := append([]int{1}, a.Values.Shape...)
	values := sparse.ZerosDense(shape...)
	copy(values.Elements, a.Values.Elements)
	return &DataArray{
		Values: values,
		Dims:   append([]string{dim}, a.Dims...),
		Attrs:  a.Attrs,
		Coords: a.Coords,
	}
}

// State maps quantity names to labeled arrays and carries the model time.
type State struct {
	Time   time.Time
	Fields map[string]*DataArray
}

// NewState returns an empty state at the given time.
func NewState(t time.Time) *State {
	return &State{Time: t, Fields: map[string]*DataArray{}}
}

// Copy returns a state with deep-copied fields.
func (s *State) Copy() *State {
	out := NewState(s.Time)
	for name, a := range s.Fields {
		out.Fields[name] = a.Copy()
	}
	return out
}

// RawState is the kernel-facing counterpart of State: plain numeric
// arrays keyed by each quantity's alias-or-name, with the time carried
// through unchanged.
type RawState struct {
	Time   time.Time
	Arrays map[string]*sparse.DenseArray
}

// NewRawState returns an empty raw state at the given time.
func NewRawState(t time.Time) *RawState {
	return &RawState{Time: t, Arrays: map[string]*sparse.DenseArray{}}
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}

func transposeDense(a *sparse.DenseArray, perm []int) *sparse.DenseArray {
	n := len(a.Shape)
	outShape := make([]int, n)
	for i, p := range perm {
		outShape[i] = a.Shape[p]
	}
	out := sparse.ZerosDense(outShape...)
	if len(out.Elements) == 0 {
		return out
	}
	inStrides := strides(a.Shape)
	outStrides := strides(outShape)
	for oi := range out.Elements {
		rem := oi
		ii := 0
		for d := 0; d < n; d++ {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			ii += idx * inStrides[perm[d]]
		}
		out.Elements[oi] = a.Elements[ii]
	}
	return out
}

// Reshape returns a view-equivalent array with a new shape covering the
// same number of elements.
func Reshape(a *sparse.DenseArray, shape []int) (*sparse.DenseArray, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(a.Elements) {
		return nil, fmt.Errorf(
			"darray: cannot reshape %d elements to shape %v", len(a.Elements), shape)
	}
	out := sparse.ZerosDense(shape...)
	copy(out.Elements, a.Elements)
	return out, nil
}

// BroadcastTo expands length-1 axes of a up to the target shape. Axes
// with matching lengths are copied through.
func BroadcastTo(a *sparse.DenseArray, shape []int) (*sparse.DenseArray, error) {
	if len(shape) != len(a.Shape) {
		return nil, fmt.Errorf(
			"darray: cannot broadcast shape %v to %v", a.Shape, shape)
	}
	same := true
	for i, d := range a.Shape {
		if d != shape[i] {
			if d != 1 {
				return nil, fmt.Errorf(
					"darray: cannot broadcast shape %v to %v", a.Shape, shape)
			}
			same = false
		}
	}
	if same {
		return a, nil
	}
	out := sparse.ZerosDense(shape...)
	if len(out.Elements) == 0 {
		return out, nil
	}
	inStrides := strides(a.Shape)
	outStrides := strides(shape)
	for i := range a.Shape {
		if a.Shape[i] == 1 {
			inStrides[i] = 0
		}
	}
	for oi := range out.Elements {
		rem := oi
		ii := 0
		for d := range shape {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			ii += idx * inStrides[d]
		}
		out.Elements[oi] = a.Elements[ii]
	}
	return out, nil
}

// Float32Values returns a float32 copy of the array's elements, for
// kernels that compute in single precision.
func Float32Values(a *sparse.DenseArray) []float32 {
	out := make([]float32, len(a.Elements))
	for i, v := range a.Elements {
		out[i] = float32(v)
	}
	return out
}

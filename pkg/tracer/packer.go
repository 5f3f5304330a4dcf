package tracer

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/marshal"
	"github.com/san-kum/gridstate/pkg/schema"
)

// Packer stacks all registered tracers into one raw array along a
// tracer axis, and unstacks kernel output back into labeled arrays. A
// packer stays attached to its registry until Close, so tracers
// registered after construction are packed too.
type Packer struct {
	reg       *Registry
	dims      []string
	axis      int
	prepend   []Tracer
	conflicts []schema.Schema
}

// NewPacker builds a packer for the given tracer dims, which must
// contain the "tracer" token exactly once. Prepended tracers come first
// in the stacking order regardless of registration order. Each schema
// in conflicting declares quantities the packer's owner already handles
// itself; a tracer with one of those names is rejected, now and on any
// later registration.
func NewPacker(reg *Registry, tracerDims []string, prepend []Tracer, conflicting ...schema.Schema) (*Packer, error) {
	axis := -1
	for i, dim := range tracerDims {
		if dim != schema.DimTracer {
			continue
		}
		if axis >= 0 {
			return nil, fmt.Errorf("tracer: dims %v name the tracer axis more than once", tracerDims)
		}
		axis = i
	}
	if axis < 0 {
		return nil, fmt.Errorf("tracer: dims %v do not name a tracer axis", tracerDims)
	}
	p := &Packer{
		reg:       reg,
		dims:      append([]string(nil), tracerDims...),
		axis:      axis,
		prepend:   append([]Tracer(nil), prepend...),
		conflicts: conflicting,
	}
	for _, t := range p.specs() {
		if err := p.checkCollision(t.Name); err != nil {
			return nil, err
		}
	}
	reg.attach(p)
	return p, nil
}

// Close detaches the packer from its registry.
func (p *Packer) Close() { p.reg.detach(p) }

// Dims returns the packer's tracer dims, including the tracer token.
func (p *Packer) Dims() []string { return append([]string(nil), p.dims...) }

func (p *Packer) checkCollision(name string) error {
	for _, props := range p.conflicts {
		if _, ok := props[name]; ok {
			return &schema.PropertiesError{
				Quantity: name,
				Reason:   "tracer name collides with a quantity the component handles itself",
			}
		}
	}
	return nil
}

// specs returns the stacking order: prepended tracers first, then
// registered ones not already prepended, in registration order.
func (p *Packer) specs() []Tracer {
	out := append([]Tracer(nil), p.prepend...)
	units := p.reg.Units()
	for _, name := range p.reg.Names() {
		prepended := false
		for _, t := range p.prepend {
			if t.Name == name {
				prepended = true
				break
			}
		}
		if !prepended {
			out = append(out, Tracer{Name: name, Units: units[name]})
		}
	}
	return out
}

// Names returns the current stacking order of tracer names.
func (p *Packer) Names() []string {
	specs := p.specs()
	out := make([]string, len(specs))
	for i, t := range specs {
		out[i] = t.Name
	}
	return out
}

func (p *Packer) restDims() []string {
	out := make([]string, 0, len(p.dims)-1)
	for _, dim := range p.dims {
		if dim != schema.DimTracer {
			out = append(out, dim)
		}
	}
	return out
}

// InputProperties synthesizes the per-tracer input schema a component
// using this packer needs merged into its own input properties.
func (p *Packer) InputProperties() schema.Schema {
	props := schema.Schema{}
	for _, t := range p.specs() {
		props[t.Name] = schema.Properties{
			Dims:   p.restDims(),
			Units:  t.Units,
			Tracer: true,
		}
	}
	return props
}

// Pack marshals every tracer out of the state and stacks them along the
// tracer axis. With no tracers registered the result has zero length on
// every axis.
func (p *Packer) Pack(state *darray.State) (*sparse.DenseArray, error) {
	specs := p.specs()
	if len(specs) == 0 {
		return sparse.ZerosDense(make([]int, len(p.dims))...), nil
	}
	raw, err := marshal.GetRawArrays(state, p.InputProperties())
	if err != nil {
		return nil, err
	}
	arrays := make([]*sparse.DenseArray, len(specs))
	for i, t := range specs {
		arrays[i] = raw.Arrays[t.Name]
		if !sameShape(arrays[i].Shape, arrays[0].Shape) {
			return nil, &schema.StateError{
				Quantity: t.Name,
				Reason: fmt.Sprintf("tracer shape %v differs from %v",
					arrays[i].Shape, arrays[0].Shape),
			}
		}
	}
	return stack(arrays, p.axis), nil
}

// Unpack slices a stacked tracer array back into labeled arrays
// consistent with the given input state. multiplyUnit, when non-empty,
// is appended to each tracer's units, e.g. "s^-1" for tendencies.
func (p *Packer) Unpack(tracers *sparse.DenseArray, inputState *darray.State, multiplyUnit string) (map[string]*darray.DataArray, error) {
	specs := p.specs()
	if len(tracers.Shape) != len(p.dims) {
		return nil, fmt.Errorf("tracer: stacked array rank %d does not match dims %v",
			len(tracers.Shape), p.dims)
	}
	if tracers.Shape[p.axis] != len(specs) {
		return nil, fmt.Errorf("tracer: stacked array has %d tracers, expected %d",
			tracers.Shape[p.axis], len(specs))
	}
	inputProps := p.InputProperties()
	out := make(map[string]*darray.DataArray, len(specs))
	for i, t := range specs {
		unit := t.Units
		if multiplyUnit != "" {
			unit += " " + multiplyUnit
		}
		raw := darray.NewRawState(inputState.Time)
		raw.Arrays[t.Name] = take(tracers, p.axis, i)
		restored, err := marshal.RestoreDataArrays(raw, schema.Schema{
			t.Name: {Dims: p.restDims(), Units: unit},
		}, inputState, inputProps, nil)
		if err != nil {
			return nil, err
		}
		out[t.Name] = restored[t.Name]
	}
	return out, nil
}

// stack joins equally shaped arrays along a new axis at the given
// position.
func stack(arrays []*sparse.DenseArray, axis int) *sparse.DenseArray {
	n := len(arrays)
	rest := arrays[0].Shape
	outer, inner := 1, 1
	for _, s := range rest[:axis] {
		outer *= s
	}
	for _, s := range rest[axis:] {
		inner *= s
	}
	shape := make([]int, 0, len(rest)+1)
	shape = append(shape, rest[:axis]...)
	shape = append(shape, n)
	shape = append(shape, rest[axis:]...)
	out := sparse.ZerosDense(shape...)
	for i, arr := range arrays {
		for o := 0; o < outer; o++ {
			copy(out.Elements[(o*n+i)*inner:(o*n+i+1)*inner],
				arr.Elements[o*inner:(o+1)*inner])
		}
	}
	return out
}

// take extracts the i-th slice along the given axis.
func take(arr *sparse.DenseArray, axis, i int) *sparse.DenseArray {
	n := arr.Shape[axis]
	outer, inner := 1, 1
	for _, s := range arr.Shape[:axis] {
		outer *= s
	}
	for _, s := range arr.Shape[axis+1:] {
		inner *= s
	}
	rest := make([]int, 0, len(arr.Shape)-1)
	rest = append(rest, arr.Shape[:axis]...)
	rest = append(rest, arr.Shape[axis+1:]...)
	out := sparse.ZerosDense(rest...)
	for o := 0; o < outer; o++ {
		copy(out.Elements[o*inner:(o+1)*inner],
			arr.Elements[(o*n+i)*inner:(o*n+i+1)*inner])
	}
	return out
}

func sameShape(a, b []int) bool {
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

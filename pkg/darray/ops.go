package darray

import (
	"fmt"
)

// Add returns a + b elementwise, keeping a's dims and attributes. b is
// converted to a's units first, so "km" plus "m" adds in kilometers.
func Add(a, b *DataArray) (*DataArray, error) {
	au, ok := a.Units()
	if !ok {
		return nil, fmt.Errorf("darray: left operand has no units attribute")
	}
	bc, err := b.ToUnits(au)
	if err != nil {
		return nil, err
	}
	bt, err := bc.Transpose(a.Dims...)
	if err != nil {
		return nil, err
	}
	out := a.Copy()
	for i := range out.Values.Elements {
		out.Values.Elements[i] += bt.Values.Elements[i]
	}
	return out, nil
}

// Scale returns a scaled by factor, keeping dims and attributes.
func Scale(a *DataArray, factor float64) *DataArray {
	out := a.Copy()
	for i := range out.Values.Elements {
		out.Values.Elements[i] *= factor
	}
	return out
}

// AddStates adds the fields of two states quantity by quantity, keeping
// the first state's time and attributes. Every field of s1 must be
// present in s2.
func AddStates(s1, s2 *State) (*State, error) {
	out := NewState(s1.Time)
	for name, field := range s1.Fields {
		other, ok := s2.Fields[name]
		if !ok {
			return nil, fmt.Errorf("darray: quantity %s missing from second state", name)
		}
		sum, err := Add(field, other)
		if err != nil {
			return nil, fmt.Errorf("darray: adding quantity %s: %w", name, err)
		}
		out.Fields[name] = sum
	}
	return out, nil
}

// ScaleState multiplies every field of a state by a scalar, keeping
// attributes. Used by callers integrating tendencies over a timestep.
func ScaleState(s *State, factor float64) *State {
	out := NewState(s.Time)
	for name, field := range s.Fields {
		out.Fields[name] = Scale(field, factor)
	}
	return out
}

// CopyUntouchedFields copies fields present in old but absent from new
// into new, so stepped states keep quantities a component did not touch.
func CopyUntouchedFields(old, new *State) {
	for name, field := range old.Fields {
		if _, ok := new.Fields[name]; !ok {
			new.Fields[name] = field
		}
	}
}

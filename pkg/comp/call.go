package comp

import (
	"time"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/marshal"
	"github.com/san-kum/gridstate/pkg/schema"
)

// tracersKey is the raw-state key a tracer-aware component's stacked
// array travels under.
const tracersKey = "tracers"

// CallTendency runs one invocation of a tendency component: marshal the
// state, invoke the kernel, restore tendencies and diagnostics. For a
// tracer-aware component the stacked tracer array is packed into the
// raw input and its tendency unpacked with per-second units appended.
func CallTendency(c TendencyComponent, state *darray.State) (tendencies, diagnostics map[string]*darray.DataArray, err error) {
	inputProps := c.InputProperties()
	raw, err := marshal.GetRawArrays(state, inputProps)
	if err != nil {
		return nil, nil, err
	}
	ta, usesTracers := c.(TracerAware)
	if usesTracers && ta.Packer() != nil {
		raw.Arrays[tracersKey], err = ta.Packer().Pack(state)
		if err != nil {
			return nil, nil, err
		}
	} else {
		usesTracers = false
	}

	rawTend, rawDiag, err := c.ArrayCall(raw)
	if err != nil {
		return nil, nil, err
	}

	var tracerTend map[string]*darray.DataArray
	if usesTracers {
		stacked, ok := rawTend[tracersKey]
		if !ok {
			return nil, nil, &MissingOutputError{Component: c.Name(), Kind: KindTendency, Quantity: tracersKey}
		}
		tracerTend, err = ta.Packer().Unpack(stacked, state, "s^-1")
		if err != nil {
			return nil, nil, err
		}
		rawTend = withoutKey(rawTend, tracersKey)
	}

	if err := checkOutputSet(c.Name(), KindTendency, c.TendencyProperties(), rawTend); err != nil {
		return nil, nil, err
	}
	if err := checkOutputSet(c.Name(), KindDiagnostic, c.DiagnosticProperties(), rawDiag); err != nil {
		return nil, nil, err
	}

	tendencies, err = restore(rawTend, c.TendencyProperties(), state, inputProps)
	if err != nil {
		return nil, nil, err
	}
	diagnostics, err = restore(rawDiag, c.DiagnosticProperties(), state, inputProps)
	if err != nil {
		return nil, nil, err
	}
	for name, arr := range tracerTend {
		tendencies[name] = arr
	}
	return tendencies, diagnostics, nil
}

// CallDiagnostic runs one invocation of a diagnostic component.
func CallDiagnostic(c DiagnosticComponent, state *darray.State) (map[string]*darray.DataArray, error) {
	inputProps := c.InputProperties()
	raw, err := marshal.GetRawArrays(state, inputProps)
	if err != nil {
		return nil, err
	}
	rawDiag, err := c.ArrayCall(raw)
	if err != nil {
		return nil, err
	}
	if err := checkOutputSet(c.Name(), KindDiagnostic, c.DiagnosticProperties(), rawDiag); err != nil {
		return nil, err
	}
	return restore(rawDiag, c.DiagnosticProperties(), state, inputProps)
}

// Step runs one invocation of a stepper, returning its diagnostics and
// the stepped output quantities.
func Step(c Stepper, state *darray.State, dt time.Duration) (diagnostics, outputs map[string]*darray.DataArray, err error) {
	inputProps := c.InputProperties()
	raw, err := marshal.GetRawArrays(state, inputProps)
	if err != nil {
		return nil, nil, err
	}
	rawDiag, rawOut, err := c.ArrayCall(raw, dt)
	if err != nil {
		return nil, nil, err
	}
	if err := checkOutputSet(c.Name(), KindDiagnostic, c.DiagnosticProperties(), rawDiag); err != nil {
		return nil, nil, err
	}
	if err := checkOutputSet(c.Name(), KindOutput, c.OutputProperties(), rawOut); err != nil {
		return nil, nil, err
	}
	diagnostics, err = restore(rawDiag, c.DiagnosticProperties(), state, inputProps)
	if err != nil {
		return nil, nil, err
	}
	outputs, err = restore(rawOut, c.OutputProperties(), state, inputProps)
	if err != nil {
		return nil, nil, err
	}
	return diagnostics, outputs, nil
}

func restore(arrays map[string]*sparse.DenseArray, props schema.Schema, state *darray.State, inputProps schema.Schema) (map[string]*darray.DataArray, error) {
	raw := darray.NewRawState(state.Time)
	raw.Arrays = arrays
	return marshal.RestoreDataArrays(raw, props, state, inputProps, nil)
}

// checkOutputSet verifies a kernel produced exactly the raw names its
// schema declares.
func checkOutputSet(component string, kind Kind, props schema.Schema, got map[string]*sparse.DenseArray) error {
	declared := map[string]string{}
	for name, p := range props {
		declared[p.RawName(name)] = name
	}
	for rawName := range got {
		if _, ok := declared[rawName]; !ok {
			return &ExtraOutputError{Component: component, Kind: kind, Quantity: rawName}
		}
	}
	for rawName, name := range declared {
		if _, ok := got[rawName]; !ok {
			return &MissingOutputError{Component: component, Kind: kind, Quantity: name}
		}
	}
	return nil
}

func withoutKey(m map[string]*sparse.DenseArray, key string) map[string]*sparse.DenseArray {
	out := make(map[string]*sparse.DenseArray, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

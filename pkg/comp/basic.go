package comp

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
)

// ConstantTendency returns fixed, caller-supplied tendencies and
// diagnostics on every invocation.
type ConstantTendency struct {
	tendencies  map[string]*darray.DataArray
	diagnostics map[string]*darray.DataArray
}

func NewConstantTendency(tendencies, diagnostics map[string]*darray.DataArray) (*ConstantTendency, error) {
	for name, arr := range joined(tendencies, diagnostics) {
		if _, ok := arr.Units(); !ok {
			return nil, &schema.PropertiesError{Quantity: name, Reason: "missing units attribute"}
		}
	}
	return &ConstantTendency{tendencies: tendencies, diagnostics: diagnostics}, nil
}

func (c *ConstantTendency) Name() string { return "constant_tendency" }

func (c *ConstantTendency) Role() Role { return RoleTendency }

func (c *ConstantTendency) InputProperties() schema.Schema { return schema.Schema{} }

func (c *ConstantTendency) TendencyProperties() schema.Schema {
	return propertiesOf(c.tendencies)
}

func (c *ConstantTendency) DiagnosticProperties() schema.Schema {
	return propertiesOf(c.diagnostics)
}

func (c *ConstantTendency) ArrayCall(raw *darray.RawState) (map[string]*sparse.DenseArray, map[string]*sparse.DenseArray, error) {
	return rawValues(c.tendencies), rawValues(c.diagnostics), nil
}

// ConstantDiagnostic returns fixed, caller-supplied diagnostics on
// every invocation.
type ConstantDiagnostic struct {
	diagnostics map[string]*darray.DataArray
}

func NewConstantDiagnostic(diagnostics map[string]*darray.DataArray) (*ConstantDiagnostic, error) {
	for name, arr := range diagnostics {
		if _, ok := arr.Units(); !ok {
			return nil, &schema.PropertiesError{Quantity: name, Reason: "missing units attribute"}
		}
	}
	return &ConstantDiagnostic{diagnostics: diagnostics}, nil
}

func (c *ConstantDiagnostic) Name() string { return "constant_diagnostic" }

func (c *ConstantDiagnostic) Role() Role { return RoleDiagnostic }

func (c *ConstantDiagnostic) InputProperties() schema.Schema { return schema.Schema{} }

func (c *ConstantDiagnostic) DiagnosticProperties() schema.Schema {
	return propertiesOf(c.diagnostics)
}

func (c *ConstantDiagnostic) ArrayCall(raw *darray.RawState) (map[string]*sparse.DenseArray, error) {
	return rawValues(c.diagnostics), nil
}

// RelaxationTendency relaxes one quantity toward an equilibrium value
// on a per-cell timescale: d(q)/dt = (q_eq - q) / tau.
type RelaxationTendency struct {
	quantity string
	units    string
}

func NewRelaxationTendency(quantity, units string) *RelaxationTendency {
	return &RelaxationTendency{quantity: quantity, units: units}
}

func (c *RelaxationTendency) Name() string {
	return fmt.Sprintf("%s_relaxation", c.quantity)
}

func (c *RelaxationTendency) Role() Role { return RoleTendency }

func (c *RelaxationTendency) equilibriumName() string {
	return "equilibrium_" + c.quantity
}

func (c *RelaxationTendency) timescaleName() string {
	return c.quantity + "_relaxation_timescale"
}

func (c *RelaxationTendency) InputProperties() schema.Schema {
	return schema.Schema{
		c.quantity:          {Dims: []string{"*"}, Units: c.units},
		c.equilibriumName(): {Dims: []string{"*"}, Units: c.units},
		c.timescaleName():   {Dims: []string{"*"}, Units: "s"},
	}
}

func (c *RelaxationTendency) TendencyProperties() schema.Schema {
	return schema.Schema{
		c.quantity: {Dims: []string{"*"}, Units: c.units + " s^-1"},
	}
}

func (c *RelaxationTendency) DiagnosticProperties() schema.Schema {
	return schema.Schema{}
}

func (c *RelaxationTendency) ArrayCall(raw *darray.RawState) (map[string]*sparse.DenseArray, map[string]*sparse.DenseArray, error) {
	value := raw.Arrays[c.quantity]
	eq := raw.Arrays[c.equilibriumName()]
	tau := raw.Arrays[c.timescaleName()]
	tendency := sparse.ZerosDense(value.Shape...)
	for i := range tendency.Elements {
		tendency.Elements[i] = (eq.Elements[i] - value.Elements[i]) / tau.Elements[i]
	}
	return map[string]*sparse.DenseArray{c.quantity: tendency}, map[string]*sparse.DenseArray{}, nil
}

func propertiesOf(arrays map[string]*darray.DataArray) schema.Schema {
	props := schema.Schema{}
	for name, arr := range arrays {
		units, _ := arr.Units()
		props[name] = schema.Properties{
			Dims:  append([]string(nil), arr.Dims...),
			Units: units,
		}
	}
	return props
}

func rawValues(arrays map[string]*darray.DataArray) map[string]*sparse.DenseArray {
	out := make(map[string]*sparse.DenseArray, len(arrays))
	for name, arr := range arrays {
		out[name] = arr.Values.Copy()
	}
	return out
}

func joined(maps ...map[string]*darray.DataArray) map[string]*darray.DataArray {
	out := map[string]*darray.DataArray{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

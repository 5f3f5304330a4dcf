package comp

import (
	"time"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/schema"
	"github.com/san-kum/gridstate/pkg/tracer"
)

// Role tags a component with one of the closed set of behaviors the
// engine dispatches on.
type Role string

const (
	RoleTendency   Role = "tendency"
	RoleDiagnostic Role = "diagnostic"
	RoleStepper    Role = "stepper"
)

// Kind selects one of a component's property schemas.
type Kind string

const (
	KindInput      Kind = "input"
	KindTendency   Kind = "tendency"
	KindDiagnostic Kind = "diagnostic"
	KindOutput     Kind = "output"
)

// Component is the common surface of every component role.
type Component interface {
	Name() string
	Role() Role
	InputProperties() schema.Schema
}

// TendencyComponent produces time derivatives of state quantities, and
// optionally diagnostics, from one state.
type TendencyComponent interface {
	Component
	TendencyProperties() schema.Schema
	DiagnosticProperties() schema.Schema
	ArrayCall(raw *darray.RawState) (tendencies, diagnostics map[string]*sparse.DenseArray, err error)
}

// DiagnosticComponent derives diagnostic quantities from one state
// without modifying it.
type DiagnosticComponent interface {
	Component
	DiagnosticProperties() schema.Schema
	ArrayCall(raw *darray.RawState) (map[string]*sparse.DenseArray, error)
}

// Stepper advances state quantities over a timestep, producing the
// stepped outputs and optional diagnostics.
type Stepper interface {
	Component
	DiagnosticProperties() schema.Schema
	OutputProperties() schema.Schema
	ArrayCall(raw *darray.RawState, dt time.Duration) (diagnostics, outputs map[string]*sparse.DenseArray, err error)
}

// TracerAware is the opt-in capability for components that handle an
// open-ended set of tracers through a stacked array.
type TracerAware interface {
	Packer() *tracer.Packer
}

// PropertiesFor returns the component's schema of the given kind,
// dispatching on the component's role tag. Asking a component for a
// schema its role does not carry returns an empty schema.
func PropertiesFor(c Component, kind Kind) schema.Schema {
	switch kind {
	case KindInput:
		return c.InputProperties()
	case KindTendency:
		if c.Role() == RoleTendency {
			return c.(TendencyComponent).TendencyProperties()
		}
	case KindDiagnostic:
		switch c.Role() {
		case RoleTendency:
			return c.(TendencyComponent).DiagnosticProperties()
		case RoleDiagnostic:
			return c.(DiagnosticComponent).DiagnosticProperties()
		case RoleStepper:
			return c.(Stepper).DiagnosticProperties()
		}
	case KindOutput:
		if c.Role() == RoleStepper {
			return c.(Stepper).OutputProperties()
		}
	}
	return schema.Schema{}
}

// CombineComponentProperties merges the schemas of the given kind
// across all components into one consistent schema. Input schemas of
// tracer-aware components are widened with the per-tracer entries their
// packer synthesizes, so tracer quantities participate in unit and
// dimension unification like ordinary inputs. inputProps, when non-nil,
// supplies dims for entries that omit them.
func CombineComponentProperties(components []Component, kind Kind, inputProps schema.Schema) (schema.Schema, error) {
	schemas := make([]schema.Schema, 0, len(components))
	for _, c := range components {
		props := PropertiesFor(c, kind)
		if ta, ok := c.(TracerAware); ok && kind == KindInput && ta.Packer() != nil {
			widened := props.Copy()
			for name, p := range ta.Packer().InputProperties() {
				if _, exists := widened[name]; !exists {
					widened[name] = p
				}
			}
			props = widened
		}
		schemas = append(schemas, props)
	}
	return schema.CombineProperties(schemas, inputProps)
}

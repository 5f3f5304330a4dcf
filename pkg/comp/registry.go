package comp

import (
	"fmt"
	"sort"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
)

// Factory constructs a fresh component instance.
type Factory func() (Component, error)

// Registry maps component names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry pre-populated with the demo
// components.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}

	r.factories["temperature_relaxation"] = func() (Component, error) {
		return NewRelaxationTendency("air_temperature", "degK"), nil
	}
	r.factories["constant_heating"] = func() (Component, error) {
		heating := sparse.ZerosDense(8)
		for i := range heating.Elements {
			heating.Elements[i] = 0.1
		}
		arr, err := darray.New(heating, []string{"mid_levels"},
			map[string]string{"units": "degK s^-1"})
		if err != nil {
			return nil, err
		}
		return NewConstantTendency(
			map[string]*darray.DataArray{"air_temperature": arr},
			map[string]*darray.DataArray{},
		)
	}

	return r
}

// Register adds a factory under a name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Get constructs the named component.
func (r *Registry) Get(name string) (Component, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown component: %s", name)
	}
	return f()
}

// Names lists the registered component names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

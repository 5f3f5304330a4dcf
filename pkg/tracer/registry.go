package tracer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnitsConflict is returned when a tracer is re-registered with
// different units than before.
var ErrUnitsConflict = errors.New("tracer: units conflict")

// Tracer is a named passive quantity with its storage units.
type Tracer struct {
	Name  string
	Units string
}

// Registry tracks the set of registered tracers in insertion order and
// the live packers that must stay consistent with it.
type Registry struct {
	mu      sync.Mutex
	names   []string
	units   map[string]string
	packers map[*Packer]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		units:   map[string]string{},
		packers: map[*Packer]struct{}{},
	}
}

// Register adds a tracer. Registering the same name with the same units
// again is a no-op; the same name with different units is an error. If
// the new tracer's name collides with a quantity some live packer's
// owner already declares, registration is rolled back and the collision
// reported.
func (r *Registry) Register(name, unit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if known, ok := r.units[name]; ok {
		if known != unit {
			return fmt.Errorf("%w: %s registered with units %q, previously %q",
				ErrUnitsConflict, name, unit, known)
		}
		return nil
	}
	for p := range r.packers {
		if err := p.checkCollision(name); err != nil {
			return err
		}
	}
	r.names = append(r.names, name)
	r.units[name] = unit
	return nil
}

// Names returns the registered tracer names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// Units returns a copy of the name-to-units mapping.
func (r *Registry) Units() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.units))
	for k, v := range r.units {
		out[k] = v
	}
	return out
}

// Reset removes all registered tracers. Live packers remain attached
// and see the emptied registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = nil
	r.units = map[string]string{}
}

func (r *Registry) attach(p *Packer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packers[p] = struct{}{}
}

func (r *Registry) detach(p *Packer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.packers, p)
}

// DefaultRegistry is the process-wide registry used by the package-level
// helpers and by components that are not handed an explicit one.
var DefaultRegistry = NewRegistry()

// RegisterTracer adds a tracer to the default registry.
func RegisterTracer(name, unit string) error {
	return DefaultRegistry.Register(name, unit)
}

// TracerNames lists the default registry's tracers in registration order.
func TracerNames() []string { return DefaultRegistry.Names() }

// TracerUnits returns the default registry's name-to-units mapping.
func TracerUnits() map[string]string { return DefaultRegistry.Units() }

// ResetTracers clears the default registry.
func ResetTracers() { DefaultRegistry.Reset() }

package schema

import (
	"fmt"
	"sort"
)

// DimWildcard is the reserved dims token matching every axis of a
// quantity not named explicitly.
const DimWildcard = "*"

// DimTracer is the reserved axis name along which tracer quantities are
// stacked.
const DimTracer = "tracer"

// DType selects the numeric width a kernel expects for a raw array.
// Storage is float64 throughout the engine; Float32 marks arrays whose
// kernel-facing copies should be single precision.
type DType string

const (
	Float64 DType = "float64"
	Float32 DType = "float32"
)

// Properties declares the contract for a single quantity.
type Properties struct {
	Dims          []string `yaml:"dims,omitempty" json:"dims,omitempty"`
	Units         string   `yaml:"units" json:"units"`
	Alias         string   `yaml:"alias,omitempty" json:"alias,omitempty"`
	Tracer        bool     `yaml:"tracer,omitempty" json:"tracer,omitempty"`
	DType         DType    `yaml:"dtype,omitempty" json:"dtype,omitempty"`
	MatchDimsLike string   `yaml:"match_dims_like,omitempty" json:"match_dims_like,omitempty"`
}

// HasWildcard reports whether the dims list contains the wildcard token.
func (p Properties) HasWildcard() bool {
	return p.WildcardIndex() >= 0
}

// WildcardIndex returns the position of the wildcard token in the dims
// list, or -1.
func (p Properties) WildcardIndex() int {
	for i, d := range p.Dims {
		if d == DimWildcard {
			return i
		}
	}
	return -1
}

// RawName returns the key the quantity uses in a raw state: its alias if
// one is declared, else the given quantity name.
func (p Properties) RawName(name string) string {
	if p.Alias != "" {
		return p.Alias
	}
	return name
}

// Copy returns a deep copy of the properties.
func (p Properties) Copy() Properties {
	out := p
	out.Dims = append([]string(nil), p.Dims...)
	return out
}

// Schema maps quantity names to their declared properties. A component
// carries one schema per role (input, output, tendency, diagnostic).
type Schema map[string]Properties

// SortedNames returns the quantity names in sorted order. The engine
// scans schemas in this order wherever scan order is observable, since
// map iteration order is unspecified.
func (s Schema) SortedNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy of the schema.
func (s Schema) Copy() Schema {
	out := make(Schema, len(s))
	for name, props := range s {
		out[name] = props.Copy()
	}
	return out
}

// Validate checks that every entry has units, that no dims list contains
// more than one wildcard token, and that aliases are injective: no two
// quantities in one schema may resolve to the same raw name.
func (s Schema) Validate() error {
	rawNames := make(map[string]string, len(s))
	for _, name := range s.SortedNames() {
		props := s[name]
		if props.Units == "" {
			return &PropertiesError{Quantity: name, Reason: "units not specified"}
		}
		wildcards := 0
		for _, d := range props.Dims {
			if d == DimWildcard {
				wildcards++
			}
		}
		if wildcards > 1 {
			return &PropertiesError{
				Quantity: name,
				Reason:   fmt.Sprintf("dims %v contain more than one wildcard", props.Dims),
			}
		}
		raw := props.RawName(name)
		if other, ok := rawNames[raw]; ok {
			return &PropertiesError{
				Quantity: name,
				Reason:   fmt.Sprintf("raw name %q already used by %s", raw, other),
			}
		}
		rawNames[raw] = name
	}
	return nil
}

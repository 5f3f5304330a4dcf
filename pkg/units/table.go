package units

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TableEntry is a single definition in a unit-definition table. Scale and
// Offset map a value onto the canonical unit of the entry's Kind.
type TableEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Kind    string   `yaml:"kind"`
	Scale   float64  `yaml:"scale"`
	Offset  float64  `yaml:"offset,omitempty"`
}

// Table is a whole-string lookup backend built from a definition table.
// It has no compound-expression algebra; every convertible unit string
// must appear in the table.
type Table struct {
	entries map[string]TableEntry
}

// NewTable builds a table backend from definitions.
func NewTable(entries []TableEntry) *Table {
	t := &Table{entries: make(map[string]TableEntry, len(entries))}
	for _, e := range entries {
		t.entries[e.Name] = e
		for _, alias := range e.Aliases {
			t.entries[alias] = e
		}
	}
	return t
}

// LoadTable reads a YAML unit-definition table from disk.
func LoadTable(path string) ([]TableEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []TableEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("units: parsing table %s: %w", path, err)
	}
	return entries, nil
}

func (t *Table) Name() string { return "table" }

func (t *Table) resolve(unit string) (TableEntry, bool) {
	e, ok := t.entries[normalize(unit)]
	return e, ok
}

func (t *Table) Same(unit1, unit2 string) bool {
	e1, ok1 := t.resolve(unit1)
	e2, ok2 := t.resolve(unit2)
	if !ok1 || !ok2 {
		return false
	}
	return e1.Kind == e2.Kind && floatEq(e1.Scale, e2.Scale) && floatEq(e1.Offset, e2.Offset)
}

func (t *Table) Compatible(unit1, unit2 string) bool {
	e1, ok1 := t.resolve(unit1)
	e2, ok2 := t.resolve(unit2)
	if !ok1 || !ok2 {
		return false
	}
	return e1.Kind == e2.Kind
}

func (t *Table) Convert(values []float64, from, to string) ([]float64, error) {
	ef, ok := t.resolve(from)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedUnit, from)
	}
	et, ok := t.resolve(to)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedUnit, to)
	}
	if ef.Kind != et.Kind {
		return nil, &ConversionError{From: from, To: to}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v*ef.Scale + ef.Offset - et.Offset) / et.Scale
	}
	return out, nil
}

func (t *Table) Valid(unit string) bool {
	_, ok := t.resolve(unit)
	return ok
}

func (t *Table) Clean(unit string) (string, error) {
	e, ok := t.resolve(unit)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUndefinedUnit, unit)
	}
	return e.Name, nil
}

// DefaultTable covers the unit strings used by the bundled demo components
// and tests. Fuller vocabularies can be loaded with LoadTable.
func DefaultTable() []TableEntry {
	return []TableEntry{
		{Name: "m", Aliases: []string{"meter", "meters"}, Kind: "length", Scale: 1},
		{Name: "km", Aliases: []string{"kilometer", "kilometers"}, Kind: "length", Scale: 1e3},
		{Name: "cm", Kind: "length", Scale: 1e-2},
		{Name: "mm", Kind: "length", Scale: 1e-3},
		{Name: "kg", Kind: "mass", Scale: 1},
		{Name: "g", Kind: "mass", Scale: 1e-3},
		{Name: "s", Aliases: []string{"second", "seconds"}, Kind: "time", Scale: 1},
		{Name: "min", Kind: "time", Scale: 60},
		{Name: "hour", Aliases: []string{"h", "hr"}, Kind: "time", Scale: 3600},
		{Name: "day", Kind: "time", Scale: 86400},
		{Name: "K", Aliases: []string{"degK", "kelvin"}, Kind: "temperature", Scale: 1},
		{Name: "degC", Aliases: []string{"degreeC", "celsius"}, Kind: "temperature", Scale: 1, Offset: 273.15},
		{Name: "Pa", Kind: "pressure", Scale: 1},
		{Name: "hPa", Aliases: []string{"mb", "millibar"}, Kind: "pressure", Scale: 100},
		{Name: "W m^-2", Aliases: []string{"W m-2"}, Kind: "energy_flux", Scale: 1},
		{Name: "kg kg^-1", Aliases: []string{"kg kg-1", "kg/kg"}, Kind: "mass_fraction", Scale: 1},
		{Name: "kg kg^-1 s^-1", Aliases: []string{"kg kg-1 s-1"}, Kind: "mass_fraction_rate", Scale: 1},
		{Name: "K s^-1", Aliases: []string{"degK s^-1", "K s-1"}, Kind: "temperature_rate", Scale: 1},
		{Name: "m s^-1", Aliases: []string{"m s-1", "m/s"}, Kind: "velocity", Scale: 1},
		{Name: "percent", Aliases: []string{"%"}, Kind: "fraction", Scale: 0.01},
		{Name: "1", Aliases: []string{"dimensionless", ""}, Kind: "fraction", Scale: 1},
		{Name: "degrees_north", Aliases: []string{"degree_north", "degrees_N", "degreeN"}, Kind: "latitude", Scale: 1},
		{Name: "degrees_east", Aliases: []string{"degree_east", "degrees_E", "degreeE"}, Kind: "longitude", Scale: 1},
	}
}

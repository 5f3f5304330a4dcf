package units

import (
	"math"
	"strconv"
	"strings"
)

// Base dimension indices for dimensional analysis. degrees_north and
// degrees_east carry their own pseudo-dimensions so that latitude and
// longitude designators never convert into one another.
const (
	dimLength = iota
	dimMass
	dimTime
	dimTemperature
	dimAmount
	dimAngle
	dimLuminosity
	dimCount
	dimNorth
	dimEast
	numDims
)

type dimVector [numDims]int8

var baseNames = [numDims]string{
	"m", "kg", "s", "K", "mol", "rad", "cd", "count",
	"degrees_north", "degrees_east",
}

// quantity is a parsed unit expression: a dimension vector, a scale to
// coherent SI base units, and an offset (nonzero only for bare degC/degF).
type quantity struct {
	dim    dimVector
	scale  float64
	offset float64
}

type unitDef struct {
	dim        dimVector
	scale      float64
	offset     float64
	prefixable bool
}

// Registry is a dimensional-analysis backend over parsed unit strings.
type Registry struct {
	defs map[string]unitDef
}

// NewRegistry returns the default dimensional-analysis backend.
func NewRegistry() *Registry {
	return &Registry{defs: builtinDefs()}
}

func (r *Registry) Name() string { return "registry" }

func (r *Registry) Same(unit1, unit2 string) bool {
	q1, err := r.parse(unit1)
	if err != nil {
		return false
	}
	q2, err := r.parse(unit2)
	if err != nil {
		return false
	}
	return q1.dim == q2.dim && floatEq(q1.scale, q2.scale) && floatEq(q1.offset, q2.offset)
}

func (r *Registry) Compatible(unit1, unit2 string) bool {
	q1, err := r.parse(unit1)
	if err != nil {
		return false
	}
	q2, err := r.parse(unit2)
	if err != nil {
		return false
	}
	return q1.dim == q2.dim
}

func (r *Registry) Convert(values []float64, from, to string) ([]float64, error) {
	qf, err := r.parse(from)
	if err != nil {
		return nil, err
	}
	qt, err := r.parse(to)
	if err != nil {
		return nil, err
	}
	if qf.dim != qt.dim {
		return nil, &ConversionError{From: from, To: to}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v*qf.scale + qf.offset - qt.offset) / qt.scale
	}
	return out, nil
}

func (r *Registry) Valid(unit string) bool {
	_, err := r.parse(unit)
	return err == nil
}

// Clean returns the unit reduced to base dimensions, e.g. "W m^-2"
// becomes "kg s^-3". The scale factor is not part of the canonical form.
func (r *Registry) Clean(unit string) (string, error) {
	q, err := r.parse(unit)
	if err != nil {
		return "", err
	}
	var parts []string
	for i, exp := range q.dim {
		switch {
		case exp == 1:
			parts = append(parts, baseNames[i])
		case exp != 0:
			parts = append(parts, baseNames[i]+"^"+strconv.Itoa(int(exp)))
		}
	}
	if len(parts) == 0 {
		return "1", nil
	}
	return strings.Join(parts, " "), nil
}

func floatEq(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= 1e-12*scale
}

func builtinDefs() map[string]unitDef {
	defs := map[string]unitDef{}
	add := func(def unitDef, names ...string) {
		for _, name := range names {
			defs[name] = def
		}
	}
	dim := func(i int) dimVector {
		var v dimVector
		v[i] = 1
		return v
	}
	mul := func(pairs ...[2]int) dimVector {
		var v dimVector
		for _, p := range pairs {
			v[p[0]] += int8(p[1])
		}
		return v
	}

	add(unitDef{dim: dim(dimLength), scale: 1, prefixable: true},
		"m", "meter", "meters", "metre", "metres")
	add(unitDef{dim: dim(dimMass), scale: 1e-3, prefixable: true},
		"g", "gram", "grams")
	add(unitDef{dim: dim(dimTime), scale: 1, prefixable: true},
		"s", "second", "seconds", "sec")
	add(unitDef{dim: dim(dimTime), scale: 60},
		"min", "minute", "minutes")
	add(unitDef{dim: dim(dimTime), scale: 3600},
		"h", "hr", "hour", "hours")
	add(unitDef{dim: dim(dimTime), scale: 86400},
		"d", "day", "days")
	add(unitDef{dim: dim(dimTemperature), scale: 1, prefixable: true},
		"K", "kelvin", "degK", "degreeK", "degrees_K", "degree_K")
	add(unitDef{dim: dim(dimTemperature), scale: 1, offset: 273.15},
		"degC", "celsius", "degreeC", "degree_C", "degrees_C",
		"degree_Celsius", "degrees_Celsius")
	add(unitDef{dim: dim(dimTemperature), scale: 5.0 / 9.0, offset: 459.67 * 5.0 / 9.0},
		"degF", "fahrenheit", "degreeF", "degree_F", "degrees_F")
	add(unitDef{dim: dim(dimAmount), scale: 1, prefixable: true},
		"mol", "mole", "moles")
	add(unitDef{dim: dim(dimAngle), scale: 1},
		"rad", "radian", "radians")
	add(unitDef{dim: dim(dimAngle), scale: math.Pi / 180},
		"degree", "degrees", "deg")
	add(unitDef{dim: dim(dimLuminosity), scale: 1},
		"cd", "candela")
	add(unitDef{dim: dim(dimCount), scale: 1},
		"count", "counts")
	add(unitDef{dim: dim(dimCount), scale: 0.01},
		"percent")
	add(unitDef{dim: dim(dimNorth), scale: 1},
		"degrees_north", "degree_north", "degree_N", "degrees_N",
		"degreeN", "degreesN")
	add(unitDef{dim: dim(dimEast), scale: 1},
		"degrees_east", "degree_east", "degree_E", "degrees_E",
		"degreeE", "degreesE")

	newton := mul([2]int{dimMass, 1}, [2]int{dimLength, 1}, [2]int{dimTime, -2})
	add(unitDef{dim: newton, scale: 1, prefixable: true},
		"N", "newton", "newtons")
	pascal := mul([2]int{dimMass, 1}, [2]int{dimLength, -1}, [2]int{dimTime, -2})
	add(unitDef{dim: pascal, scale: 1, prefixable: true},
		"Pa", "pascal", "pascals")
	add(unitDef{dim: pascal, scale: 1e5, prefixable: true},
		"bar")
	add(unitDef{dim: pascal, scale: 100},
		"mb", "millibar", "millibars")
	joule := mul([2]int{dimMass, 1}, [2]int{dimLength, 2}, [2]int{dimTime, -2})
	add(unitDef{dim: joule, scale: 1, prefixable: true},
		"J", "joule", "joules")
	watt := mul([2]int{dimMass, 1}, [2]int{dimLength, 2}, [2]int{dimTime, -3})
	add(unitDef{dim: watt, scale: 1, prefixable: true},
		"W", "watt", "watts")
	add(unitDef{dim: mul([2]int{dimTime, -1}), scale: 1, prefixable: true},
		"Hz", "hertz")
	add(unitDef{dim: mul([2]int{dimLength, 3}), scale: 1e-3, prefixable: true},
		"L", "l", "liter", "litre")

	return defs
}

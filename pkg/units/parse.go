package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// siPrefixes are matched longest-first after an exact name lookup fails.
var siPrefixes = []struct {
	name   string
	factor float64
}{
	{"yotta", 1e24}, {"zetta", 1e21}, {"exa", 1e18}, {"peta", 1e15},
	{"tera", 1e12}, {"giga", 1e9}, {"mega", 1e6}, {"kilo", 1e3},
	{"hecto", 1e2}, {"deca", 1e1}, {"deci", 1e-1}, {"centi", 1e-2},
	{"milli", 1e-3}, {"micro", 1e-6}, {"nano", 1e-9}, {"pico", 1e-12},
	{"femto", 1e-15}, {"atto", 1e-18},
	{"da", 1e1},
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12},
	{"G", 1e9}, {"M", 1e6}, {"k", 1e3}, {"h", 1e2},
	{"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3}, {"u", 1e-6}, {"µ", 1e-6},
	{"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18},
}

func normalize(unit string) string {
	unit = strings.TrimSpace(unit)
	unit = strings.ReplaceAll(unit, "%", "percent")
	unit = strings.ReplaceAll(unit, "°", "degree")
	return unit
}

// parse evaluates a CF-style unit expression. Factors are separated by
// whitespace, "*", or "/"; exponents may be written "m^2", "m**2", or "m2".
// An offset (degC, degF) survives only when the expression is that single
// unit with exponent 1; in compound expressions offset units contribute
// scale alone, as in udunits.
func (r *Registry) parse(unit string) (quantity, error) {
	s := normalize(unit)
	if s == "" || s == "1" || s == "dimensionless" {
		return quantity{scale: 1}, nil
	}
	s = strings.ReplaceAll(s, "**", "^")
	s = strings.ReplaceAll(s, "*", " ")
	s = strings.ReplaceAll(s, "/", " / ")

	q := quantity{scale: 1}
	sign := 1
	nfactors := 0
	offsetTotal := 0.0
	offsetFactors := 0
	for _, tok := range strings.Fields(s) {
		if tok == "/" {
			sign = -1
			continue
		}
		if tok == "1" {
			nfactors++
			sign = 1
			continue
		}
		name, exp, err := splitExponent(tok)
		if err != nil {
			return quantity{}, err
		}
		def, prefix, err := r.lookup(name)
		if err != nil {
			return quantity{}, err
		}
		exp *= sign
		sign = 1
		for i := range q.dim {
			q.dim[i] += def.dim[i] * int8(exp)
		}
		q.scale *= math.Pow(def.scale*prefix, float64(exp))
		if def.offset != 0 && exp == 1 {
			offsetTotal = def.offset
			offsetFactors++
		}
		nfactors++
	}
	if nfactors == 0 {
		return quantity{}, fmt.Errorf("%w: %q", ErrUndefinedUnit, unit)
	}
	if nfactors == 1 && offsetFactors == 1 {
		q.offset = offsetTotal
	}
	return q, nil
}

func splitExponent(tok string) (string, int, error) {
	if i := strings.IndexByte(tok, '^'); i >= 0 {
		exp, err := strconv.Atoi(tok[i+1:])
		if err != nil {
			return "", 0, fmt.Errorf("units: bad exponent in %q", tok)
		}
		return tok[:i], exp, nil
	}
	j := len(tok)
	for j > 0 && tok[j-1] >= '0' && tok[j-1] <= '9' {
		j--
	}
	if j == len(tok) {
		return tok, 1, nil
	}
	k := j
	if k > 0 && (tok[k-1] == '-' || tok[k-1] == '+') {
		k--
	}
	if k == 0 {
		return tok, 1, nil
	}
	exp, err := strconv.Atoi(tok[k:])
	if err != nil {
		return "", 0, fmt.Errorf("units: bad exponent in %q", tok)
	}
	return tok[:k], exp, nil
}

func (r *Registry) lookup(name string) (unitDef, float64, error) {
	if def, ok := r.defs[name]; ok {
		return def, 1, nil
	}
	for _, p := range siPrefixes {
		if !strings.HasPrefix(name, p.name) || len(name) == len(p.name) {
			continue
		}
		if def, ok := r.defs[name[len(p.name):]]; ok && def.prefixable {
			return def, p.factor, nil
		}
	}
	return unitDef{}, 0, fmt.Errorf("%w: %q", ErrUndefinedUnit, name)
}

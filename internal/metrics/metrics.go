package metrics

import (
	"math"

	"github.com/san-kum/gridstate/pkg/darray"
)

// Metric observes a run snapshot by snapshot and reduces it to one
// number.
type Metric interface {
	Name() string
	Observe(snap *darray.RawState)
	Value() float64
	Reset()
}

// Compute runs every metric over the snapshots in order and collects
// the results by name.
func Compute(snapshots []*darray.RawState, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
		for _, snap := range snapshots {
			m.Observe(snap)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Drift measures how far a quantity's final mean sits from a target
// value.
type Drift struct {
	quantity string
	target   float64
	last     float64
	seen     bool
}

func NewDrift(quantity string, target float64) *Drift {
	return &Drift{quantity: quantity, target: target}
}

func (d *Drift) Name() string { return "drift" }

func (d *Drift) Observe(snap *darray.RawState) {
	arr, ok := snap.Arrays[d.quantity]
	if !ok || len(arr.Elements) == 0 {
		return
	}
	d.last = mean(arr.Elements)
	d.seen = true
}

func (d *Drift) Value() float64 {
	if !d.seen {
		return 0
	}
	return math.Abs(d.last - d.target)
}

func (d *Drift) Reset() {
	d.last = 0
	d.seen = false
}

// Spread measures the largest per-snapshot value range a quantity
// reaches over the run.
type Spread struct {
	quantity string
	max      float64
}

func NewSpread(quantity string) *Spread {
	return &Spread{quantity: quantity}
}

func (s *Spread) Name() string { return "spread" }

func (s *Spread) Observe(snap *darray.RawState) {
	arr, ok := snap.Arrays[s.quantity]
	if !ok || len(arr.Elements) == 0 {
		return
	}
	lo, hi := arr.Elements[0], arr.Elements[0]
	for _, v := range arr.Elements {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo > s.max {
		s.max = hi - lo
	}
}

func (s *Spread) Value() float64 { return s.max }

func (s *Spread) Reset() { s.max = 0 }

// Change measures the net movement of a quantity's mean from the first
// snapshot to the last.
type Change struct {
	quantity string
	first    float64
	last     float64
	seen     bool
}

func NewChange(quantity string) *Change {
	return &Change{quantity: quantity}
}

func (c *Change) Name() string { return "change" }

func (c *Change) Observe(snap *darray.RawState) {
	arr, ok := snap.Arrays[c.quantity]
	if !ok || len(arr.Elements) == 0 {
		return
	}
	m := mean(arr.Elements)
	if !c.seen {
		c.first = m
		c.seen = true
	}
	c.last = m
}

func (c *Change) Value() float64 {
	if !c.seen {
		return 0
	}
	return c.last - c.first
}

func (c *Change) Reset() {
	c.first = 0
	c.last = 0
	c.seen = false
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

package units

import (
	"errors"
	"math"
	"testing"
)

func TestRegistry_Valid(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		unit  string
		valid bool
	}{
		{"m", true},
		{"km", true},
		{"degK", true},
		{"degC", true},
		{"W m^-2", true},
		{"kg kg^-1 s^-1", true},
		{"m s-1", true},
		{"m/s", true},
		{"hPa", true},
		{"%", true},
		{"°C", true},
		{"degrees_north", true},
		{"", true},
		{"1", true},
		{"furlong", false},
		{"m^x", false},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			if got := r.Valid(tt.unit); got != tt.valid {
				t.Errorf("Valid(%q) = %v, want %v", tt.unit, got, tt.valid)
			}
		})
	}
}

func TestRegistry_Same(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		u1, u2 string
		same   bool
	}{
		{"m", "meters", true},
		{"K", "degK", true},
		{"m s^-1", "m s-1", true},
		{"m s^-1", "m/s", true},
		{"km", "m", false},
		{"degK", "degC", false},
		{"W m^-2", "kg s^-3", true},
		{"percent", "%", true},
		{"count", "%", false},
	}
	for _, tt := range tests {
		if got := r.Same(tt.u1, tt.u2); got != tt.same {
			t.Errorf("Same(%q, %q) = %v, want %v", tt.u1, tt.u2, got, tt.same)
		}
	}
}

func TestRegistry_Compatible(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		u1, u2     string
		compatible bool
	}{
		{"km", "cm", true},
		{"degK", "degC", true},
		{"m", "s", false},
		{"degrees_north", "degrees_east", false},
		{"degrees_north", "degrees_N", true},
		{"percent", "count", true},
		{"mb", "Pa", true},
		{"J", "W s", true},
		{"kg kg^-1", "g kg^-1", true},
	}
	for _, tt := range tests {
		if got := r.Compatible(tt.u1, tt.u2); got != tt.compatible {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tt.u1, tt.u2, got, tt.compatible)
		}
	}
}

func TestRegistry_Convert(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		from, to string
		in       float64
		want     float64
	}{
		{"degK", "degC", 280.0, 6.85},
		{"degC", "degK", 6.85, 280.0},
		{"km", "m", 1.5, 1500.0},
		{"km", "cm", 1.0, 1e5},
		{"hPa", "Pa", 10.0, 1000.0},
		{"day", "s", 1.0, 86400.0},
		{"%", "count", 50.0, 0.5},
		{"degF", "degC", 32.0, 0.0},
		{"degK s^-1", "degC s^-1", 2.0, 2.0},
	}
	for _, tt := range tests {
		out, err := r.Convert([]float64{tt.in}, tt.from, tt.to)
		if err != nil {
			t.Fatalf("Convert(%q -> %q): %v", tt.from, tt.to, err)
		}
		if math.Abs(out[0]-tt.want) > 1e-9 {
			t.Errorf("Convert(%v, %q -> %q) = %v, want %v", tt.in, tt.from, tt.to, out[0], tt.want)
		}
	}
}

func TestRegistry_ConvertIncompatible(t *testing.T) {
	r := NewRegistry()
	_, err := r.Convert([]float64{1}, "m", "s")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
}

func TestRegistry_ConvertDoesNotMutateInput(t *testing.T) {
	r := NewRegistry()
	in := []float64{1, 2, 3}
	if _, err := r.Convert(in, "km", "m"); err != nil {
		t.Fatal(err)
	}
	if in[0] != 1 || in[1] != 2 || in[2] != 3 {
		t.Errorf("input slice mutated: %v", in)
	}
}

func TestRegistry_Clean(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		unit string
		want string
	}{
		{"W m^-2", "kg s^-3"},
		{"km", "m"},
		{"kg kg^-1", "1"},
		{"m/s", "m s^-1"},
	}
	for _, tt := range tests {
		got, err := r.Clean(tt.unit)
		if err != nil {
			t.Fatalf("Clean(%q): %v", tt.unit, err)
		}
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.unit, got, tt.want)
		}
	}
}

func TestTableBackend(t *testing.T) {
	b := NewTable(DefaultTable())
	if !b.Compatible("km", "cm") {
		t.Error("expected km and cm compatible")
	}
	if b.Compatible("m", "s") {
		t.Error("expected m and s incompatible")
	}
	out, err := b.Convert([]float64{280}, "degK", "degC")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]-6.85) > 1e-9 {
		t.Errorf("Convert(280 degK -> degC) = %v, want 6.85", out[0])
	}
	if b.Valid("parsec") {
		t.Error("expected parsec invalid in default table")
	}
	if !b.Same("%", "percent") {
		t.Error("expected %% and percent to be the same unit")
	}
}

func TestSelectBackend(t *testing.T) {
	defer SetBackend(NewRegistry())

	if err := SelectBackend("table"); err != nil {
		t.Fatal(err)
	}
	if CurrentBackend().Name() != "table" {
		t.Errorf("expected table backend, got %s", CurrentBackend().Name())
	}
	if err := SelectBackend("registry"); err != nil {
		t.Fatal(err)
	}
	if err := SelectBackend("nonsense"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

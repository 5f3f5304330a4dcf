package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/comp"
	"github.com/san-kum/gridstate/pkg/darray"
)

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg(tea.Key{Type: tea.KeySpace, Runes: []rune(s)})
	}
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func demoModel(t *testing.T) Model {
	t.Helper()
	state := darray.NewState(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	for name, v := range map[string]float64{
		"air_temperature":                      300,
		"equilibrium_air_temperature":          280,
		"air_temperature_relaxation_timescale": 600,
	} {
		arr := sparse.ZerosDense(4)
		unit := "degK"
		if name == "air_temperature_relaxation_timescale" {
			unit = "s"
		}
		for i := range arr.Elements {
			arr.Elements[i] = v
		}
		a, err := darray.New(arr, []string{"mid_levels"}, map[string]string{"units": unit})
		if err != nil {
			t.Fatal(err)
		}
		state.Fields[name] = a
	}
	c := comp.NewRelaxationTendency("air_temperature", "degK")
	return NewModel(c, state, "air_temperature", time.Minute, 5)
}

func TestModelAdvancesOnTick(t *testing.T) {
	m := demoModel(t)

	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if m.step != 1 {
		t.Fatalf("step = %d", m.step)
	}
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if len(m.history) != 1 {
		t.Fatalf("history length = %d", len(m.history))
	}
	// one Euler step of (280-300)/600 K/s over 60s: 300 -> 298
	if got := m.history[0]; got < 297.9 || got > 298.1 {
		t.Errorf("mean after one step = %v", got)
	}
	if len(m.Snapshots()) != 1 {
		t.Errorf("snapshots = %d", len(m.Snapshots()))
	}
}

func TestModelStopsAtStepLimit(t *testing.T) {
	m := demoModel(t)
	for i := 0; i < 10; i++ {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Model)
	}
	if m.step != 5 {
		t.Errorf("step = %d, expected clamp at 5", m.step)
	}
}

func TestModelResetAndPause(t *testing.T) {
	m := demoModel(t)
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)

	next, _ = m.Update(keyMsg(" "))
	m = next.(Model)
	if m.running {
		t.Error("expected paused")
	}
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if m.step != 1 {
		t.Errorf("step advanced while paused: %d", m.step)
	}

	next, _ = m.Update(keyMsg("r"))
	m = next.(Model)
	if m.step != 0 || len(m.history) != 0 || !m.running {
		t.Error("reset did not restore initial state")
	}
	if got := m.state.Fields["air_temperature"].Values.Elements[0]; got != 300 {
		t.Errorf("temperature after reset = %v", got)
	}
}

func TestViewRenders(t *testing.T) {
	m := demoModel(t)
	for i := 0; i < 3; i++ {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Model)
	}
	out := m.View()
	if out == "" {
		t.Fatal("empty view")
	}
}

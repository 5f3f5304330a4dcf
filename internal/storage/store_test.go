package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/sparse"

	"github.com/san-kum/gridstate/pkg/darray"
)

func demoSnapshots() []*darray.RawState {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snapshots := make([]*darray.RawState, 0, 2)
	for i := 0; i < 2; i++ {
		snap := darray.NewRawState(t0.Add(time.Duration(i) * time.Minute))
		arr := sparse.ZerosDense(3)
		for j := range arr.Elements {
			arr.Elements[j] = float64(i*10 + j)
		}
		snap.Arrays["air_temperature"] = arr
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("temperature_relaxation", 60, demoSnapshots(),
		map[string]float64{"drift": 1.5})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Component != "temperature_relaxation" {
		t.Errorf("component = %q", meta.Component)
	}
	if meta.Steps != 2 {
		t.Errorf("steps = %d", meta.Steps)
	}
	if len(meta.Quantities) != 1 || meta.Quantities[0] != "air_temperature" {
		t.Errorf("quantities = %v", meta.Quantities)
	}
	if meta.Metrics["drift"] != 1.5 {
		t.Errorf("metrics = %v", meta.Metrics)
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states %d times", len(states), len(times))
	}
	if states[1][2] != 12 {
		t.Errorf("states[1][2] = %v", states[1][2])
	}
	if !times[1].After(times[0]) {
		t.Error("expected increasing timestamps")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.Save("constant_heating", 60, demoSnapshots(), nil); err != nil {
		t.Fatal(err)
	}
	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, "temperature_relaxation", 60, demoSnapshots()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty export")
	}
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gridstate/pkg/darray"
)

// Store persists demo runs: a metadata.json plus one states.csv of
// flattened raw arrays per snapshot, under a per-run directory.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Component  string             `json:"component"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Quantities []string           `json:"quantities"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run. Snapshots must all carry the same quantities
// with the same shapes; columns are the flattened elements of each
// quantity in sorted name order.
func (s *Store) Save(component string, dt float64, snapshots []*darray.RawState, runMetrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", component, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var quantities []string
	if len(snapshots) > 0 {
		for name := range snapshots[0].Arrays {
			quantities = append(quantities, name)
		}
		sort.Strings(quantities)
	}

	meta := RunMetadata{
		ID:         runID,
		Component:  component,
		Timestamp:  time.Now(),
		Dt:         dt,
		Steps:      len(snapshots),
		Quantities: quantities,
		Metrics:    runMetrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "states.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(snapshots) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for _, name := range quantities {
		for i := range snapshots[0].Arrays[name].Elements {
			header = append(header, fmt.Sprintf("%s[%d]", name, i))
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, snap := range snapshots {
		row := []string{snap.Time.UTC().Format(time.RFC3339)}
		for _, name := range quantities {
			arr, ok := snap.Arrays[name]
			if !ok {
				return "", fmt.Errorf("snapshot missing quantity %s", name)
			}
			for _, v := range arr.Elements {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates reads back the flattened per-snapshot values, one row per
// snapshot, without the time column.
func (s *Store) LoadStates(runID string) ([][]float64, []time.Time, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []time.Time{}, nil
	}

	times := make([]time.Time, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, nil, err
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, err
			}
			row = append(row, v)
		}
		times = append(times, ts)
		states = append(states, row)
	}

	return states, times, nil
}

package storage

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/san-kum/gridstate/pkg/darray"
)

type ExportQuantity struct {
	Shape  []int       `json:"shape"`
	Values [][]float64 `json:"values"`
}

type ExportData struct {
	Component  string                    `json:"component"`
	Dt         float64                   `json:"dt"`
	Steps      int                       `json:"steps"`
	Times      []time.Time               `json:"times"`
	Quantities map[string]ExportQuantity `json:"quantities"`
}

// ExportJSON writes a full run as one JSON document, each quantity
// carrying its shape and its flattened values per snapshot.
func ExportJSON(path, component string, dt float64, snapshots []*darray.RawState) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportJSON(file, component, dt, snapshots)
}

// ExportJSONStdout writes the same document to standard output.
func ExportJSONStdout(component string, dt float64, snapshots []*darray.RawState) error {
	return exportJSON(os.Stdout, component, dt, snapshots)
}

func exportJSON(w io.Writer, component string, dt float64, snapshots []*darray.RawState) error {
	data := ExportData{
		Component:  component,
		Dt:         dt,
		Steps:      len(snapshots),
		Times:      make([]time.Time, 0, len(snapshots)),
		Quantities: map[string]ExportQuantity{},
	}

	var names []string
	if len(snapshots) > 0 {
		for name := range snapshots[0].Arrays {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	for _, snap := range snapshots {
		data.Times = append(data.Times, snap.Time)
	}
	for _, name := range names {
		q := ExportQuantity{
			Shape:  snapshots[0].Arrays[name].Shape,
			Values: make([][]float64, 0, len(snapshots)),
		}
		for _, snap := range snapshots {
			q.Values = append(q.Values, snap.Arrays[name].Elements)
		}
		data.Quantities[name] = q
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

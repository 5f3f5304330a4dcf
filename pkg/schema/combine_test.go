package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gridstate/pkg/units"
)

func TestCombineDims(t *testing.T) {
	tests := []struct {
		name    string
		dims1   []string
		dims2   []string
		want    []string
		wantErr bool
	}{
		{
			name:  "identical",
			dims1: []string{"x", "y"},
			dims2: []string{"x", "y"},
			want:  []string{"x", "y"},
		},
		{
			name:  "reordered names",
			dims1: []string{"dim1", "dim2"},
			dims2: []string{"dim2", "dim1"},
			want:  []string{"dim1", "dim2"},
		},
		{
			name:    "disjoint names",
			dims1:   []string{"dim1", "dim2"},
			dims2:   []string{"dim1", "dim3"},
			wantErr: true,
		},
		{
			name:  "both wildcard",
			dims1: []string{"*", "z"},
			dims2: []string{"*", "y"},
			want:  []string{"*", "z", "y"},
		},
		{
			name:  "both bare wildcard",
			dims1: []string{"*"},
			dims2: []string{"*"},
			want:  []string{"*"},
		},
		{
			name:  "one wildcard exact match",
			dims1: []string{"*", "z"},
			dims2: []string{"x", "y", "z"},
			want:  []string{"*", "z", "x", "y"},
		},
		{
			name:  "wildcard absorbs everything",
			dims1: []string{"*"},
			dims2: []string{"x", "y"},
			want:  []string{"*", "x", "y"},
		},
		{
			name:    "wildcard side demands missing dim",
			dims1:   []string{"*", "z"},
			dims2:   []string{"x", "y"},
			wantErr: true,
		},
		{
			name:  "wildcard on the right",
			dims1: []string{"x", "y", "z"},
			dims2: []string{"*", "z"},
			want:  []string{"*", "z", "x", "y"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineDims(tt.dims1, tt.dims2)
			if tt.wantErr {
				var propErr *PropertiesError
				require.Error(t, err)
				require.True(t, errors.As(err, &propErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombineProperties_CompatibleUnits(t *testing.T) {
	merged, err := CombineProperties([]Schema{
		{"q": {Units: "km", Dims: []string{"d"}}},
		{"q": {Units: "cm", Dims: []string{"d"}}},
	}, nil)
	require.NoError(t, err)
	entry := merged["q"]
	assert.Equal(t, []string{"d"}, entry.Dims)
	assert.True(t, units.Compatible(entry.Units, "km"))
	assert.True(t, units.Compatible(entry.Units, "cm"))

	// opposite fold order is equally compatible
	merged, err = CombineProperties([]Schema{
		{"q": {Units: "cm", Dims: []string{"d"}}},
		{"q": {Units: "km", Dims: []string{"d"}}},
	}, nil)
	require.NoError(t, err)
	assert.True(t, units.Compatible(merged["q"].Units, "km"))
}

func TestCombineProperties_IncompatibleUnits(t *testing.T) {
	_, err := CombineProperties([]Schema{
		{"q": {Units: "m", Dims: []string{"d"}}},
		{"q": {Units: "s", Dims: []string{"d"}}},
	}, nil)
	var propErr *PropertiesError
	require.True(t, errors.As(err, &propErr))
	assert.Equal(t, "q", propErr.Quantity)
}

func TestCombineProperties_TendencyDimsScenario(t *testing.T) {
	// two components declaring tend1 with reordered dims combine fine
	merged, err := CombineProperties([]Schema{
		{"tend1": {Units: "m s^-1", Dims: []string{"dim1", "dim2"}}},
		{"tend1": {Units: "m s^-1", Dims: []string{"dim2", "dim1"}}},
	}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"dim1", "dim2"}, merged["tend1"].Dims)

	// declaring dim3 instead is a schema error
	_, err = CombineProperties([]Schema{
		{"tend1": {Units: "m s^-1", Dims: []string{"dim1", "dim2"}}},
		{"tend1": {Units: "m s^-1", Dims: []string{"dim1", "dim3"}}},
	}, nil)
	var propErr *PropertiesError
	require.True(t, errors.As(err, &propErr))
	assert.Equal(t, "tend1", propErr.Quantity)
}

func TestCombineProperties_BorrowsDimsFromInput(t *testing.T) {
	input := Schema{"q": {Units: "m", Dims: []string{"*", "z"}}}
	merged, err := CombineProperties([]Schema{
		{"q": {Units: "m"}},
	}, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"*", "z"}, merged["q"].Dims)

	_, err = CombineProperties([]Schema{
		{"q": {Units: "m"}},
	}, nil)
	require.Error(t, err)
}

func TestCombineProperties_FirstUnitsWin(t *testing.T) {
	merged, err := CombineProperties([]Schema{
		{"q": {Units: "km", Dims: []string{"d"}}},
		{"q": {Units: "m", Dims: []string{"d"}}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "km", merged["q"].Units)
}

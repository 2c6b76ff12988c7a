package features

import (
	"errors"
	"testing"

	"github.com/drakos74/segments/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func newTable() *model.Table {
	return model.NewTable("test", []model.Customer{
		{ID: 1, Gender: "Male", Age: 19, Income: 15, Score: 39},
		{ID: 2, Gender: "Male", Age: 21, Income: 15, Score: 81},
		{ID: 3, Gender: "Female", Age: 20, Income: 16, Score: 6},
		{ID: 4, Gender: "Female", Age: 23, Income: 16, Score: 77},
		{ID: 5, Gender: "Female", Age: 31, Income: 17, Score: 40},
		{ID: 6, Gender: "Female", Age: 22, Income: 78, Score: 76},
		{ID: 7, Gender: "Male", Age: 35, Income: 120, Score: 79},
	})
}

func TestPrepare(t *testing.T) {
	table := newTable()
	before := table.Rows()

	scaled, err := Prepare(table)
	require.NoError(t, err)

	m := scaled.Matrix()
	r, c := m.Dims()
	assert.Equal(t, table.Len(), r)
	assert.Equal(t, 2, c)
	assert.Equal(t, Segmentation, scaled.Columns)

	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, m)
		n := float64(len(col))
		assert.InDelta(t, 0, stat.Mean(col, nil), 1e-9)
		// stat.Variance is the sample variance
		assert.InDelta(t, 1, stat.Variance(col, nil)*(n-1)/n, 1e-9)
	}

	// the table must not change
	assert.Equal(t, before, table.Rows())
}

func TestPrepare_Inverse(t *testing.T) {
	table := newTable()
	scaled, err := Prepare(table, model.Income, model.Score)
	require.NoError(t, err)

	original := scaled.Inverse(scaled.Matrix())
	for i := 0; i < table.Len(); i++ {
		assert.InDelta(t, table.Row(i).Income, original.At(i, 0), 1e-9)
		assert.InDelta(t, table.Row(i).Score, original.At(i, 1), 1e-9)
	}

	p := scaled.Transform([]float64{15, 39})
	assert.InDeltaSlice(t, []float64{scaled.Matrix().At(0, 0), scaled.Matrix().At(0, 1)}, p, 1e-9)
}

func TestPrepare_Errors(t *testing.T) {

	type test struct {
		table   *model.Table
		columns []string
	}

	tests := map[string]test{
		"nil-table": {},
		"empty-table": {
			table: model.NewTable("empty", nil),
		},
		"non-numeric": {
			table:   newTable(),
			columns: []string{model.Income, model.Gender},
		},
		"unknown": {
			table:   newTable(),
			columns: []string{"Height", model.Score},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Prepare(tt.table, tt.columns...)
			assert.True(t, errors.Is(err, InvalidInputErr))
		})
	}
}

func TestStandardize(t *testing.T) {

	type test struct {
		rows  [][]float64
		scale []float64
		err   bool
	}

	tests := map[string]test{
		"constant-column": {
			rows:  [][]float64{{1, 5}, {2, 5}, {3, 5}},
			scale: []float64{0.816496580927726, 1},
		},
		"ragged": {
			rows: [][]float64{{1, 5}, {2}},
			err:  true,
		},
		"empty": {
			rows: [][]float64{},
			err:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			scaled, err := Standardize(tt.rows)
			if tt.err {
				assert.True(t, errors.Is(err, InvalidInputErr))
				return
			}
			assert.NoError(t, err)
			assert.InDeltaSlice(t, tt.scale, scaled.Scale, 1e-12)
		})
	}
}

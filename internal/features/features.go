// Package features turns customer columns into a standardized feature matrix.
package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/drakos74/segments/internal/buffer"
	"github.com/drakos74/segments/internal/model"
	"gonum.org/v1/gonum/mat"
)

var InvalidInputErr = errors.New("invalid input")

// Segmentation are the columns used for customer segmentation.
var Segmentation = []string{model.Income, model.Score}

// Scaler holds the per column statistics used for standardization.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Scaled is a standardized feature matrix together with the scaler that produced it.
type Scaled struct {
	Scaler
	matrix *mat.Dense
}

// Prepare selects the given columns of the table and standardizes each of them
// to zero mean and unit variance. The table is left untouched.
func Prepare(table *model.Table, columns ...string) (*Scaled, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("empty table: %w", InvalidInputErr)
	}
	if len(columns) == 0 {
		columns = Segmentation
	}
	rows := make([][]float64, table.Len())
	for i := range rows {
		rows[i] = make([]float64, len(columns))
	}
	for j, c := range columns {
		values, err := table.Column(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), InvalidInputErr)
		}
		for i, v := range values {
			rows[i][j] = v
		}
	}
	scaled, err := Standardize(rows)
	if err != nil {
		return nil, err
	}
	scaled.Columns = columns
	return scaled, nil
}

// Standardize rescales each column of the given rows independently,
// using the population mean and standard deviation of that column.
// Columns with zero variance keep a scale of 1 and end up all zero.
func Standardize(rows [][]float64) (*Scaled, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix: %w", InvalidInputErr)
	}
	dim := len(rows[0])
	collector := buffer.NewStatsCollector(dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d columns instead of %d: %w", i, len(row), dim, InvalidInputErr)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("non-finite value at [%d,%d]: %w", i, j, InvalidInputErr)
			}
		}
		collector.Push(row...)
	}

	scaler := Scaler{
		Columns: make([]string, dim),
		Mean:    make([]float64, dim),
		Scale:   make([]float64, dim),
	}
	for j, s := range collector.Stats() {
		scaler.Columns[j] = fmt.Sprintf("x%d", j)
		scaler.Mean[j] = s.Avg()
		scaler.Scale[j] = s.StDev()
		if scaler.Scale[j] == 0 {
			scaler.Scale[j] = 1
		}
	}

	m := mat.NewDense(len(rows), dim, nil)
	for i, row := range rows {
		m.SetRow(i, scaler.Transform(row))
	}
	return &Scaled{
		Scaler: scaler,
		matrix: m,
	}, nil
}

// Matrix returns the standardized feature matrix.
// The returned matrix is shared, callers must not modify it.
func (s *Scaled) Matrix() *mat.Dense {
	return s.matrix
}

// Transform maps a point from original units into the scaled space.
func (s Scaler) Transform(point []float64) []float64 {
	out := make([]float64, len(point))
	for j, v := range point {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// InverseTransform maps a point from the scaled space back to original units.
func (s Scaler) InverseTransform(point []float64) []float64 {
	out := make([]float64, len(point))
	for j, v := range point {
		out[j] = v*s.Scale[j] + s.Mean[j]
	}
	return out
}

// Inverse maps every row of the given scaled matrix back to original units.
func (s Scaler) Inverse(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		out.SetRow(i, s.InverseTransform(row))
	}
	return out
}

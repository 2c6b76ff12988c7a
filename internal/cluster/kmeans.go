// Package cluster partitions standardized feature matrices with k-means.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	InvalidInputErr = errors.New("invalid input")
	ComputationErr  = errors.New("computation failed")
)

const (
	DefaultSeed          = 42
	DefaultRestarts      = 10
	DefaultMaxIterations = 300
	DefaultTolerance     = 1e-4
)

// Options configures the k-means runs.
type Options struct {
	// Seed drives the centroid initialisation, equal seeds give equal results.
	// Zero selects DefaultSeed.
	Seed int64 `json:"seed"`
	// Restarts is the number of initialisations, the one with the lowest inertia wins.
	Restarts      int `json:"restarts"`
	MaxIterations int `json:"max_iterations"`
	// Tolerance is relative to the mean column variance of the input.
	Tolerance float64 `json:"tolerance"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Seed:          DefaultSeed,
		Restarts:      DefaultRestarts,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// WithDefaults fills in any unset field.
func (o Options) WithDefaults() Options {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Restarts <= 0 {
		o.Restarts = DefaultRestarts
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// Result is the outcome of a k-means fit.
type Result struct {
	// Assignments holds the cluster label of each input row.
	Assignments []int
	// Centers has one row per cluster, in the same space as the input.
	Centers    *mat.Dense
	Inertia    float64
	Iterations int
}

// K returns the number of clusters.
func (r *Result) K() int {
	k, _ := r.Centers.Dims()
	return k
}

// Sizes returns the number of rows assigned to each cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, r.K())
	for _, l := range r.Assignments {
		sizes[l]++
	}
	return sizes
}

// Center returns the coordinates of the given cluster center.
func (r *Result) Center(i int) []float64 {
	return mat.Row(nil, i, r.Centers)
}

// Fit partitions the rows of x into k clusters with the lloyd engine.
// Repeated calls with the same input, k and options give identical results.
func Fit(x *mat.Dense, k int, opts Options) (*Result, error) {
	return NewLloyd(opts).Fit(x, k)
}

// solution is the working form of a result.
type solution struct {
	labels     []int
	centers    [][]float64
	inertia    float64
	iterations int
}

func (s solution) result() (*Result, error) {
	if math.IsNaN(s.inertia) || math.IsInf(s.inertia, 0) {
		return nil, fmt.Errorf("non-finite inertia %v: %w", s.inertia, ComputationErr)
	}
	dim := len(s.centers[0])
	centers := mat.NewDense(len(s.centers), dim, nil)
	for i, c := range s.centers {
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("non-finite center %d: %w", i, ComputationErr)
			}
		}
		centers.SetRow(i, c)
	}
	labels := make([]int, len(s.labels))
	copy(labels, s.labels)
	return &Result{
		Assignments: labels,
		Centers:     centers,
		Inertia:     s.inertia,
		Iterations:  s.iterations,
	}, nil
}

// lloyd runs the assignment / update iterations starting from the given centers.
func lloyd(rows [][]float64, centers [][]float64, maxIterations int, tol float64) solution {
	k := len(centers)
	labels := make([]int, len(rows))
	iterations := 0
	for iterations < maxIterations {
		iterations++
		assign(rows, centers, labels)
		relocate(rows, centers, labels, k)
		next := update(rows, labels, k)
		shift := 0.0
		for c := range centers {
			shift += sqDist(centers[c], next[c])
		}
		centers = next
		if shift <= tol {
			break
		}
	}
	// final assignment against the last centers,
	// unless it would leave a cluster empty.
	final := make([]int, len(rows))
	assign(rows, centers, final)
	if dense(final, k) {
		labels = final
	}
	inertia := 0.0
	for i, row := range rows {
		inertia += sqDist(row, centers[labels[i]])
	}
	return solution{
		labels:     labels,
		centers:    centers,
		inertia:    inertia,
		iterations: iterations,
	}
}

// plusPlus picks k initial centers with the k-means++ weighting.
func plusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	chosen := make(map[int]bool, k)
	centers := make([][]float64, 0, k)

	first := rng.Intn(n)
	chosen[first] = true
	centers = append(centers, clone(rows[first]))

	d2 := make([]float64, n)
	for i, row := range rows {
		d2[i] = sqDist(row, centers[0])
	}
	for len(centers) < k {
		next := -1
		total := floats.Sum(d2)
		if total > 0 {
			target := rng.Float64() * total
			cum := 0.0
			for i, d := range d2 {
				if d == 0 {
					continue
				}
				cum += d
				next = i
				if cum > target {
					break
				}
			}
		} else {
			// fewer distinct points than clusters
			for i := 0; i < n; i++ {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		chosen[next] = true
		centers = append(centers, clone(rows[next]))
		for i, row := range rows {
			if d := sqDist(row, rows[next]); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centers
}

// assign sets each label to the nearest center, ties go to the lower index.
func assign(rows [][]float64, centers [][]float64, labels []int) {
	for i, row := range rows {
		best := 0
		bestD := math.Inf(1)
		for c, center := range centers {
			if d := sqDist(row, center); d < bestD {
				best = c
				bestD = d
			}
		}
		labels[i] = best
	}
}

// relocate moves the farthest points into empty clusters.
// Only points of clusters with more than one member are moved,
// so no new empty cluster is created.
func relocate(rows [][]float64, centers [][]float64, labels []int, k int) {
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		far := -1
		farD := -1.0
		for i, row := range rows {
			if counts[labels[i]] <= 1 {
				continue
			}
			if d := sqDist(row, centers[labels[i]]); d > farD {
				far = i
				farD = d
			}
		}
		if far < 0 {
			return
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c]++
	}
}

// update computes the mean of each cluster.
func update(rows [][]float64, labels []int, k int) [][]float64 {
	dim := len(rows[0])
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]int, k)
	for i, row := range rows {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}
	for c := range sums {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), sums[c])
		}
	}
	return sums
}

// extend adds the point farthest from its nearest center as a new center.
func extend(rows [][]float64, centers [][]float64) [][]float64 {
	far := 0
	farD := -1.0
	for i, row := range rows {
		nearest := math.Inf(1)
		for _, c := range centers {
			if d := sqDist(row, c); d < nearest {
				nearest = d
			}
		}
		if nearest > farD {
			far = i
			farD = nearest
		}
	}
	next := make([][]float64, 0, len(centers)+1)
	for _, c := range centers {
		next = append(next, clone(c))
	}
	return append(next, clone(rows[far]))
}

func tolerance(rows [][]float64, tol float64) float64 {
	dim := len(rows[0])
	n := float64(len(rows))
	variance := 0.0
	for j := 0; j < dim; j++ {
		mean := 0.0
		for _, row := range rows {
			mean += row[j]
		}
		mean /= n
		for _, row := range rows {
			variance += (row[j] - mean) * (row[j] - mean) / n
		}
	}
	return tol * variance / float64(dim)
}

func dense(labels []int, k int) bool {
	seen := make([]bool, k)
	for _, l := range labels {
		seen[l] = true
	}
	for _, s := range seen {
		if !s {
			return false
		}
	}
	return true
}

func validK(k, n int) error {
	if k < 1 || k > n {
		return fmt.Errorf("k must be within [1,%d] but was %d: %w", n, k, InvalidInputErr)
	}
	return nil
}

func rowsOf(x *mat.Dense) ([][]float64, error) {
	if x == nil {
		return nil, fmt.Errorf("no matrix: %w", InvalidInputErr)
	}
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("empty matrix: %w", InvalidInputErr)
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
		for j, v := range rows[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("non-finite value at [%d,%d]: %w", i, j, InvalidInputErr)
			}
		}
	}
	return rows, nil
}

func sqDist(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

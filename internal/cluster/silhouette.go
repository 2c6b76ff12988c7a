package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Silhouette returns the mean silhouette coefficient of the given labelling.
// Points in singleton clusters count as 0.
func Silhouette(x *mat.Dense, labels []int) (float64, error) {
	rows, err := rowsOf(x)
	if err != nil {
		return 0, err
	}
	if len(labels) != len(rows) {
		return 0, fmt.Errorf("got %d labels for %d rows: %w", len(labels), len(rows), InvalidInputErr)
	}
	k := 0
	for _, l := range labels {
		if l < 0 {
			return 0, fmt.Errorf("negative label %d: %w", l, InvalidInputErr)
		}
		if l+1 > k {
			k = l + 1
		}
	}
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	clusters := 0
	for _, s := range sizes {
		if s > 0 {
			clusters++
		}
	}
	if clusters < 2 || clusters >= len(rows) {
		return 0, fmt.Errorf("silhouette needs 2 to %d clusters but got %d: %w", len(rows)-1, clusters, InvalidInputErr)
	}

	total := 0.0
	sums := make([]float64, k)
	for i, row := range rows {
		for c := range sums {
			sums[c] = 0
		}
		for j, other := range rows {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(row, other, 2)
		}
		own := labels[i]
		if sizes[own] == 1 {
			continue
		}
		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c, s := range sums {
			if c == own || sizes[c] == 0 {
				continue
			}
			b = math.Min(b, s/float64(sizes[c]))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(len(rows)), nil
}

package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Point is a single entry of the elbow curve.
type Point struct {
	K       int     `json:"k"`
	Inertia float64 `json:"inertia"`
}

// trainer runs an independent fit for k clusters.
type trainer func(rows [][]float64, k int, tol float64) (solution, error)

func fitWith(x *mat.Dense, k int, opts Options, train trainer) (*Result, error) {
	rows, err := rowsOf(x)
	if err != nil {
		return nil, err
	}
	if err := validK(k, len(rows)); err != nil {
		return nil, err
	}
	ss, err := chain(rows, k, opts, train)
	if err != nil {
		return nil, err
	}
	return ss[k-1].result()
}

func curveWith(x *mat.Dense, maxK int, opts Options, train trainer) ([]Point, error) {
	rows, err := rowsOf(x)
	if err != nil {
		return nil, err
	}
	if maxK < 1 || maxK > len(rows) {
		return nil, fmt.Errorf("max k must be within [1,%d] but was %d: %w", len(rows), maxK, InvalidInputErr)
	}
	ss, err := chain(rows, maxK, opts, train)
	if err != nil {
		return nil, err
	}
	curve := make([]Point, len(ss))
	for i, s := range ss {
		curve[i] = Point{
			K:       i + 1,
			Inertia: s.inertia,
		}
	}
	return curve, nil
}

// chain fits k = 1..maxK. Every k gets its own fit from the trainer. That fit is
// compared against a run seeded with the previous centers plus the farthest point
// and the lower inertia is kept, so inertia never increases with k.
func chain(rows [][]float64, maxK int, opts Options, train trainer) ([]solution, error) {
	tol := tolerance(rows, opts.Tolerance)
	ss := make([]solution, 0, maxK)
	var prev solution
	for k := 1; k <= maxK; k++ {
		s, err := train(rows, k, tol)
		if err != nil {
			return nil, fmt.Errorf("could not fit for k = %d: %w", k, err)
		}
		if k > 1 {
			if warm := lloyd(rows, extend(rows, prev.centers), opts.MaxIterations, tol); warm.inertia < s.inertia {
				s = warm
			}
			// float rounding only
			if s.inertia > prev.inertia {
				s.inertia = prev.inertia
			}
		}
		if _, err := s.result(); err != nil {
			return nil, fmt.Errorf("could not fit for k = %d: %w", k, err)
		}
		ss = append(ss, s)
		prev = s
	}
	return ss, nil
}

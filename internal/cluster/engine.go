package cluster

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const (
	GomlEngine  = "goml"
	LloydEngine = "lloyd"
)

// Engine fits k-means models.
type Engine interface {
	Name() string
	// Fit partitions the rows of x into k clusters.
	Fit(x *mat.Dense, k int) (*Result, error)
	// Curve returns the inertia for k = 1..maxK.
	// The point for k carries the inertia of Fit for the same k.
	Curve(x *mat.Dense, maxK int) ([]Point, error)
}

// NewEngine creates the engine with the given name.
// An empty name selects the goml engine.
func NewEngine(name string, opts Options) (Engine, error) {
	switch strings.ToLower(name) {
	case "", GomlEngine:
		return NewGoml(opts), nil
	case LloydEngine:
		return NewLloyd(opts), nil
	}
	return nil, fmt.Errorf("unknown engine '%s': %w", name, InvalidInputErr)
}

// Lloyd is the k-means++ / lloyd implementation of this package.
type Lloyd struct {
	opts Options
}

// NewLloyd creates a new lloyd engine.
func NewLloyd(opts Options) *Lloyd {
	return &Lloyd{opts: opts.WithDefaults()}
}

func (l *Lloyd) Name() string {
	return LloydEngine
}

func (l *Lloyd) Fit(x *mat.Dense, k int) (*Result, error) {
	return fitWith(x, k, l.opts, l.train)
}

func (l *Lloyd) Curve(x *mat.Dense, maxK int) ([]Point, error) {
	return curveWith(x, maxK, l.opts, l.train)
}

// train keeps the best of the seeded restarts.
func (l *Lloyd) train(rows [][]float64, k int, tol float64) (solution, error) {
	rng := rand.New(rand.NewSource(l.opts.Seed))
	var best solution
	for r := 0; r < l.opts.Restarts; r++ {
		s := lloyd(rows, plusPlus(rows, k, rng), l.opts.MaxIterations, tol)
		if r == 0 || s.inertia < best.inertia {
			best = s
		}
	}
	return best, nil
}

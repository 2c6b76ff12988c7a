package cluster

import (
	"fmt"
	"io/ioutil"
	"math/rand"
	"sync"

	goml "github.com/cdipaolo/goml/cluster"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// goml draws from the global math/rand source,
// runs are serialised so that each seed applies to exactly one run.
var gomlMutex = new(sync.Mutex)

// Goml fits k-means with the goml library.
type Goml struct {
	opts Options
}

// NewGoml creates a new goml engine.
func NewGoml(opts Options) *Goml {
	return &Goml{opts: opts.WithDefaults()}
}

func (g *Goml) Name() string {
	return GomlEngine
}

func (g *Goml) Fit(x *mat.Dense, k int) (*Result, error) {
	return fitWith(x, k, g.opts, g.train)
}

func (g *Goml) Curve(x *mat.Dense, maxK int) ([]Point, error) {
	return curveWith(x, maxK, g.opts, g.train)
}

// train runs goml once per restart, seeded with seed + restart.
// goml keeps training on the rows it picked as centroids, so every run learns
// on its own copy and the centroids are settled on the actual rows afterwards.
func (g *Goml) train(rows [][]float64, k int, tol float64) (solution, error) {
	gomlMutex.Lock()
	defer gomlMutex.Unlock()

	var best solution
	for r := 0; r < g.opts.Restarts; r++ {
		set := make([][]float64, len(rows))
		for i, row := range rows {
			set[i] = clone(row)
		}
		model := goml.NewKMeans(k, g.opts.MaxIterations, set)
		model.Output = ioutil.Discard
		// NewKMeans seeds the global source from the clock
		rand.Seed(g.opts.Seed + int64(r))
		if err := model.Learn(); err != nil {
			log.Error().Err(err).Int("k", k).Int("rows", len(rows)).Msg("could not train goml k-means")
			return solution{}, fmt.Errorf("could not train: %s: %w", err.Error(), ComputationErr)
		}
		if len(model.Centroids) != k {
			return solution{}, fmt.Errorf("expected %d centroids but got %d: %w", k, len(model.Centroids), ComputationErr)
		}
		centroids := make([][]float64, k)
		for i, c := range model.Centroids {
			centroids[i] = clone(c)
		}
		s := lloyd(rows, centroids, g.opts.MaxIterations, tol)
		if r == 0 || s.inertia < best.inertia {
			best = s
		}
	}
	return best, nil
}

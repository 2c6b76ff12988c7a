// Package eda builds the distribution summaries of the exploratory view.
package eda

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/drakos74/segments/internal/buffer"
	"github.com/drakos74/segments/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const DefaultBins = 20

var InvalidInputErr = errors.New("invalid input")

// Bin is a single histogram bucket covering [Lower, Upper).
// The last bin of a histogram also includes its upper bound.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the distribution of a numeric column.
type Histogram struct {
	Column string  `json:"column"`
	Total  int     `json:"total"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Bins   []Bin   `json:"bins"`
}

// Share is the part of the rows carrying a label.
type Share struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// Breakdown is the distribution of a categorical column.
type Breakdown struct {
	Column string  `json:"column"`
	Total  int     `json:"total"`
	Shares []Share `json:"shares"`
}

// Summary holds the four exploratory distributions.
type Summary struct {
	Age    Histogram `json:"age"`
	Gender Breakdown `json:"gender"`
	Income Histogram `json:"income"`
	Score  Histogram `json:"score"`
}

// Summarize builds the exploratory summary of the given table.
func Summarize(table *model.Table, bins int) (Summary, error) {
	if table == nil || table.Len() == 0 {
		return Summary{}, fmt.Errorf("empty table: %w", InvalidInputErr)
	}
	summary := Summary{
		Gender: NewBreakdown(model.Gender, table.Labels()),
	}
	for column, h := range map[string]*Histogram{
		model.Age:    &summary.Age,
		model.Income: &summary.Income,
		model.Score:  &summary.Score,
	} {
		values, err := table.Column(column)
		if err != nil {
			return Summary{}, fmt.Errorf("%s: %w", err.Error(), InvalidInputErr)
		}
		histogram, err := NewHistogram(column, values, bins)
		if err != nil {
			return Summary{}, err
		}
		*h = histogram
	}
	return summary, nil
}

// NewHistogram splits [min, max] of the values into equal width bins.
func NewHistogram(column string, values []float64, bins int) (Histogram, error) {
	if len(values) == 0 {
		return Histogram{}, fmt.Errorf("no values for '%s': %w", column, InvalidInputErr)
	}
	if bins < 1 {
		return Histogram{}, fmt.Errorf("invalid bin count %d: %w", bins, InvalidInputErr)
	}
	stats := buffer.NewStats()
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Histogram{}, fmt.Errorf("non-finite value in '%s': %w", column, InvalidInputErr)
		}
		stats.Push(v)
	}

	lower, upper := stats.Min(), stats.Max()
	if lower == upper {
		lower -= 0.5
		upper += 0.5
	}
	dividers := floats.Span(make([]float64, bins+1), lower, upper)
	// stat.Histogram counts [d[i], d[i+1]), the maximum has to fall inside the last bin.
	edges := make([]float64, len(dividers))
	copy(edges, dividers)
	edges[bins] = math.Nextafter(upper, math.Inf(1))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	counts := stat.Histogram(make([]float64, bins), edges, sorted, nil)

	h := Histogram{
		Column: column,
		Total:  stats.Count(),
		Min:    stats.Min(),
		Max:    stats.Max(),
		Mean:   stats.Avg(),
		StdDev: stats.StDev(),
		Bins:   make([]Bin, bins),
	}
	for i := range h.Bins {
		h.Bins[i] = Bin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}
	return h, nil
}

// NewBreakdown counts the labels, shares are sorted by label.
func NewBreakdown(column string, labels []string) Breakdown {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	b := Breakdown{
		Column: column,
		Total:  len(labels),
		Shares: make([]Share, 0, len(counts)),
	}
	for l, c := range counts {
		b.Shares = append(b.Shares, Share{
			Label:      l,
			Count:      c,
			Proportion: float64(c) / float64(len(labels)),
		})
	}
	sort.Slice(b.Shares, func(i, j int) bool {
		return b.Shares[i].Label < b.Shares[j].Label
	})
	return b
}

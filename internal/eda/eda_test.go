package eda

import (
	"context"
	"errors"
	"testing"

	"github.com/drakos74/segments/internal/model"
	"github.com/drakos74/segments/internal/storage/file/csv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistogram(t *testing.T) {

	type test struct {
		values []float64
		bins   int
		counts []int
		lower  float64
		upper  float64
	}

	tests := map[string]test{
		"uniform": {
			values: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			bins:   5,
			counts: []int{2, 2, 2, 2, 3},
			lower:  0,
			upper:  10,
		},
		"max-in-last-bin": {
			values: []float64{10, 0, 10, 10},
			bins:   2,
			counts: []int{1, 3},
			lower:  0,
			upper:  10,
		},
		"constant": {
			values: []float64{3, 3, 3},
			bins:   4,
			counts: []int{0, 0, 3, 0},
			lower:  2.5,
			upper:  3.5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, err := NewHistogram("x", tt.values, tt.bins)
			require.NoError(t, err)
			require.Equal(t, tt.bins, len(h.Bins))
			counts := make([]int, len(h.Bins))
			for i, b := range h.Bins {
				counts[i] = b.Count
			}
			assert.Equal(t, tt.counts, counts)
			assert.Equal(t, tt.lower, h.Bins[0].Lower)
			assert.Equal(t, tt.upper, h.Bins[len(h.Bins)-1].Upper)
			assert.Equal(t, len(tt.values), h.Total)
		})
	}
}

func TestNewHistogram_InvalidInput(t *testing.T) {
	_, err := NewHistogram("x", nil, 5)
	assert.True(t, errors.Is(err, InvalidInputErr))
	_, err = NewHistogram("x", []float64{1}, 0)
	assert.True(t, errors.Is(err, InvalidInputErr))
}

func TestNewBreakdown(t *testing.T) {
	b := NewBreakdown(model.Gender, []string{"Male", "Female", "Female", "Female"})
	assert.Equal(t, 4, b.Total)
	assert.Equal(t, []Share{
		{Label: "Female", Count: 3, Proportion: 0.75},
		{Label: "Male", Count: 1, Proportion: 0.25},
	}, b.Shares)
}

func TestSummarize(t *testing.T) {
	table, err := csv.NewLoader().Load(context.Background(), "../../data/customers.csv")
	require.NoError(t, err)

	summary, err := Summarize(table, DefaultBins)
	require.NoError(t, err)

	for _, h := range []Histogram{summary.Age, summary.Income, summary.Score} {
		assert.Equal(t, DefaultBins, len(h.Bins))
		sum := 0
		for _, b := range h.Bins {
			sum += b.Count
		}
		assert.Equal(t, table.Len(), sum, h.Column)
	}

	total := 0.0
	for _, s := range summary.Gender.Shares {
		total += s.Proportion
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, model.Age, summary.Age.Column)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(model.NewTable("empty", nil), DefaultBins)
	assert.True(t, errors.Is(err, InvalidInputErr))
}

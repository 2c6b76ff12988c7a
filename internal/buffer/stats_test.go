package buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Push(t *testing.T) {

	l := 1001

	type test struct {
		transform func(i int) float64
		avg       float64
		count     int
		min       float64
		max       float64
		stDev     float64
		variance  float64
	}

	tests := map[string]test{
		"monotonically-increasing-+": {
			transform: func(i int) float64 {
				return float64(i)
			},
			avg:      float64(l / 2),
			count:    l,
			min:      0,
			max:      float64(l) - 1,
			stDev:    289,
			variance: 83500,
		},
		"monotonically-increasing-0": {
			transform: func(i int) float64 {
				return float64(-1*l/2) + float64(i)
			},
			avg:   0,
			count: l,
			min:   -500,
			max:   500,
			// NOTE : these are the same as the one above
			stDev:    289,
			variance: 83500,
		},
		"monotonically-decreasing--": {
			transform: func(i int) float64 {
				return -1 * float64(i)
			},
			avg:      -1 * float64(l/2),
			count:    l,
			min:      -1 * (float64(l) - 1),
			max:      0,
			stDev:    289,
			variance: 83500,
		},
		"constant": {
			transform: func(i int) float64 {
				return 7
			},
			avg:      7,
			count:    l,
			min:      7,
			max:      7,
			stDev:    0,
			variance: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stats := NewStats()
			for i := 0; i < l; i++ {
				stats.Push(tt.transform(i))
			}
			assert.Equal(t, tt.count, stats.Count())
			assert.InDelta(t, tt.avg, stats.Avg(), 1e-9)
			assert.Equal(t, tt.min, stats.Min())
			assert.Equal(t, tt.max, stats.Max())
			assert.Equal(t, tt.stDev, math.Round(stats.StDev()))
			assert.InDelta(t, tt.variance, stats.Variance(), 1e-6)
		})
	}
}

func TestStats_Empty(t *testing.T) {
	stats := NewStats()
	assert.Equal(t, 0, stats.Count())
	assert.Equal(t, 0.0, stats.Variance())
	assert.Equal(t, 0.0, stats.StDev())
}

func TestStatsCollector_Push(t *testing.T) {
	collector := NewStatsCollector(2)
	collector.Push(1, 10)
	collector.Push(3, 30)

	assert.Equal(t, 2, collector.Size())
	stats := collector.Stats()
	assert.Equal(t, 2.0, stats[0].Avg())
	assert.Equal(t, 20.0, stats[1].Avg())
	assert.Equal(t, 1.0, stats[0].StDev())
	assert.Equal(t, 10.0, stats[1].StDev())

	assert.Panics(t, func() {
		collector.Push(1)
	})
}

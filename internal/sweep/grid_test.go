package sweep

import (
	"testing"

	"github.com/newthinker/bankroll/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_Values(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want []float64
	}{
		{"tenths stop exclusive", Range{0.1, 0.5, 0.1}, []float64{0.1, 0.2, 0.3, 0.4}},
		{"stop not on grid", Range{0.25, 1.0, 0.3}, []float64{0.25, 0.55, 0.85}},
		{"single value", Range{1, 1.5, 1}, []float64{1}},
		{"includes up to 1.0", Range{0.1, 1.05, 0.1}, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.Values()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRange_ValuesInvalid(t *testing.T) {
	tests := []struct {
		name string
		r    Range
	}{
		{"zero step", Range{0.1, 1, 0}},
		{"negative step", Range{0.1, 1, -0.1}},
		{"empty", Range{0.5, 0.5, 0.1}},
		{"reversed", Range{1, 0.5, 0.1}},
		{"non-positive start", Range{0, 1, 0.1}},
		{"too many values", Range{1e-9, 1, 1e-9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Values()
			assert.ErrorIs(t, err, core.ErrInvalidSweepRange)
		})
	}
}

func TestGrid_Points(t *testing.T) {
	g := Grid{
		CapitalPerTrade:      Range{0.5, 1.5, 0.5},
		LossStreakThresholds: []int{3, 10},
	}

	points, err := g.Points(20)
	require.NoError(t, err)
	assert.Equal(t, []Point{
		{0.5, 3}, {0.5, 10},
		{1.0, 3}, {1.0, 10},
	}, points)
}

func TestGrid_PointsDefaultThreshold(t *testing.T) {
	points, err := Grid{CapitalPerTrade: Range{0.5, 1, 0.25}}.Points(20)
	require.NoError(t, err)
	assert.Equal(t, []Point{{0.5, 20}, {0.75, 20}}, points)
}

func TestGrid_PointsNegativeThreshold(t *testing.T) {
	_, err := Grid{CapitalPerTrade: Range{0.5, 1, 0.25}, LossStreakThresholds: []int{-1}}.Points(20)
	assert.ErrorIs(t, err, core.ErrInvalidSweepRange)
}

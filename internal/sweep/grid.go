package sweep

import (
	"fmt"
	"math"

	"github.com/newthinker/bankroll/internal/core"
)

// valuePrecision rounds generated grid values so 0.1 + 2*0.1 prints as 0.3
const valuePrecision = 1e9

// maxGridValues guards against a tiny step producing an unbounded grid
const maxGridValues = 100000

// Range is an arithmetic progression, stop exclusive
type Range struct {
	Start float64 `json:"start" mapstructure:"start"`
	Stop  float64 `json:"stop" mapstructure:"stop"`
	Step  float64 `json:"step" mapstructure:"step"`
}

// Values expands the range. Each value is start + k*step, so rounding error does
// not accumulate across the grid.
func (r Range) Values() ([]float64, error) {
	switch {
	case r.Step <= 0 || math.IsNaN(r.Step):
		return nil, core.WrapError(core.ErrInvalidSweepRange, fmt.Errorf("step must be positive, got %g", r.Step))
	case r.Start >= r.Stop:
		return nil, core.WrapError(core.ErrInvalidSweepRange, fmt.Errorf("range [%g, %g) is empty", r.Start, r.Stop))
	case r.Start <= 0:
		return nil, core.WrapError(core.ErrInvalidSweepRange, fmt.Errorf("capital per trade must start above zero, got %g", r.Start))
	}

	n := int(math.Ceil((r.Stop-r.Start)/r.Step - 1/valuePrecision))
	if n > maxGridValues {
		return nil, core.WrapError(core.ErrInvalidSweepRange, fmt.Errorf("range yields %d values, limit is %d", n, maxGridValues))
	}

	values := make([]float64, 0, n)
	for k := 0; ; k++ {
		v := math.Round((r.Start+float64(k)*r.Step)*valuePrecision) / valuePrecision
		if v >= r.Stop {
			break
		}
		values = append(values, v)
	}
	return values, nil
}

// Grid is the set of parameter combinations one sweep explores
type Grid struct {
	CapitalPerTrade      Range `json:"capital_per_trade"`
	LossStreakThresholds []int `json:"loss_streak_thresholds,omitempty"`
}

// Point is one grid combination
type Point struct {
	CapitalPerTrade     float64 `json:"capital_per_trade"`
	LossStreakThreshold int     `json:"loss_streak_threshold"`
}

// Points expands the grid in sweep order: capital fraction outer, threshold inner.
// An empty threshold list uses defaultThreshold.
func (g Grid) Points(defaultThreshold int) ([]Point, error) {
	values, err := g.CapitalPerTrade.Values()
	if err != nil {
		return nil, err
	}

	thresholds := g.LossStreakThresholds
	if len(thresholds) == 0 {
		thresholds = []int{defaultThreshold}
	}
	for _, th := range thresholds {
		if th < 0 {
			return nil, core.WrapError(core.ErrInvalidSweepRange, fmt.Errorf("loss streak threshold cannot be negative, got %d", th))
		}
	}

	points := make([]Point, 0, len(values)*len(thresholds))
	for _, v := range values {
		for _, th := range thresholds {
			points = append(points, Point{CapitalPerTrade: v, LossStreakThreshold: th})
		}
	}
	return points, nil
}

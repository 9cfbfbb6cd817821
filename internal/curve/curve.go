// Package curve derives running peak and drawdown from a simulated equity series.
package curve

import (
	"fmt"
	"math"

	"github.com/newthinker/bankroll/internal/core"
	"github.com/newthinker/bankroll/internal/simulation"
	"gonum.org/v1/gonum/floats"
)

// Annotate fills EquityPeak and Drawdown on every row in place.
// Drawdown is (peak - equity) / peak * -1, rounded to 2 decimals.
func Annotate(rows []simulation.Row) error {
	peak := math.Inf(-1)
	for i := range rows {
		peak = math.Max(peak, rows[i].Equity)
		if peak <= 0 {
			return core.WrapError(core.ErrDivisionByZeroInDrawdown,
				fmt.Errorf("row %d: peak equity %g", i, peak))
		}
		rows[i].EquityPeak = peak
		rows[i].Drawdown = round2((peak - rows[i].Equity) / peak * -1)
	}
	return nil
}

// WorstDrawdown returns the most negative drawdown of annotated rows
func WorstDrawdown(rows []simulation.Row) float64 {
	if len(rows) == 0 {
		return 0
	}
	return floats.Min(drawdowns(rows))
}

// drawdowns extracts the drawdown series
func drawdowns(rows []simulation.Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Drawdown
	}
	return out
}

func round2(x float64) float64 {
	r := math.Round(x*100) / 100
	if r == 0 {
		return 0 // no negative zero in reports
	}
	return r
}

package curve

import (
	"math"

	"github.com/newthinker/bankroll/internal/simulation"
	"gonum.org/v1/gonum/stat"
)

// Stats holds performance statistics of the trades a run actually took
type Stats struct {
	TotalTrades   int     `json:"total_trades"`
	TakenTrades   int     `json:"taken_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`     // Percentage of profitable taken trades
	TotalReturn   float64 `json:"total_return"` // Equity change over the run, percent
	MeanReturn    float64 `json:"mean_return"`  // Mean allocated return per taken trade
	StdDevReturn  float64 `json:"stddev_return"`
	SharpeRatio   float64 `json:"sharpe_ratio"` // Per-trade mean / stddev, not annualised
	MaxDrawdown   float64 `json:"max_drawdown"` // Most negative drawdown, fraction
}

// CalculateStats computes statistics from annotated rows
func CalculateStats(run *simulation.Run) Stats {
	if run == nil || len(run.Rows) == 0 {
		return Stats{}
	}

	var returns []float64
	var winning, losing int
	for _, r := range run.Rows {
		if !r.Taken() {
			continue
		}
		returns = append(returns, r.Trade.ProfitFraction*run.Params.CapitalPerTrade)
		if r.Trade.IsWin() {
			winning++
		} else {
			losing++
		}
	}

	s := Stats{
		TotalTrades:   run.Trades,
		TakenTrades:   len(returns),
		WinningTrades: winning,
		LosingTrades:  losing,
		MaxDrawdown:   WorstDrawdown(run.Rows),
	}
	if len(returns) > 0 {
		s.WinRate = float64(winning) / float64(len(returns)) * 100
	}
	if start := run.StartingEquity(); start != 0 {
		s.TotalReturn = (run.EndingEquity() - start) / start * 100
	}

	if len(returns) >= 2 {
		s.MeanReturn, s.StdDevReturn = stat.MeanStdDev(returns, nil)
		if s.StdDevReturn > 0 && !math.IsNaN(s.StdDevReturn) {
			s.SharpeRatio = s.MeanReturn / s.StdDevReturn
		}
	} else if len(returns) == 1 {
		s.MeanReturn = returns[0]
	}
	return s
}

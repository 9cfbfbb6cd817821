package simulation

import (
	"math"

	"github.com/newthinker/bankroll/internal/core"
)

// floorEpsilon absorbs float noise so that 4 / 0.1 floors to 40, not 39
const floorEpsilon = 1e-9

// Params holds the knobs of one simulation run
type Params struct {
	StartingCapital     float64
	CapitalPerTrade     float64 // fraction of current equity allocated to each trade
	MarginFactor        float64 // total exposure allowed, as a multiple of equity
	LossStreakThreshold int     // streak length beyond which trades are skipped
}

// MaxConcurrentTrades is floor(MarginFactor / CapitalPerTrade)
func (p Params) MaxConcurrentTrades() int {
	if p.CapitalPerTrade <= 0 {
		return 0
	}
	return int(math.Floor(p.MarginFactor/p.CapitalPerTrade + floorEpsilon))
}

// Row is one entry of the simulated sequence. Row 0 is the seed row.
type Row struct {
	Index int
	Seed  bool
	Trade core.TradeRecord

	Equity          float64
	LossStreakCount int
	LossStreakReset bool
	SkipReason      core.SkipReason
	ConcurrentOpen  int

	// Filled in by curve.Annotate
	EquityPeak float64
	Drawdown   float64
}

// Taken returns true for a trade row that was not skipped
func (r Row) Taken() bool {
	return !r.Seed && !r.SkipReason.Skipped()
}

// Run is the complete output of one simulation
type Run struct {
	Params              Params
	MaxConcurrentTrades int
	Rows                []Row

	Trades            int
	Taken             int
	SkippedCapacity   int
	SkippedLossStreak int
}

// StartingEquity returns the seed row equity
func (r *Run) StartingEquity() float64 {
	return r.Rows[0].Equity
}

// EndingEquity returns the equity after the last row
func (r *Run) EndingEquity() float64 {
	return r.Rows[len(r.Rows)-1].Equity
}

package report

import (
	"fmt"
	"io"

	"github.com/newthinker/bankroll/internal/curve"
	"github.com/newthinker/bankroll/internal/simulation"
	"github.com/newthinker/bankroll/internal/sweep"
	"github.com/olekukonko/tablewriter"
)

// Console renders human-readable tables.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PrintRun prints the row table of a single simulation followed by its stats.
func (c *Console) PrintRun(run *simulation.Run, stats curve.Stats) {
	fmt.Fprintf(c.out, "\ncapital/trade %.4g | margin %.4g | max concurrent %d | streak threshold %d\n",
		run.Params.CapitalPerTrade, run.Params.MarginFactor, run.MaxConcurrentTrades, run.Params.LossStreakThreshold)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Symbol", "Start", "End", "Profit%", "Equity", "Streak", "Open", "Skip", "Peak", "DD")

	for _, rec := range RowRecords(run) {
		skip := rec.SkipReason
		if skip == "none" {
			skip = ""
		}
		table.Append(
			fmt.Sprintf("%d", rec.Index),
			rec.Symbol,
			rec.StartTime,
			rec.EndTime,
			fmt.Sprintf("%.2f", rec.ProfitPercent),
			fmt.Sprintf("%.2f", rec.Equity),
			fmt.Sprintf("%d", rec.LossStreakCount),
			fmt.Sprintf("%d", rec.ConcurrentOpen),
			skip,
			fmt.Sprintf("%.2f", rec.EquityPeak),
			fmt.Sprintf("%.2f", rec.Drawdown),
		)
	}
	table.Render()

	c.PrintStats(stats)
}

// PrintStats prints the summary statistics of a run.
func (c *Console) PrintStats(s curve.Stats) {
	fmt.Fprintf(c.out, "\n  Trades:        %d (%d taken)\n", s.TotalTrades, s.TakenTrades)
	fmt.Fprintf(c.out, "  Win rate:      %.1f%%\n", s.WinRate)
	fmt.Fprintf(c.out, "  Total return:  %.2f%%\n", s.TotalReturn)
	fmt.Fprintf(c.out, "  Max drawdown:  %.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(c.out, "  Sharpe/trade:  %.3f\n", s.SharpeRatio)
}

// PrintSweep prints one line per iteration in sweep order, then any failures.
func (c *Console) PrintSweep(rep *sweep.Report) {
	fmt.Fprintf(c.out, "\nsweep %s: %d iterations\n", rep.ID, len(rep.Outcomes))

	table := tablewriter.NewWriter(c.out)
	table.Header("Cap/Trade", "Streak", "Max Open", "End Equity", "Worst DD", "Taken", "Skip Cap", "Skip Streak")

	for _, res := range rep.Results() {
		table.Append(
			fmt.Sprintf("%.4g", res.CapitalPerTrade),
			fmt.Sprintf("%d", res.LossStreakThreshold),
			fmt.Sprintf("%d", res.MaxConcurrentTrades),
			fmt.Sprintf("%.2f", res.EndingEquity),
			fmt.Sprintf("%.2f%%", res.WorstDrawdown*100),
			fmt.Sprintf("%d", res.Taken),
			fmt.Sprintf("%d", res.SkippedCapacity),
			fmt.Sprintf("%d", res.SkippedLossStreak),
		)
	}
	table.Render()

	for _, f := range rep.Failures() {
		fmt.Fprintf(c.out, "  FAILED cap/trade %.4g streak %d: %v\n",
			f.Point.CapitalPerTrade, f.Point.LossStreakThreshold, f.Err)
	}

	if best := rep.Best(); best != nil {
		fmt.Fprintf(c.out, "  Best ending equity: %.2f at cap/trade %.4g\n", best.EndingEquity, best.CapitalPerTrade)
	}
}

// PrintResults prints stored history rows.
func (c *Console) PrintResults(results []sweep.Result) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Cap/Trade", "Streak", "End Equity", "Worst DD", "Taken")
	for _, res := range results {
		table.Append(
			shortID(res.RunID),
			fmt.Sprintf("%.4g", res.CapitalPerTrade),
			fmt.Sprintf("%d", res.LossStreakThreshold),
			fmt.Sprintf("%.2f", res.EndingEquity),
			fmt.Sprintf("%.2f%%", res.WorstDrawdown*100),
			fmt.Sprintf("%d", res.Taken),
		)
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

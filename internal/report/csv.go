package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/newthinker/bankroll/internal/simulation"
	"github.com/newthinker/bankroll/internal/sweep"
)

// TimeLayout is used for every timestamp written to CSV.
const TimeLayout = "2006-01-02 15:04:05"

// RowRecord is the CSV form of one simulated row.
type RowRecord struct {
	Index           int     `csv:"index"`
	Symbol          string  `csv:"symbol"`
	StartTime       string  `csv:"start_time"`
	EndTime         string  `csv:"end_time"`
	ProfitPercent   float64 `csv:"profit_%"`
	Equity          float64 `csv:"equity"`
	LossStreakCount int     `csv:"loss_streak_count"`
	LossStreakReset bool    `csv:"loss_streak_reset"`
	SkipReason      string  `csv:"skip_reason"`
	ConcurrentOpen  int     `csv:"concurrent_open"`
	EquityPeak      float64 `csv:"equity_peak"`
	Drawdown        float64 `csv:"drawdown"`
}

// RowRecords flattens a run, seed row included, into CSV records.
func RowRecords(run *simulation.Run) []RowRecord {
	records := make([]RowRecord, 0, len(run.Rows))
	for _, r := range run.Rows {
		rec := RowRecord{
			Index:           r.Index,
			Equity:          r.Equity,
			LossStreakCount: r.LossStreakCount,
			LossStreakReset: r.LossStreakReset,
			SkipReason:      r.SkipReason.String(),
			ConcurrentOpen:  r.ConcurrentOpen,
			EquityPeak:      r.EquityPeak,
			Drawdown:        r.Drawdown,
		}
		if !r.Seed {
			rec.Symbol = r.Trade.Symbol
			rec.StartTime = formatTime(r.Trade.StartTime)
			rec.EndTime = formatTime(r.Trade.EndTime)
			rec.ProfitPercent = r.Trade.ProfitFraction * 100
		}
		records = append(records, rec)
	}
	return records
}

// WriteRowsCSV writes every row of run as CSV with a header line.
func WriteRowsCSV(w io.Writer, run *simulation.Run) error {
	records := RowRecords(run)
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("writing rows csv: %w", err)
	}
	return nil
}

// WriteResultsCSV writes one line per sweep result in sweep order.
func WriteResultsCSV(w io.Writer, results []sweep.Result) error {
	if err := gocsv.Marshal(&results, w); err != nil {
		return fmt.Errorf("writing results csv: %w", err)
	}
	return nil
}

// ResultsCSV is WriteResultsCSV into memory.
func ResultsCSV(results []sweep.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RowsCSV is WriteRowsCSV into memory.
func RowsCSV(run *simulation.Run) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRowsCSV(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

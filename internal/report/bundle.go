package report

import (
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/newthinker/bankroll/internal/curve"
	"github.com/newthinker/bankroll/internal/sweep"
)

// Artifact names inside a sweep bundle.
const (
	ResultsFile = "results.csv"
	SummaryFile = "summary.json"
	RunsDir     = "runs"
)

// Summary is the JSON overview stored next to the result table.
type Summary struct {
	SweepID     string          `json:"sweep_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Iterations  int             `json:"iterations"`
	Failed      int             `json:"failed"`
	Best        *sweep.Result   `json:"best,omitempty"`
	Runs        []SummaryRun    `json:"runs"`
	Failures    []SummaryFailed `json:"failures,omitempty"`
}

type SummaryRun struct {
	sweep.Result
	Stats curve.Stats `json:"stats"`
}

type SummaryFailed struct {
	Point sweep.Point `json:"point"`
	Error string      `json:"error"`
}

// Bundle renders a sweep report into named files: the results table, a JSON
// summary and one row table per successful run under runs/.
func Bundle(rep *sweep.Report, now time.Time) (map[string][]byte, error) {
	files := make(map[string][]byte, len(rep.Outcomes)+2)

	results, err := ResultsCSV(rep.Results())
	if err != nil {
		return nil, err
	}
	files[ResultsFile] = results

	summary := Summary{
		SweepID:     rep.ID,
		GeneratedAt: now.UTC(),
		Iterations:  len(rep.Outcomes),
		Best:        rep.Best(),
		Runs:        []SummaryRun{},
	}
	for _, o := range rep.Outcomes {
		if o.Failed() {
			summary.Failed++
			summary.Failures = append(summary.Failures, SummaryFailed{Point: o.Point, Error: o.Err.Error()})
			continue
		}
		summary.Runs = append(summary.Runs, SummaryRun{Result: *o.Result, Stats: o.Stats})

		if o.Run != nil {
			rows, err := RowsCSV(o.Run)
			if err != nil {
				return nil, fmt.Errorf("run %s: %w", o.Result.RunID, err)
			}
			files[path.Join(RunsDir, o.Result.RunID+".csv")] = rows
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	files[SummaryFile] = data

	return files, nil
}

package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/newthinker/bankroll/internal/core"
)

const (
	colType   = "type"
	colTime   = "date/time"
	colProfit = "profit_%"
)

// headerAliases maps alternative column names onto the canonical ones
var headerAliases = map[string]string{
	"timestamp":      colTime,
	"time":           colTime,
	"profit_percent": colProfit,
	"profit_pct":     colProfit,
}

var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// logRow is one raw CSV row after header normalisation
type logRow struct {
	Type      string `csv:"type"`
	Timestamp string `csv:"date/time"`
	Profit    string `csv:"profit_%"`
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parsePercent reads a percentage-point cell; blank cells (entry rows) read as zero.
func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid profit %q: %w", s, err)
	}
	return v, nil
}

// NormalizeColumn lowercases a header and replaces spaces with underscores,
// so "Profit %" becomes "profit_%" and "Date/Time" becomes "date/time".
func NormalizeColumn(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "\ufeff")
	n = strings.ReplaceAll(n, " ", "_")
	if alias, ok := headerAliases[n]; ok {
		return alias
	}
	return n
}

// normalizedCSV feeds pre-read rows with a normalised header to gocsv.
type normalizedCSV struct {
	rows [][]string
	pos  int
}

func (n *normalizedCSV) Read() ([]string, error) {
	if n.pos >= len(n.rows) {
		return nil, io.EOF
	}
	row := n.rows[n.pos]
	n.pos++
	return row, nil
}

func (n *normalizedCSV) ReadAll() ([][]string, error) {
	rest := n.rows[n.pos:]
	n.pos = len(n.rows)
	return rest, nil
}

// ReadLog parses one symbol's CSV trade log.
func ReadLog(symbol string, r io.Reader) (core.SymbolLog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return core.SymbolLog{}, fmt.Errorf("reading %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return core.SymbolLog{}, core.WrapError(core.ErrNoData, fmt.Errorf("%s: empty trade log", symbol))
	}

	seen := make(map[string]bool, len(rows[0]))
	for i, col := range rows[0] {
		rows[0][i] = NormalizeColumn(col)
		seen[rows[0][i]] = true
	}
	for _, required := range []string{colType, colTime, colProfit} {
		if !seen[required] {
			return core.SymbolLog{}, core.WrapError(core.ErrMalformedLedger,
				fmt.Errorf("%s: missing column %q", symbol, required))
		}
	}

	var parsed []logRow
	if err := gocsv.UnmarshalCSV(&normalizedCSV{rows: rows}, &parsed); err != nil {
		return core.SymbolLog{}, core.WrapError(core.ErrMalformedLedger, fmt.Errorf("%s: %w", symbol, err))
	}

	log := core.SymbolLog{Symbol: symbol, Events: make([]core.RawEvent, 0, len(parsed))}
	for i, row := range parsed {
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return core.SymbolLog{}, core.WrapError(core.ErrMalformedLedger, fmt.Errorf("%s row %d: %w", symbol, i+1, err))
		}
		profit, err := parsePercent(row.Profit)
		if err != nil {
			return core.SymbolLog{}, core.WrapError(core.ErrMalformedLedger, fmt.Errorf("%s row %d: %w", symbol, i+1, err))
		}
		log.Events = append(log.Events, core.RawEvent{
			Type:          core.ParseEventType(row.Type),
			Timestamp:     ts,
			ProfitPercent: profit,
		})
	}
	return log, nil
}

// LoadDir reads every *.csv file in dir as one symbol's log. The symbol is the file
// name up to its first dot. Files are read in name order so the result is stable.
func LoadDir(dir string) ([]core.SymbolLog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing trade logs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no csv trade logs in %s", dir))
	}

	logs := make([]core.SymbolLog, 0, len(names))
	for _, name := range names {
		log, err := readFile(filepath.Join(dir, name), symbolFromFile(name))
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func readFile(path, symbol string) (core.SymbolLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.SymbolLog{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadLog(symbol, f)
}

func symbolFromFile(name string) string {
	if i := strings.Index(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

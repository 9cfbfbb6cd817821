package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/bankroll/internal/app"
	"github.com/newthinker/bankroll/internal/config"
	"github.com/stretchr/testify/require"
)

const msftLog = `Trade #,Type,Signal,Date/Time,Price USD,Contracts,Profit USD,Profit %
1,Entry Long,Long,2024-01-02 09:30,100.00,10,,
1,Exit Long,Close,2024-01-03 15:00,110.00,10,100.00,10.00
2,Entry Long,Long,2024-01-04 09:30,110.00,10,,
2,Exit Long,Close,2024-01-05 15:00,104.50,10,-55.00,-5.00
`

// newTestApp builds an App over a one-symbol ledger with a local archive.
func newTestApp(t *testing.T) *app.App {
	t.Helper()

	ledgerDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ledgerDir, "MSFT.csv"), []byte(msftLog), 0644))

	cfg := config.Defaults()
	cfg.Ledger.Dir = ledgerDir
	cfg.Output.Archive.Path = filepath.Join(t.TempDir(), "archive")
	cfg.Sweep.CapitalPerTrade = config.RangeConfig{Start: 0.5, Stop: 1.5, Step: 0.5}
	cfg.Sweep.Workers = 2

	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

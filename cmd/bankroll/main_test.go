package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/bankroll/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nvdaLog = `Trade #,Type,Signal,Date/Time,Price USD,Contracts,Profit USD,Profit %
1,Entry Long,Long,2024-03-01 09:30,100.00,1,,
1,Exit Long,Close,2024-03-01 15:00,110.00,1,10.00,10.00
2,Entry Long,Long,2024-03-04 09:30,110.00,1,,
2,Exit Long,Close,2024-03-04 15:00,104.50,1,-5.50,-5.00
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NVDA.csv"), []byte(nvdaLog), 0644))

	cfgPath := filepath.Join(dir, "bankroll.yaml")
	cfg := "ledger:\n  dir: " + dir + "\n" +
		"output:\n  archive:\n    type: localfs\n    path: " + filepath.Join(dir, "archive") + "\n" +
		"sweep:\n  capital_per_trade: {start: 0.5, stop: 1.5, step: 0.5}\n  workers: 2\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return dir, cfgPath
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bankroll dev")
}

func TestSimulateCommand(t *testing.T) {
	dir, cfgPath := writeConfig(t)
	csvPath := filepath.Join(dir, "rows.csv")

	out, err := execute(t, "simulate", "-c", cfgPath, "--log-level", "error",
		"--capital-per-trade", "0.5", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1023.75")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "NVDA")
}

func TestSweepCommand(t *testing.T) {
	dir, cfgPath := writeConfig(t)
	metricsPath := filepath.Join(dir, "bankroll.prom")

	out, err := execute(t, "sweep", "-c", cfgPath, "--log-level", "error",
		"--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1045.00")
	assert.Contains(t, out, "Archived")

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "bankroll_sweeps_total")
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Output.Dir = filepath.Join(dir, "out")

	p, err := outputPath(cfg, "runs/rows.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "runs", "rows.csv"), p)
	assert.DirExists(t, filepath.Join(dir, "out", "runs"))

	abs := filepath.Join(dir, "elsewhere.csv")
	p, err = outputPath(cfg, abs)
	require.NoError(t, err)
	assert.Equal(t, abs, p)
}

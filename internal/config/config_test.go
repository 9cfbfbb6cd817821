package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/bankroll/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
simulation:
  starting_capital: 30000
  margin_factor: 2

sweep:
  capital_per_trade:
    start: 0.5
    stop: 2.5
    step: 0.5
  loss_streak_thresholds: [5, 10]

ledger:
  dir: "/data/trades"
  pairing: following

output:
  archive:
    type: s3
    s3:
      bucket: backtests

notifiers:
  webhook:
    enabled: true
    url: "http://hooks.local/sweeps"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Simulation.StartingCapital != 30000 {
		t.Errorf("expected starting capital 30000, got %g", cfg.Simulation.StartingCapital)
	}
	if cfg.Simulation.MarginFactor != 2 {
		t.Errorf("expected margin factor 2, got %g", cfg.Simulation.MarginFactor)
	}
	// unset keys keep their defaults
	if cfg.Simulation.LossStreakThreshold != 20 {
		t.Errorf("expected default threshold 20, got %d", cfg.Simulation.LossStreakThreshold)
	}
	if cfg.Sweep.CapitalPerTrade != (RangeConfig{Start: 0.5, Stop: 2.5, Step: 0.5}) {
		t.Errorf("unexpected range %+v", cfg.Sweep.CapitalPerTrade)
	}
	assert.Equal(t, []int{5, 10}, cfg.Sweep.LossStreakThresholds)
	assert.Equal(t, "following", cfg.Ledger.Pairing)
	assert.Equal(t, "s3", cfg.Output.Archive.Type)
	assert.Equal(t, "backtests", cfg.Output.Archive.S3.Bucket)
	assert.True(t, cfg.Notifiers["webhook"].Enabled)
	assert.Equal(t, "http://hooks.local/sweeps", cfg.Notifiers["webhook"].URL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_S3_SECRET", "s3cr3t")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
output:
  archive:
    s3:
      secret_key: "${TEST_S3_SECRET}"
`), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Output.Archive.S3.SecretKey)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BANKROLL_SIMULATION_MARGIN_FACTOR", "6")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("simulation:\n  margin_factor: 4\n"), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cfg.Simulation.MarginFactor)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Simulation.StartingCapital != 1000 {
		t.Errorf("expected default starting capital 1000, got %g", cfg.Simulation.StartingCapital)
	}
	if cfg.Simulation.MarginFactor != 4 {
		t.Errorf("expected default margin factor 4, got %g", cfg.Simulation.MarginFactor)
	}
	if cfg.Simulation.LossStreakThreshold != 20 {
		t.Errorf("expected default threshold 20, got %d", cfg.Simulation.LossStreakThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*Config)
		wantErr *core.Error
	}{
		{"valid config", func(*Config) {}, nil},
		{"zero capital", func(c *Config) { c.Simulation.StartingCapital = 0 }, core.ErrConfigInvalid},
		{"negative margin", func(c *Config) { c.Simulation.MarginFactor = -1 }, core.ErrConfigInvalid},
		{"negative threshold", func(c *Config) { c.Simulation.LossStreakThreshold = -1 }, core.ErrConfigInvalid},
		{"zero step", func(c *Config) { c.Sweep.CapitalPerTrade.Step = 0 }, core.ErrConfigInvalid},
		{"empty range", func(c *Config) { c.Sweep.CapitalPerTrade.Stop = c.Sweep.CapitalPerTrade.Start }, core.ErrConfigInvalid},
		{"zero workers", func(c *Config) { c.Sweep.Workers = 0 }, core.ErrConfigInvalid},
		{"bad pairing", func(c *Config) { c.Ledger.Pairing = "nearest" }, core.ErrConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Output.Archive.Type = "s3" }, core.ErrConfigMissing},
		{"unknown archive", func(c *Config) { c.Output.Archive.Type = "ftp" }, core.ErrConfigInvalid},
		{"invalid port", func(c *Config) { c.Server.Port = 70000 }, core.ErrConfigInvalid},
		{"webhook without url", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"webhook": {Enabled: true}}
		}, core.ErrConfigMissing},
		{"telegram without chat", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"telegram": {Enabled: true, BotToken: "t"}}
		}, core.ErrConfigMissing},
		{"unknown notifier", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"pager": {Enabled: true}}
		}, core.ErrConfigInvalid},
		{"disabled notifier ignored", func(c *Config) {
			c.Notifiers = map[string]NotifierConfig{"pager": {}}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mod(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/newthinker/bankroll/internal/core"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. BANKROLL_SIMULATION_MARGIN_FACTOR
const EnvPrefix = "BANKROLL"

type Config struct {
	Simulation SimulationConfig          `mapstructure:"simulation"`
	Sweep      SweepConfig               `mapstructure:"sweep"`
	Ledger     LedgerConfig              `mapstructure:"ledger"`
	Output     OutputConfig              `mapstructure:"output"`
	Server     ServerConfig              `mapstructure:"server"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Log        LogConfig                 `mapstructure:"log"`
	Notifiers  map[string]NotifierConfig `mapstructure:"notifiers"`
}

type SimulationConfig struct {
	StartingCapital     float64 `mapstructure:"starting_capital"`
	MarginFactor        float64 `mapstructure:"margin_factor"`
	LossStreakThreshold int     `mapstructure:"loss_streak_threshold"`
}

type SweepConfig struct {
	CapitalPerTrade      RangeConfig `mapstructure:"capital_per_trade"`
	LossStreakThresholds []int       `mapstructure:"loss_streak_thresholds"`
	Workers              int         `mapstructure:"workers"`
}

// RangeConfig is a stop-exclusive arithmetic progression
type RangeConfig struct {
	Start float64 `mapstructure:"start"`
	Stop  float64 `mapstructure:"stop"`
	Step  float64 `mapstructure:"step"`
}

type LedgerConfig struct {
	Dir     string `mapstructure:"dir"`
	Pairing string `mapstructure:"pairing"` // "preceding" or "following"
}

type OutputConfig struct {
	Dir        string        `mapstructure:"dir"`
	Archive    ArchiveConfig `mapstructure:"archive"`
	ResultsDSN string        `mapstructure:"results_dsn"` // SQLite path; empty keeps history in memory
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs", "s3" or "none"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// NotifierConfig configures one sweep-completion channel, keyed by
// "webhook" or "telegram".
type NotifierConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	BotToken string            `mapstructure:"bot_token"`
	ChatID   string            `mapstructure:"chat_id"`
	URL      string            `mapstructure:"url"`
	Headers  map[string]string `mapstructure:"headers"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	Textfile string `mapstructure:"textfile"` // written after batch runs when set
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from file on top of Defaults. A .env file in the working
// directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StartingCapital:     1000,
			MarginFactor:        4,
			LossStreakThreshold: 20,
		},
		Sweep: SweepConfig{
			CapitalPerTrade: RangeConfig{Start: 0.1, Stop: 1.05, Step: 0.1},
			Workers:         4,
		},
		Ledger: LedgerConfig{
			Dir:     ".",
			Pairing: "preceding",
		},
		Output: OutputConfig{
			Dir: "out",
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "out/archive",
			},
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Simulation validation
	if c.Simulation.StartingCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("starting_capital must be positive, got %g", c.Simulation.StartingCapital))
	}
	if c.Simulation.MarginFactor <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("margin_factor must be positive, got %g", c.Simulation.MarginFactor))
	}
	if c.Simulation.LossStreakThreshold < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("loss_streak_threshold cannot be negative, got %d", c.Simulation.LossStreakThreshold))
	}

	// Sweep validation
	r := c.Sweep.CapitalPerTrade
	if r.Step <= 0 || r.Start <= 0 || r.Start >= r.Stop {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("capital_per_trade range start=%g stop=%g step=%g is empty or has a non-positive step", r.Start, r.Stop, r.Step))
	}
	if c.Sweep.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sweep workers must be at least 1, got %d", c.Sweep.Workers))
	}

	switch c.Ledger.Pairing {
	case "", "preceding", "following":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("ledger pairing must be preceding or following, got %q", c.Ledger.Pairing))
	}

	// Archive validation - if s3, bucket must exist
	switch c.Output.Archive.Type {
	case "", "none", "localfs":
	case "s3":
		if c.Output.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Output.Archive.Type))
	}

	for name, n := range c.Notifiers {
		if !n.Enabled {
			continue
		}
		switch name {
		case "webhook":
			if n.URL == "" {
				return core.WrapError(core.ErrConfigMissing, fmt.Errorf("webhook notifier requires url"))
			}
		case "telegram":
			if n.BotToken == "" || n.ChatID == "" {
				return core.WrapError(core.ErrConfigMissing, fmt.Errorf("telegram notifier requires bot_token and chat_id"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown notifier %q", name))
		}
	}

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	return nil
}

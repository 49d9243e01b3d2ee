package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PRESUPUESTO_"

// Config holds application configuration
type Config struct {
	DBPath     string       `yaml:"db_path"`
	ListenAddr string       `yaml:"listen_addr"`
	Log        LogConfig    `yaml:"log"`
	Totals     TotalsConfig `yaml:"totals"`
}

// LogConfig selects the zap level and encoder
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// TotalsConfig controls budget totals and the defaults applied to imported budgets
type TotalsConfig struct {
	Formula          string          `yaml:"formula"` // tax_only, tax_and_profit
	DefaultTaxPct    decimal.Decimal `yaml:"default_tax_pct"`
	DefaultProfitPct decimal.Decimal `yaml:"default_profit_pct"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		DBPath:     "./presupuesto.db",
		ListenAddr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Totals: TotalsConfig{
			Formula:          "tax_only",
			DefaultTaxPct:    decimal.NewFromInt(18),
			DefaultProfitPct: decimal.Zero,
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if any),
// then a local .env file, then PRESUPUESTO_* environment variables.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Best-effort: missing .env is fine
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects values no component can use
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (expected json or console)", c.Log.Format)
	}
	switch strings.ToLower(c.Totals.Formula) {
	case "", "tax_only", "tax_and_profit":
	default:
		return fmt.Errorf("invalid totals formula: %s (expected tax_only or tax_and_profit)", c.Totals.Formula)
	}
	if c.Totals.DefaultTaxPct.IsNegative() || c.Totals.DefaultProfitPct.IsNegative() {
		return fmt.Errorf("default tax and profit percentages cannot be negative")
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"DB_PATH":        &c.DBPath,
		"LISTEN_ADDR":    &c.ListenAddr,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
		"TOTALS_FORMULA": &c.Totals.Formula,
	}
	for key, dst := range strs {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}

	decs := map[string]*decimal.Decimal{
		"DEFAULT_TAX_PCT":    &c.Totals.DefaultTaxPct,
		"DEFAULT_PROFIT_PCT": &c.Totals.DefaultProfitPct,
	}
	for key, dst := range decs {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %s", EnvPrefix, key, v)
		}
		*dst = d
	}
	return nil
}

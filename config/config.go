// Package config loads run configuration from YAML or JSON files and turns
// the journal section into a live journal backend.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/propsim/backtest"
	"github.com/rustyeddy/propsim/journal"
	"github.com/rustyeddy/propsim/signal"
)

// Config is the complete configuration of one run.
type Config struct {
	Account AccountConfig   `json:"account" yaml:"account"`
	Data    DataConfig      `json:"data" yaml:"data"`
	Params  backtest.Params `json:"params" yaml:"params"`
	Rules   []string        `json:"rules,omitempty" yaml:"rules,omitempty"`
	Journal JournalConfig   `json:"journal" yaml:"journal"`
}

// AccountConfig seeds the simulated account.
type AccountConfig struct {
	Equity float64 `json:"equity" yaml:"equity"`
}

// DataConfig names the input files: one bar CSV and one CSV per indicator
// series, keyed by series name ("ema_fast", "atr", ...).
type DataConfig struct {
	BarsFile string            `json:"bars_file" yaml:"bars_file"`
	Series   map[string]string `json:"series,omitempty" yaml:"series,omitempty"`
}

// JournalConfig selects the journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns a runnable baseline: default parameters, all rules, no
// journaling. Data files still have to be filled in.
func Default() *Config {
	return &Config{
		Account: AccountConfig{Equity: 10000},
		Params:  backtest.Defaults(),
		Journal: JournalConfig{Type: "none"},
	}
}

// LoadFromFile reads a config file, YAML first with a JSON fallback.
// Fields absent from the file keep their Default() values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config, YAML for .yaml/.yml paths, JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the whole configuration, data paths included.
func (c *Config) Validate() error {
	if c.Account.Equity <= 0 {
		return fmt.Errorf("account.equity must be positive")
	}
	if c.Data.BarsFile == "" {
		return fmt.Errorf("data.bars_file is required")
	}
	if _, err := c.ParsedRules(); err != nil {
		return err
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// ParsedRules converts the configured rule names; an empty list means all
// rules.
func (c *Config) ParsedRules() ([]signal.Rule, error) {
	out := make([]signal.Rule, 0, len(c.Rules))
	for _, name := range c.Rules {
		r, err := signal.ParseRule(name)
		if err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// OpenJournal builds the configured journal backend. The caller owns Close.
func (c *Config) OpenJournal() (journal.Journal, error) {
	switch c.Journal.Type {
	case "", "none":
		return journal.Discard{}, nil
	case "csv":
		return journal.NewCSV(c.Journal.TradesFile, c.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(c.Journal.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", c.Journal.Type)
}

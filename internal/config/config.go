// Package config loads table configuration from HCL or YAML files.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lox/holdem-engine/internal/bot"
	"github.com/lox/holdem-engine/internal/game"
)

// Betting variants accepted in table blocks.
const (
	BettingNoLimit  = "no-limit"
	BettingPotLimit = "pot-limit"
)

// Config is the complete file: one block per table plus optional bots.
type Config struct {
	Tables []TableConfig `hcl:"table,block" yaml:"tables"`
	Bots   []BotConfig   `hcl:"bot,block" yaml:"bots"`
}

// TableConfig defines one table.
type TableConfig struct {
	Name          string      `hcl:"name,label" yaml:"name"`
	SmallBlind    int         `hcl:"small_blind" yaml:"small_blind"`
	BigBlind      int         `hcl:"big_blind" yaml:"big_blind"`
	MaxPlayers    int         `hcl:"max_players,optional" yaml:"max_players"`
	ActionTimeout string      `hcl:"action_timeout,optional" yaml:"action_timeout"`
	StartingStack int         `hcl:"starting_stack,optional" yaml:"starting_stack"`
	Betting       string      `hcl:"betting,optional" yaml:"betting"`
	Seed          int64       `hcl:"seed,optional" yaml:"seed"`
	Rake          *RakeConfig `hcl:"rake,block" yaml:"rake"`
}

// RakeConfig takes percent of every showdown pot, up to cap chips. A cap of
// zero is uncapped.
type RakeConfig struct {
	Percent float64 `hcl:"percent" yaml:"percent"`
	Cap     int     `hcl:"cap,optional" yaml:"cap"`
}

// BotConfig seats a bot at the listed tables, or at every table when none
// are listed.
type BotConfig struct {
	Name     string   `hcl:"name,label" yaml:"name"`
	Strategy string   `hcl:"strategy" yaml:"strategy"`
	Tables   []string `hcl:"tables,optional" yaml:"tables"`
	Stack    int      `hcl:"stack,optional" yaml:"stack"`
}

// Default returns a single 10/20 no-limit table for ten players.
func Default() *Config {
	cfg := &Config{
		Tables: []TableConfig{{
			Name:       "main",
			SmallBlind: 10,
			BigBlind:   20,
		}},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads filename. A missing file yields Default. Files ending in .yaml
// or .yml are read as YAML, everything else as HCL.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", filename)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", filename)
		}
	default:
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, errors.Errorf("failed to parse HCL file: %s", diags.Error())
		}
		diags = gohcl.DecodeBody(file.Body, nil, &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("failed to decode HCL: %s", diags.Error())
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxPlayers == 0 {
			t.MaxPlayers = game.DefaultMaxPlayers
		}
		if t.ActionTimeout == "" {
			t.ActionTimeout = "0s"
		}
		if t.StartingStack == 0 {
			t.StartingStack = t.BigBlind * 100 // 100 big blinds
		}
		if t.Betting == "" {
			t.Betting = BettingNoLimit
		}
	}
	for i := range c.Bots {
		if len(c.Bots[i].Tables) == 0 {
			for _, t := range c.Tables {
				c.Bots[i].Tables = append(c.Bots[i].Tables, t.Name)
			}
		}
	}
}

// Validate checks every table and bot.
func (c *Config) Validate() error {
	if len(c.Tables) == 0 {
		return errors.New("at least one table must be configured")
	}

	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if seen[t.Name] {
			return errors.Errorf("table %s: defined twice", t.Name)
		}
		seen[t.Name] = true
		if err := t.Validate(); err != nil {
			return err
		}
	}

	for _, b := range c.Bots {
		if !bot.IsStrategy(b.Strategy) {
			return errors.Errorf("bot %s: invalid strategy %s", b.Name, b.Strategy)
		}
		if b.Stack < 0 {
			return errors.Errorf("bot %s: stack must not be negative", b.Name)
		}
		for _, name := range b.Tables {
			if !seen[name] {
				return errors.Errorf("bot %s: unknown table %s", b.Name, name)
			}
		}
	}
	return nil
}

// Validate checks the table's blinds, capacity, timeout, betting variant and
// rake.
func (t TableConfig) Validate() error {
	if t.SmallBlind <= 0 {
		return errors.Errorf("table %s: small blind must be positive", t.Name)
	}
	if t.BigBlind <= t.SmallBlind {
		return errors.Errorf("table %s: big blind must be greater than small blind", t.Name)
	}
	if t.MaxPlayers < 2 || t.MaxPlayers > game.DefaultMaxPlayers {
		return errors.Errorf("table %s: max players must be between 2 and %d", t.Name, game.DefaultMaxPlayers)
	}
	if t.StartingStack <= 0 {
		return errors.Errorf("table %s: starting stack must be positive", t.Name)
	}
	if _, err := t.Timeout(); err != nil {
		return err
	}
	if _, err := bettingRule(t.Betting); err != nil {
		return errors.Wrapf(err, "table %s", t.Name)
	}
	if t.Rake != nil {
		if _, err := game.NewPercentageRake(t.Rake.Percent, t.Rake.Cap); err != nil {
			return errors.Wrapf(err, "table %s", t.Name)
		}
	}
	return nil
}

// Timeout parses the action timeout. Zero disables timeouts.
func (t TableConfig) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(t.ActionTimeout)
	if err != nil {
		return 0, errors.Wrapf(err, "table %s: action_timeout", t.Name)
	}
	if d < 0 {
		return 0, errors.Errorf("table %s: action_timeout must not be negative", t.Name)
	}
	return d, nil
}

// GameConfig converts the table into engine settings and the options that
// carry its rake and betting variant.
func (t TableConfig) GameConfig() (game.Config, []game.Option, error) {
	if err := t.Validate(); err != nil {
		return game.Config{}, nil, err
	}
	timeout, _ := t.Timeout()
	rule, _ := bettingRule(t.Betting)

	opts := []game.Option{game.WithBettingRule(rule)}
	if t.Rake != nil && t.Rake.Percent > 0 {
		rake, _ := game.NewPercentageRake(t.Rake.Percent, t.Rake.Cap)
		opts = append(opts, game.WithRake(rake))
	}

	return game.Config{
		SmallBlind:    t.SmallBlind,
		BigBlind:      t.BigBlind,
		MaxPlayers:    t.MaxPlayers,
		ActionTimeout: timeout,
	}, opts, nil
}

// Table returns the table called name, or nil.
func (c *Config) Table(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// BotsFor returns the bots seated at the named table.
func (c *Config) BotsFor(table string) []BotConfig {
	var bots []BotConfig
	for _, b := range c.Bots {
		if len(b.Tables) == 0 || slices.Contains(b.Tables, table) {
			bots = append(bots, b)
		}
	}
	return bots
}

func bettingRule(name string) (game.BettingRule, error) {
	switch name {
	case BettingNoLimit:
		return game.NoLimit{}, nil
	case BettingPotLimit:
		return game.PotLimit{}, nil
	}
	return nil, errors.Errorf("unknown betting variant %q", name)
}

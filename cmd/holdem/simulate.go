package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/broadcast"
	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/simulator"
	"github.com/lox/holdem-engine/internal/store"
)

// SimulateCmd runs bot-vs-bot simulations.
type SimulateCmd struct {
	Config  string   `short:"c" default:"holdem.hcl" type:"path" help:"Table configuration (HCL, or YAML by extension); defaults are used when missing"`
	Hands   int      `short:"n" default:"1000" help:"Hands to play per table"`
	Tables  int      `short:"t" default:"1" help:"Copies of each configured table"`
	Bots    []string `sep:"," help:"Bot strategies to seat at every table, replacing configured bots"`
	Absent  []string `sep:"," help:"Bot names that never act and are timed out"`
	Seed    int64    `help:"RNG seed (0 picks one and logs it)"`
	Rebuy   bool     `default:"true" negatable:"" help:"Top busted bots back up between hands"`
	Store   string   `help:"Snapshot store URL: memory://, file://DIR, sqlite://PATH or redis://HOST:PORT/DB"`
	NATS    string   `name:"nats" help:"NATS server URL to publish table events to"`
	Verbose bool     `short:"V" help:"Print hand histories"`
}

func (c *SimulateCmd) Run(logger *log.Logger) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if len(c.Bots) > 0 {
		cfg.Bots = botsFromStrategies(c.Bots)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	simCfg := simulator.Config{
		Tables: cfg.Tables,
		Bots:   cfg.Bots,
		Hands:  c.Hands,
		Copies: c.Tables,
		Seed:   c.Seed,
		Rebuy:  c.Rebuy,
		Absent: c.Absent,
		Logger: logger,
	}

	if c.Store != "" {
		st, err := store.Open(c.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		simCfg.Repository = st
	}

	if c.NATS != "" {
		nc, err := broadcast.Connect(c.NATS)
		if err != nil {
			return err
		}
		defer nc.Close()
		simCfg.Publisher = nc
	}

	if c.Verbose {
		simCfg.Output = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simCfg)
	logger.Info("Starting simulation", "seed", sim.Seed(), "tables", len(cfg.Tables)*max(c.Tables, 1), "hands", c.Hands)

	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(renderSummary(res))
	return nil
}

// botsFromStrategies names bots after their strategy and position so the
// same strategy can be seated more than once.
func botsFromStrategies(strategies []string) []config.BotConfig {
	bots := make([]config.BotConfig, len(strategies))
	for i, s := range strategies {
		bots[i] = config.BotConfig{Name: fmt.Sprintf("%s-%d", s, i+1), Strategy: s}
	}
	return bots
}

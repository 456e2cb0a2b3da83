package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel string           `short:"l" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`

	Simulate SimulateCmd `cmd:"" help:"Play bots against each other across concurrent tables"`
	Eval     EvalCmd     `cmd:"" help:"Evaluate a hand: two hole cards followed by three to five board cards"`
	Replay   ReplayCmd   `cmd:"" help:"Show a stored game snapshot"`
	Watch    WatchCmd    `cmd:"" help:"Follow a game's events over NATS"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("No-limit hold'em engine tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	level, err := log.ParseLevel(cli.LogLevel)
	ctx.FatalIfErrorf(err)
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
	log.SetDefault(logger)

	err = ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}

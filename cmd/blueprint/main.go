package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"Enable debug logging"`

	BuildBuckets BuildBucketsCmd `cmd:"" name:"build-buckets" help:"Build preflop and postflop bucket tables"`
	Train        TrainCmd        `cmd:"" help:"Run MCCFR training and emit a blueprint"`
	Evaluate     EvaluateCmd     `cmd:"" help:"Evaluate a blueprint by self-play"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blueprint"),
		kong.Description("MCCFR blueprint solver for 3-player 20 BB no-limit hold'em"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)

	setupLogger(cli.Debug)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

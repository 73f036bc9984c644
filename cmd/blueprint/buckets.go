package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/pokerblueprint/abstraction"
)

type BuildBucketsCmd struct {
	Out              string `help:"Output directory for the tables" default:"data"`
	PreflopRollouts  int    `help:"Equity rollouts per canonical preflop hand" default:"1000"`
	PostflopSamples  int    `help:"Sampled (hole, board) pairs per postflop street" default:"5000"`
	PostflopRollouts int    `help:"Equity rollouts per postflop sample" default:"200"`
	Seed             int64  `help:"Random seed" default:"1"`
}

func (cmd *BuildBucketsCmd) Run() error {
	cfg := abstraction.DefaultBuildConfig()
	cfg.PreflopRollouts = cmd.PreflopRollouts
	cfg.PostflopSamples = cmd.PostflopSamples
	cfg.PostflopRollouts = cmd.PostflopRollouts
	cfg.Seed = cmd.Seed

	log.Info().
		Int("preflop_rollouts", cfg.PreflopRollouts).
		Int("postflop_samples", cfg.PostflopSamples).
		Int("postflop_rollouts", cfg.PostflopRollouts).
		Msg("building bucket tables")

	start := time.Now()
	tables, err := abstraction.BuildTables(cfg)
	if err != nil {
		return err
	}
	if err := abstraction.SaveTables(tables, cmd.Out); err != nil {
		return err
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Str("dir", cmd.Out).
		Msg("bucket tables saved")
	return nil
}

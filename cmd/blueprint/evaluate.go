package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/pokerblueprint/solver"
)

type EvaluateCmd struct {
	Strategy string `help:"Path to the blueprint" required:""`
	Hands    int    `help:"Number of hands to simulate" default:"50000"`
	Seed     int64  `help:"Random seed" default:"1"`
	Buckets  string `help:"Directory holding bucket tables (must match the training run)" default:"data"`
}

func (cmd *EvaluateCmd) Run() error {
	if cmd.Hands <= 0 {
		return fmt.Errorf("hands must be positive (got %d)", cmd.Hands)
	}

	policy, err := solver.LoadPolicy(cmd.Strategy)
	if err != nil {
		return fmt.Errorf("load blueprint: %w", err)
	}
	bp := policy.Blueprint()
	log.Info().
		Str("generated", bp.GeneratedAt.Format(time.RFC3339)).
		Int("iterations", bp.Iterations).
		Int("infosets", len(bp.Strategies)).
		Msg("blueprint loaded")

	newGame, err := newGameFactory(cmd.Buckets)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := solver.Evaluate(context.Background(), newGame, policy, cmd.Hands, cmd.Seed)
	if err != nil {
		return fmt.Errorf("run evaluation: %w", err)
	}

	log.Info().
		Int("hands", res.Hands).
		Int("blocks", res.Blocks).
		Int("block_size", res.BlockSize).
		Dur("duration", time.Since(start)).
		Msg("evaluation complete")

	sum := 0.0
	for p := 0; p < solver.NumPlayers; p++ {
		low, high := res.ConfidenceInterval(p)
		log.Info().
			Int("player", p).
			Float64("mbb_per_game", res.MeanMBB[p]).
			Float64("stderr", res.StdErrMBB[p]).
			Str("ci95", fmt.Sprintf("[%.1f, %.1f]", low, high)).
			Msg("player summary")
		sum += res.MeanMBB[p]
	}
	log.Info().Float64("mbb_sum", sum).Msg("zero-sum check")
	return nil
}

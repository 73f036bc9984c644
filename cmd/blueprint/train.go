package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/pokerblueprint/abstraction"
	"github.com/lox/pokerblueprint/internal/game/nlhe"
	"github.com/lox/pokerblueprint/solver"
)

type TrainCmd struct {
	Out             string `help:"Path to write the blueprint" required:""`
	Iterations      int    `help:"Number of MCCFR iterations" default:"100000"`
	Parallel        int    `help:"Number of concurrent tables" default:"1"`
	Seed            int64  `help:"Random seed; 0 keeps the config seed" default:"0"`
	Buckets         string `help:"Directory holding bucket tables (heuristic fallback when absent)" default:"data"`
	Config          string `help:"HCL config file overriding defaults"`
	CheckpointPath  string `help:"Path to write periodic checkpoints"`
	CheckpointEvery int    `help:"Checkpoint interval in iterations (0 disables)" default:"0"`
	CheckpointMins  int    `help:"Checkpoint interval in minutes (0 disables)" default:"10"`
	ProgressEvery   int    `help:"Log progress every N iterations (0 => iterations/100)" default:"0"`
	ResumeFrom      string `help:"Resume training from a checkpoint file"`
	NoPrune         bool   `help:"Disable regret-based pruning"`
	NoLinearCFR     bool   `help:"Disable linear weighting"`
	CPUProfile      string `help:"Write CPU profile to file"`
}

func (cmd *TrainCmd) Run() error {
	if cmd.CPUProfile != "" {
		f, err := os.Create(cmd.CPUProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", cmd.CPUProfile).Msg("CPU profiling enabled")
	}

	newGame, err := newGameFactory(cmd.Buckets)
	if err != nil {
		return err
	}

	var trainer *solver.Trainer
	if cmd.ResumeFrom != "" {
		trainer, err = solver.LoadTrainerFromCheckpoint(cmd.ResumeFrom, newGame)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if cmd.Iterations > 0 {
			if err := trainer.SetTotalIterations(cmd.Iterations); err != nil {
				return err
			}
		}
		if cmd.NoPrune || cmd.NoLinearCFR {
			log.Warn().Msg("cannot change CFR variant when resuming from checkpoint; keeping original settings")
		}
		log.Info().
			Int("iterations", trainer.TrainingConfig().Iterations).
			Int64("resume_iteration", trainer.Iteration()).
			Str("checkpoint", cmd.ResumeFrom).
			Msg("resuming training run")
	} else {
		train, abs, err := solver.LoadConfigFile(cmd.Config)
		if err != nil {
			return err
		}
		if cmd.Config != "" {
			if _, statErr := os.Stat(cmd.Config); statErr != nil {
				return fmt.Errorf("config file: %w", statErr)
			}
		}

		if cmd.Iterations > 0 {
			train.Iterations = cmd.Iterations
		}
		if cmd.Parallel > 0 {
			train.ParallelTables = cmd.Parallel
		}
		if cmd.Seed != 0 {
			train.Seed = cmd.Seed
		}
		if cmd.ProgressEvery > 0 {
			train.ProgressEvery = cmd.ProgressEvery
		}
		if cmd.NoPrune {
			train.PruneEnabled = false
		}
		if cmd.NoLinearCFR {
			train.UseLinearCFR = false
		}

		trainer, err = solver.NewTrainer(newGame, abs, train)
		if err != nil {
			return err
		}
		log.Info().
			Int("iterations", train.Iterations).
			Int("parallel", train.ParallelTables).
			Bool("linear_cfr", train.UseLinearCFR).
			Bool("prune", train.PruneEnabled).
			Msg("starting training run")
	}

	if cmd.CheckpointPath != "" {
		trainer.EnableCheckpoints(cmd.CheckpointPath, cmd.CheckpointEvery, time.Duration(cmd.CheckpointMins)*time.Minute)
	}

	start := time.Now()
	progress := func(p solver.Progress) {
		log.Info().
			Int("iteration", p.Iteration).
			Int("infosets", p.RegretTableSize).
			Float64("avg_regret", p.AvgRegret).
			Int64("nodes", p.Stats.NodesVisited).
			Int64("pruned", p.Stats.PrunedActions).
			Int("max_depth", p.Stats.MaxDepth).
			Dur("iter_time", p.Stats.IterationTime).
			Msg("progress")
	}
	if err := trainer.Run(context.Background(), progress); err != nil {
		return err
	}

	bp := trainer.Blueprint()
	log.Info().
		Dur("duration", time.Since(start)).
		Int("infosets", len(bp.Strategies)).
		Msg("training completed")

	if err := bp.Save(cmd.Out); err != nil {
		return fmt.Errorf("save blueprint: %w", err)
	}
	log.Info().Str("path", cmd.Out).Msg("blueprint saved")
	return nil
}

// newGameFactory loads bucket tables (or selects the heuristic fallback) and
// returns a constructor for per-worker NLHE hands.
func newGameFactory(bucketDir string) (func() solver.Game, error) {
	tables, err := abstraction.LoadTables(bucketDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load bucket tables: %w", err)
		}
		tables = nil
	} else {
		log.Info().Str("dir", bucketDir).Msg("bucket tables loaded")
	}

	mapper := abstraction.NewMapper(tables, abstraction.DefaultPreflopBuckets, abstraction.DefaultPostflopBuckets)
	return func() solver.Game {
		return nlhe.NewHand(mapper)
	}, nil
}

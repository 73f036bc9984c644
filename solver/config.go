package solver

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// AbstractionConfig describes the information and action abstraction a
// blueprint was trained under. It travels with checkpoints and blueprints so
// consumers can reject incompatible tables.
type AbstractionConfig struct {
	StackBB         float64 `hcl:"stack_bb,optional" json:"stack_bb"`
	SmallBlindBB    float64 `hcl:"sb,optional" json:"sb"`
	BigBlindBB      float64 `hcl:"bb,optional" json:"bb"`
	NumActions      int     `hcl:"num_actions,optional" json:"num_actions"`
	PreflopBuckets  int     `hcl:"num_buckets_preflop,optional" json:"num_buckets_preflop"`
	PostflopBuckets int     `hcl:"num_buckets_postflop,optional" json:"num_buckets_postflop"`
	BucketDir       string  `hcl:"bucket_dir,optional" json:"bucket_dir,omitempty"`
}

// The engine plays a fixed game: 20 BB stacks with 0.5/1.0 blinds. The
// config carries these values for blueprint/checkpoint metadata, so any
// other setting would describe a game that is never actually played.
const (
	fixedStackBB      = 20.0
	fixedSmallBlindBB = 0.5
	fixedBigBlindBB   = 1.0
)

// Validate ensures the abstraction is well-formed before training begins.
func (c AbstractionConfig) Validate() error {
	if c.StackBB != fixedStackBB {
		return fmt.Errorf("stack_bb must be %v", fixedStackBB)
	}
	if c.SmallBlindBB != fixedSmallBlindBB {
		return fmt.Errorf("sb must be %v", fixedSmallBlindBB)
	}
	if c.BigBlindBB != fixedBigBlindBB {
		return fmt.Errorf("bb must be %v", fixedBigBlindBB)
	}
	if c.NumActions != NumActions {
		return fmt.Errorf("num_actions must be %d", NumActions)
	}
	if c.PreflopBuckets <= 0 {
		return errors.New("preflop bucket count must be > 0")
	}
	if c.PostflopBuckets <= 0 {
		return errors.New("postflop bucket count must be > 0")
	}
	return nil
}

// TrainingConfig aggregates parameters that control MCCFR execution.
type TrainingConfig struct {
	Iterations     int   `hcl:"iterations,optional" json:"iterations"`
	Seed           int64 `hcl:"seed,optional" json:"seed"`
	ParallelTables int   `hcl:"parallel_tables,optional" json:"parallel_tables"`

	UseLinearCFR bool `hcl:"use_linear_cfr,optional" json:"use_linear_cfr"`

	// PruneThreshold enables regret-based pruning when PruneEnabled: actions
	// whose cumulative regret falls below the threshold are skipped with
	// PruneSkipProb after PruneWarmup iterations, except on iterations
	// divisible by PruneRevisitEvery.
	PruneEnabled      bool    `hcl:"prune,optional" json:"prune"`
	PruneThreshold    float64 `hcl:"prune_threshold,optional" json:"prune_threshold"`
	PruneWarmup       int     `hcl:"prune_warmup,optional" json:"prune_warmup"`
	PruneSkipProb     float64 `hcl:"prune_skip_prob,optional" json:"prune_skip_prob"`
	PruneRevisitEvery int     `hcl:"prune_revisit_every,optional" json:"prune_revisit_every"`

	CheckpointEvery int    `hcl:"checkpoint_every,optional" json:"checkpoint_every"`
	CheckpointPath  string `hcl:"checkpoint_path,optional" json:"checkpoint_path,omitempty"`
	ProgressEvery   int    `hcl:"progress_every,optional" json:"progress_every"`
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.ParallelTables <= 0 {
		return errors.New("parallel tables must be > 0")
	}
	if c.PruneEnabled {
		if c.PruneThreshold >= 0 {
			return errors.New("prune threshold must be negative")
		}
		if c.PruneWarmup < 0 {
			return errors.New("prune warmup cannot be negative")
		}
		if c.PruneSkipProb <= 0 || c.PruneSkipProb > 1 {
			return errors.New("prune skip probability must be in (0,1]")
		}
		if c.PruneRevisitEvery <= 0 {
			return errors.New("prune revisit interval must be > 0")
		}
	}
	if c.CheckpointEvery < 0 {
		return errors.New("checkpoint interval cannot be negative")
	}
	if c.ProgressEvery < 0 {
		return errors.New("progress interval cannot be negative")
	}
	return nil
}

// DefaultAbstraction returns the production abstraction: 20 BB stacks,
// 15 preflop and 50 postflop buckets, the 10-action alphabet.
func DefaultAbstraction() AbstractionConfig {
	return AbstractionConfig{
		StackBB:         20,
		SmallBlindBB:    0.5,
		BigBlindBB:      1.0,
		NumActions:      NumActions,
		PreflopBuckets:  15,
		PostflopBuckets: 50,
	}
}

// DefaultTrainingConfig returns linear MCCFR with pruning enabled.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:        100_000,
		Seed:              1,
		ParallelTables:    1,
		UseLinearCFR:      true,
		PruneEnabled:      true,
		PruneThreshold:    -300,
		PruneWarmup:       100,
		PruneSkipProb:     0.95,
		PruneRevisitEvery: 100,
		CheckpointEvery:   0,
		ProgressEvery:     0,
	}
}

// fileConfig is the HCL schema: optional training and abstraction blocks.
type fileConfig struct {
	Training    *TrainingConfig    `hcl:"training,block"`
	Abstraction *AbstractionConfig `hcl:"abstraction,block"`
}

// LoadConfigFile reads an HCL config file, overlaying its blocks onto the
// defaults. A missing file returns the defaults unchanged.
func LoadConfigFile(path string) (TrainingConfig, AbstractionConfig, error) {
	train := DefaultTrainingConfig()
	abs := DefaultAbstraction()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return train, abs, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return train, abs, fmt.Errorf("parse config: %s", diags.Error())
	}

	var cfg fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return train, abs, fmt.Errorf("decode config: %s", diags.Error())
	}
	if cfg.Training != nil {
		train = *cfg.Training
		applyTrainingDefaults(&train)
	}
	if cfg.Abstraction != nil {
		abs = *cfg.Abstraction
		applyAbstractionDefaults(&abs)
	}

	if err := train.Validate(); err != nil {
		return train, abs, err
	}
	if err := abs.Validate(); err != nil {
		return train, abs, err
	}
	return train, abs, nil
}

// applyTrainingDefaults fills zero-valued numeric fields a config block left
// unset. Seed and the boolean switches are not filled: an omitted seed stays
// 0 and an omitted use_linear_cfr or prune stays false.
func applyTrainingDefaults(c *TrainingConfig) {
	def := DefaultTrainingConfig()
	if c.Iterations == 0 {
		c.Iterations = def.Iterations
	}
	if c.ParallelTables == 0 {
		c.ParallelTables = def.ParallelTables
	}
	if c.PruneEnabled {
		if c.PruneThreshold == 0 {
			c.PruneThreshold = def.PruneThreshold
		}
		if c.PruneWarmup == 0 {
			c.PruneWarmup = def.PruneWarmup
		}
		if c.PruneSkipProb == 0 {
			c.PruneSkipProb = def.PruneSkipProb
		}
		if c.PruneRevisitEvery == 0 {
			c.PruneRevisitEvery = def.PruneRevisitEvery
		}
	}
}

func applyAbstractionDefaults(c *AbstractionConfig) {
	def := DefaultAbstraction()
	if c.StackBB == 0 {
		c.StackBB = def.StackBB
	}
	if c.SmallBlindBB == 0 {
		c.SmallBlindBB = def.SmallBlindBB
	}
	if c.BigBlindBB == 0 {
		c.BigBlindBB = def.BigBlindBB
	}
	if c.NumActions == 0 {
		c.NumActions = def.NumActions
	}
	if c.PreflopBuckets == 0 {
		c.PreflopBuckets = def.PreflopBuckets
	}
	if c.PostflopBuckets == 0 {
		c.PostflopBuckets = def.PostflopBuckets
	}
}

// TraversalStats captures instrumentation metrics for a single MCCFR
// iteration.
type TraversalStats struct {
	NodesVisited  int64
	TerminalNodes int64
	PrunedActions int64
	MaxDepth      int
	IterationTime time.Duration
}

// Progress contains metadata emitted during long-running solver operations.
type Progress struct {
	Iteration       int
	RegretTableSize int
	AvgRegret       float64
	Stats           TraversalStats
}

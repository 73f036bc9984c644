package solver

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerblueprint/internal/randutil"
)

// Trainer orchestrates external-sampling MCCFR iterations over a Game.
type Trainer struct {
	absCfg   AbstractionConfig
	trainCfg TrainingConfig
	newGame  func() Game

	table     *Table
	iteration atomic.Int64

	// The trainer RNG only mints per-worker seeds. Draws are counted so a
	// checkpoint resume can replay the stream and continue it exactly.
	rng      *rand.Rand
	rngSeed  int64
	rngDraws int64

	clock              quartz.Clock
	checkpointPath     string
	checkpointEvery    int
	checkpointInterval time.Duration
	lastCheckpoint     time.Time

	statsMu sync.Mutex
	stats   TraversalStats
}

// NewTrainer constructs a trainer for the game produced by newGame. Each
// parallel worker calls newGame once and owns the returned instance.
func NewTrainer(newGame func() Game, absCfg AbstractionConfig, trainCfg TrainingConfig) (*Trainer, error) {
	return newTrainerWithClock(newGame, absCfg, trainCfg, quartz.NewReal())
}

func newTrainerWithClock(newGame func() Game, absCfg AbstractionConfig, trainCfg TrainingConfig, clock quartz.Clock) (*Trainer, error) {
	if err := absCfg.Validate(); err != nil {
		return nil, err
	}
	if err := trainCfg.Validate(); err != nil {
		return nil, err
	}
	if newGame == nil {
		return nil, fmt.Errorf("game constructor is required")
	}

	seed := trainCfg.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
		trainCfg.Seed = seed
	}

	return &Trainer{
		absCfg:   absCfg,
		trainCfg: trainCfg,
		newGame:  newGame,
		table:    NewTable(),
		rng:      randutil.New(seed),
		rngSeed:  seed,
		clock:    clock,
	}, nil
}

// EnableCheckpoints configures periodic checkpoint writes: every `every`
// iterations, and additionally whenever `interval` of wall clock has passed
// (either may be zero to disable that trigger).
func (t *Trainer) EnableCheckpoints(path string, every int, interval time.Duration) {
	t.checkpointPath = path
	t.checkpointEvery = every
	t.checkpointInterval = interval
}

// Iteration returns the number of completed iterations.
func (t *Trainer) Iteration() int64 {
	return t.iteration.Load()
}

// Table exposes the regret table, primarily for tests and blueprint export.
func (t *Trainer) Table() *Table {
	return t.table
}

// TrainingConfig returns the active training configuration.
func (t *Trainer) TrainingConfig() TrainingConfig {
	return t.trainCfg
}

// AbstractionConfig returns the abstraction the trainer was built with.
func (t *Trainer) AbstractionConfig() AbstractionConfig {
	return t.absCfg
}

// SetTotalIterations raises (or confirms) the target iteration count, used
// when resuming from a checkpoint.
func (t *Trainer) SetTotalIterations(n int) error {
	if current := int(t.iteration.Load()); n < current {
		return fmt.Errorf("total iterations %d less than completed %d", n, current)
	}
	t.trainCfg.Iterations = n
	return nil
}

// Stats returns the most recent traversal statistics.
func (t *Trainer) Stats() TraversalStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

func (t *Trainer) setStats(stats TraversalStats) {
	t.statsMu.Lock()
	t.stats = stats
	t.statsMu.Unlock()
}

// Run executes iterations until the configured total is reached or ctx is
// cancelled. Cancellation lands on an iteration boundary; the table remains
// consistent and can be checkpointed or exported as-is.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	batch := t.trainCfg.Iterations / 100
	if t.trainCfg.ProgressEvery > 0 {
		batch = t.trainCfg.ProgressEvery
	}
	if batch == 0 {
		batch = 1
	}
	if t.lastCheckpoint.IsZero() {
		t.lastCheckpoint = t.clock.Now()
	}

	for int(t.iteration.Load()) < t.trainCfg.Iterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		iter := int(t.iteration.Load()) + 1
		start := t.clock.Now()
		stats, err := t.singleIteration(iter)
		if err != nil {
			return err
		}
		stats.IterationTime = t.clock.Now().Sub(start)
		t.setStats(stats)
		t.iteration.Store(int64(iter))

		t.maybeCheckpoint(iter)

		if progress != nil && iter%batch == 0 {
			progress(Progress{
				Iteration:       iter,
				RegretTableSize: t.table.Size(),
				AvgRegret:       t.averageRegret(iter),
				Stats:           stats,
			})
		}
	}

	if t.checkpointPath != "" && (t.checkpointEvery > 0 || t.checkpointInterval > 0) {
		if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
			return err
		}
	}
	return nil
}

// maybeCheckpoint writes a checkpoint when an iteration or wall-clock
// trigger fires. Write failures are logged and retried at the next trigger;
// training itself continues.
func (t *Trainer) maybeCheckpoint(iter int) {
	if t.checkpointPath == "" {
		return
	}
	due := t.checkpointEvery > 0 && iter%t.checkpointEvery == 0
	if !due && t.checkpointInterval > 0 && t.clock.Now().Sub(t.lastCheckpoint) >= t.checkpointInterval {
		due = true
	}
	if !due {
		return
	}
	if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
		log.Error().Err(err).Str("path", t.checkpointPath).Msg("checkpoint save failed; will retry")
		return
	}
	t.lastCheckpoint = t.clock.Now()
}

// singleIteration runs one linear-CFR iteration: every parallel table plays
// one traversal per traverser seat, all sharing the iteration's weight.
func (t *Trainer) singleIteration(iter int) (TraversalStats, error) {
	parallel := t.trainCfg.ParallelTables
	seeds := make([]int64, parallel)
	for i := range seeds {
		seeds[i] = t.rng.Int64()
		t.rngDraws++
	}

	statsSlice := make([]TraversalStats, parallel)
	var g errgroup.Group
	for i := 0; i < parallel; i++ {
		g.Go(func() error {
			tc := &traversalContext{
				trainer:   t,
				game:      t.newGame(),
				rng:       randutil.New(seeds[i]),
				iteration: iter,
				stats:     &statsSlice[i],
			}
			for traverser := 0; traverser < NumPlayers; traverser++ {
				tc.traverser = traverser
				tc.traverserSeen = false
				tc.game.DealNewHand(tc.rng)
				if _, err := tc.traverse(0); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TraversalStats{}, err
	}

	aggregated := TraversalStats{}
	for _, s := range statsSlice {
		aggregated.NodesVisited += s.NodesVisited
		aggregated.TerminalNodes += s.TerminalNodes
		aggregated.PrunedActions += s.PrunedActions
		if s.MaxDepth > aggregated.MaxDepth {
			aggregated.MaxDepth = s.MaxDepth
		}
	}
	return aggregated, nil
}

// averageRegret reports the mean positive regret per info set, normalized by
// the cumulative linear-CFR weight so the metric is comparable across runs.
func (t *Trainer) averageRegret(iter int) float64 {
	size := 0
	total := 0.0
	t.table.Range(func(_ string, e *Entry) bool {
		e.mu.Lock()
		sum := 0.0
		for _, r := range e.Regrets {
			if r > 0 {
				sum += r
			}
		}
		e.mu.Unlock()
		total += sum / NumActions
		size++
		return true
	})
	if size == 0 || iter == 0 {
		return 0
	}
	weightSum := float64(iter)
	if t.trainCfg.UseLinearCFR {
		weightSum = float64(iter) * float64(iter+1) / 2
	}
	return total / float64(size) / weightSum
}

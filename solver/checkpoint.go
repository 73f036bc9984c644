package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lox/pokerblueprint/internal/fileutil"
	"github.com/lox/pokerblueprint/internal/randutil"
)

const checkpointFileVersion = 1

type entrySnapshot struct {
	Regrets     []float64 `json:"regrets"`
	StrategySum []float64 `json:"strategy_sum"`
}

type checkpointSnapshot struct {
	Version     int                      `json:"version"`
	Iteration   int64                    `json:"iteration"`
	RNGSeed     int64                    `json:"rng_seed"`
	RNGDraws    int64                    `json:"rng_draws"`
	ConfigHash  string                   `json:"config_hash"`
	Training    TrainingConfig           `json:"training"`
	Abstraction AbstractionConfig        `json:"abstraction"`
	Entries     map[string]entrySnapshot `json:"entries"`
	Stats       TraversalStats           `json:"stats"`
}

// SaveCheckpoint writes the full trainer state to path atomically, so an
// interrupted run resumes from the last completed iteration.
func (t *Trainer) SaveCheckpoint(path string) error {
	snap := checkpointSnapshot{
		Version:     checkpointFileVersion,
		Iteration:   t.iteration.Load(),
		RNGSeed:     t.rngSeed,
		RNGDraws:    t.rngDraws,
		ConfigHash:  ConfigHash(t.absCfg, t.trainCfg),
		Training:    t.trainCfg,
		Abstraction: t.absCfg,
		Entries:     make(map[string]entrySnapshot, t.table.Size()),
		Stats:       t.Stats(),
	}
	t.table.Range(func(key string, e *Entry) bool {
		snap.Entries[key] = e.snapshot()
		return true
	})

	data, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// LoadTrainerFromCheckpoint restores a trainer from a checkpoint. The
// trainer RNG stream is replayed to its saved position, so continuing for N
// more iterations produces the same traversals a single longer run would
// have (up to floating-point rounding in the shared table).
func LoadTrainerFromCheckpoint(path string, newGame func() Game) (*Trainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap checkpointSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt checkpoint: %w", err)
	}
	if snap.Version != checkpointFileVersion {
		return nil, errors.New("unsupported checkpoint version")
	}
	if err := snap.Training.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint training config invalid: %w", err)
	}
	if err := snap.Abstraction.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint abstraction invalid: %w", err)
	}

	trainer, err := NewTrainer(newGame, snap.Abstraction, snap.Training)
	if err != nil {
		return nil, err
	}
	trainer.iteration.Store(snap.Iteration)
	trainer.stats = snap.Stats
	trainer.rngSeed = snap.RNGSeed
	trainer.rng = randutil.New(snap.RNGSeed)
	trainer.rngDraws = snap.RNGDraws
	for i := int64(0); i < snap.RNGDraws; i++ {
		trainer.rng.Int64()
	}

	for key, es := range snap.Entries {
		if len(es.Regrets) != NumActions || len(es.StrategySum) != NumActions {
			return nil, fmt.Errorf("corrupt checkpoint: entry %q has wrong arity", key)
		}
		entry := trainer.table.Get([]byte(key))
		copy(entry.Regrets[:], es.Regrets)
		copy(entry.StrategySum[:], es.StrategySum)
	}
	return trainer, nil
}

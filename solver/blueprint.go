package solver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lox/pokerblueprint/internal/fileutil"
)

const blueprintFileVersion = 1

// Blueprint is the frozen average strategy produced by a training run:
// a mapping from info-set key to a 10-slot probability vector (zeros on
// illegal actions) plus enough metadata to detect incompatible consumers.
type Blueprint struct {
	Version     int                  `json:"version"`
	GeneratedAt time.Time            `json:"generated_at"`
	Iterations  int                  `json:"iterations"`
	ConfigHash  string               `json:"config_hash"`
	Abstraction AbstractionConfig    `json:"abstraction"`
	Strategies  map[string][]float64 `json:"strategies"`
}

// Blueprint materializes the averaged strategy accumulated so far. Entries
// that never received strategy mass are skipped: they were only ever reached
// by sampling, and consumers fall back to uniform for unseen keys anyway.
func (t *Trainer) Blueprint() *Blueprint {
	strategies := make(map[string][]float64, t.table.Size())
	t.table.Range(func(key string, e *Entry) bool {
		e.mu.Lock()
		total := 0.0
		for _, s := range e.StrategySum {
			total += s
		}
		if total > 0 {
			avg := make([]float64, NumActions)
			for i, s := range e.StrategySum {
				avg[i] = s / total
			}
			strategies[key] = avg
		}
		e.mu.Unlock()
		return true
	})

	return &Blueprint{
		Version:     blueprintFileVersion,
		GeneratedAt: time.Now().UTC(),
		Iterations:  int(t.iteration.Load()),
		ConfigHash:  ConfigHash(t.absCfg, t.trainCfg),
		Abstraction: t.absCfg,
		Strategies:  strategies,
	}
}

// ConfigHash fingerprints the abstraction and training configuration so a
// blueprint or checkpoint can be matched to the run that produced it.
func ConfigHash(abs AbstractionConfig, train TrainingConfig) string {
	// Fields that only affect scheduling, not the strategy space, are
	// excluded so resuming with different parallelism still matches.
	train.ParallelTables = 0
	train.CheckpointEvery = 0
	train.CheckpointPath = ""
	train.ProgressEvery = 0
	train.Iterations = 0

	payload, _ := json.Marshal(struct {
		Abstraction AbstractionConfig `json:"abstraction"`
		Training    TrainingConfig    `json:"training"`
	}{abs, train})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Save writes the blueprint to path atomically as JSON.
func (b *Blueprint) Save(path string) error {
	if b == nil {
		return errors.New("nil blueprint")
	}
	if path == "" {
		return errors.New("destination path is required")
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blueprint: %w", err)
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// LoadBlueprint reads a blueprint from disk and validates its headers.
func LoadBlueprint(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bp Blueprint
	if err := json.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("corrupt blueprint: %w", err)
	}
	if bp.Version != blueprintFileVersion {
		return nil, fmt.Errorf("unsupported blueprint version %d", bp.Version)
	}
	if err := bp.Abstraction.Validate(); err != nil {
		return nil, fmt.Errorf("blueprint abstraction invalid: %w", err)
	}
	for key, strat := range bp.Strategies {
		if len(strat) != NumActions {
			return nil, fmt.Errorf("corrupt blueprint: key %q has %d slots", key, len(strat))
		}
	}
	return &bp, nil
}

// Strategy returns the stored average strategy for an info-set key.
func (b *Blueprint) Strategy(key []byte) ([]float64, bool) {
	if b == nil {
		return nil, false
	}
	strat, ok := b.Strategies[string(key)]
	return strat, ok
}

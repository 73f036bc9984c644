package solver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTrainingConfigValidate(t *testing.T) {
	cfg := DefaultTrainingConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := cfg
	bad.Iterations = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero iterations should fail")
	}

	bad = cfg
	bad.PruneThreshold = 100
	if err := bad.Validate(); err == nil {
		t.Error("positive prune threshold should fail")
	}

	bad = cfg
	bad.PruneEnabled = false
	bad.PruneThreshold = 100 // ignored when pruning is off
	if err := bad.Validate(); err != nil {
		t.Errorf("prune settings should be ignored when disabled: %v", err)
	}
}

func TestAbstractionConfigValidate(t *testing.T) {
	cfg := DefaultAbstraction()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default abstraction invalid: %v", err)
	}

	bad := cfg
	bad.NumActions = 5
	if err := bad.Validate(); err == nil {
		t.Error("wrong action alphabet size should fail")
	}

	// The engine is fixed at 20 BB with 0.5/1.0 blinds; a config describing
	// any other game must be rejected rather than silently ignored.
	bad = cfg
	bad.StackBB = 15
	if err := bad.Validate(); err == nil {
		t.Error("non-20BB stack should fail")
	}

	bad = cfg
	bad.SmallBlindBB = 0.25
	if err := bad.Validate(); err == nil {
		t.Error("non-standard small blind should fail")
	}

	bad = cfg
	bad.BigBlindBB = 2
	if err := bad.Validate(); err == nil {
		t.Error("non-standard big blind should fail")
	}
}

func TestLoadConfigFileMissingUsesDefaults(t *testing.T) {
	train, abs, err := LoadConfigFile(filepath.Join(t.TempDir(), "none.hcl"))
	if err != nil {
		t.Fatal(err)
	}
	if train != DefaultTrainingConfig() {
		t.Error("missing file should return default training config")
	}
	if abs != DefaultAbstraction() {
		t.Error("missing file should return default abstraction")
	}
}

func TestLoadConfigFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.hcl")
	content := `
training {
  iterations      = 5000
  seed            = 99
  parallel_tables = 4
  use_linear_cfr  = true
  prune           = true
  prune_threshold = -150
}

abstraction {
  stack_bb             = 20
  sb                   = 0.5
  bb                   = 1.0
  num_actions          = 10
  num_buckets_preflop  = 15
  num_buckets_postflop = 50
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	train, abs, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if train.Iterations != 5000 || train.Seed != 99 || train.ParallelTables != 4 {
		t.Errorf("unexpected training config: %+v", train)
	}
	if train.PruneThreshold != -150 {
		t.Errorf("prune threshold %v, want -150", train.PruneThreshold)
	}
	if train.PruneWarmup == 0 || train.PruneRevisitEvery == 0 {
		t.Error("unset prune fields should fall back to defaults")
	}
	if abs.PreflopBuckets != 15 || abs.PostflopBuckets != 50 {
		t.Errorf("unexpected abstraction: %+v", abs)
	}
}

func TestLoadConfigFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	if err := os.WriteFile(path, []byte("training { iterations = }"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}

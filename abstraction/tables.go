package abstraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lox/pokerblueprint/internal/fileutil"
)

const tableFileVersion = 1

// Default table file names inside a bucket directory.
const (
	PreflopTableFile  = "preflop_buckets.json"
	PostflopTableFile = "postflop_buckets.json"
)

// PreflopTable maps each of the 169 canonical starting hands to a bucket.
type PreflopTable struct {
	Version int   `json:"version"`
	Buckets int   `json:"buckets"`
	Hands   []int `json:"hands"` // indexed by canonical id, length 169
}

// PostflopTable holds per-street k-means centers in equity space. A lookup
// estimates the hand's equity and takes the nearest center.
type PostflopTable struct {
	Version  int         `json:"version"`
	Streets  int         `json:"streets"`
	Buckets  int         `json:"buckets"`
	Rollouts int         `json:"rollouts"` // rollouts used at lookup time
	Centers  [][]float64 `json:"centers"`  // [flop, turn, river]
}

// Tables bundles the preflop and postflop bucket tables.
type Tables struct {
	Preflop  *PreflopTable
	Postflop *PostflopTable
}

// Validate checks the self-describing headers.
func (t *PreflopTable) Validate() error {
	if t.Version != tableFileVersion {
		return fmt.Errorf("unsupported preflop table version %d", t.Version)
	}
	if t.Buckets <= 0 {
		return errors.New("preflop table bucket count must be > 0")
	}
	if len(t.Hands) != NumCanonicalHands {
		return fmt.Errorf("preflop table has %d hands, want %d", len(t.Hands), NumCanonicalHands)
	}
	for i, b := range t.Hands {
		if b < 0 || b >= t.Buckets {
			return fmt.Errorf("preflop table hand %d maps to bucket %d outside [0,%d)", i, b, t.Buckets)
		}
	}
	return nil
}

func (t *PostflopTable) Validate() error {
	if t.Version != tableFileVersion {
		return fmt.Errorf("unsupported postflop table version %d", t.Version)
	}
	if t.Streets != 3 {
		return fmt.Errorf("postflop table has %d streets, want 3", t.Streets)
	}
	if t.Buckets <= 0 {
		return errors.New("postflop table bucket count must be > 0")
	}
	if t.Rollouts <= 0 {
		return errors.New("postflop table rollout count must be > 0")
	}
	if len(t.Centers) != 3 {
		return fmt.Errorf("postflop table has %d center sets, want 3", len(t.Centers))
	}
	for i, centers := range t.Centers {
		if len(centers) == 0 || len(centers) > t.Buckets {
			return fmt.Errorf("street %d has %d centers, want 1..%d", i, len(centers), t.Buckets)
		}
	}
	return nil
}

// SaveTables writes both tables into dir atomically.
func SaveTables(t *Tables, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}
	if err := saveJSON(filepath.Join(dir, PreflopTableFile), t.Preflop); err != nil {
		return fmt.Errorf("save preflop table: %w", err)
	}
	if err := saveJSON(filepath.Join(dir, PostflopTableFile), t.Postflop); err != nil {
		return fmt.Errorf("save postflop table: %w", err)
	}
	return nil
}

// LoadTables reads both tables from dir. A missing directory or file returns
// os.ErrNotExist so callers can fall back to heuristic bucketing.
func LoadTables(dir string) (*Tables, error) {
	var pre PreflopTable
	if err := loadJSON(filepath.Join(dir, PreflopTableFile), &pre); err != nil {
		return nil, err
	}
	if err := pre.Validate(); err != nil {
		return nil, err
	}
	var post PostflopTable
	if err := loadJSON(filepath.Join(dir, PostflopTableFile), &post); err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	return &Tables{Preflop: &pre, Postflop: &post}, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

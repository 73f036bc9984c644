package abstraction

import (
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerblueprint/internal/randutil"
	"github.com/lox/pokerblueprint/poker"
)

// BuildConfig controls bucket table construction.
type BuildConfig struct {
	PreflopBuckets   int
	PostflopBuckets  int
	PreflopRollouts  int // equity rollouts per canonical hand
	PostflopSamples  int // sampled (hole, board) pairs per street
	PostflopRollouts int // equity rollouts per sample and per lookup
	Seed             int64
}

// DefaultBuildConfig returns the production table sizes with moderate
// sampling effort.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		PreflopBuckets:   DefaultPreflopBuckets,
		PostflopBuckets:  DefaultPostflopBuckets,
		PreflopRollouts:  1000,
		PostflopSamples:  5000,
		PostflopRollouts: 200,
		Seed:             1,
	}
}

// Validate ensures the build parameters are usable.
func (c BuildConfig) Validate() error {
	if c.PreflopBuckets <= 0 || c.PostflopBuckets <= 0 {
		return errors.New("bucket counts must be > 0")
	}
	if c.PreflopRollouts <= 0 || c.PostflopSamples <= 0 || c.PostflopRollouts <= 0 {
		return errors.New("sample and rollout counts must be > 0")
	}
	return nil
}

// BuildTables constructs the preflop and postflop bucket tables: preflop by
// equity-vs-random over the 169 canonical hands with equal-frequency
// binning, postflop by sampling (hole, board) equities and clustering them
// with 1-D k-means per street. The three postflop streets build in parallel.
func BuildTables(cfg BuildConfig) (*Tables, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pre := buildPreflop(cfg)

	post := &PostflopTable{
		Version:  tableFileVersion,
		Streets:  3,
		Buckets:  cfg.PostflopBuckets,
		Rollouts: cfg.PostflopRollouts,
		Centers:  make([][]float64, 3),
	}
	var g errgroup.Group
	for i, street := range []Street{StreetFlop, StreetTurn, StreetRiver} {
		g.Go(func() error {
			post.Centers[i] = buildStreetCenters(cfg, street, cfg.Seed+int64(i)+1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Tables{Preflop: pre, Postflop: post}, nil
}

func buildPreflop(cfg BuildConfig) *PreflopTable {
	type handEquity struct {
		id int
		eq float64
	}
	equities := make([]handEquity, NumCanonicalHands)
	for id := 0; id < NumCanonicalHands; id++ {
		c0, c1 := CanonicalCards(id)
		rng := randutil.New(cfg.Seed ^ int64(id)<<8)
		equities[id] = handEquity{
			id: id,
			eq: EstimateEquity([]poker.Card{c0, c1}, nil, cfg.PreflopRollouts, rng),
		}
	}
	sort.Slice(equities, func(i, j int) bool { return equities[i].eq < equities[j].eq })

	table := &PreflopTable{
		Version: tableFileVersion,
		Buckets: cfg.PreflopBuckets,
		Hands:   make([]int, NumCanonicalHands),
	}
	for pos, he := range equities {
		b := pos * cfg.PreflopBuckets / NumCanonicalHands
		if b >= cfg.PreflopBuckets {
			b = cfg.PreflopBuckets - 1
		}
		table.Hands[he.id] = b
	}
	return table
}

func buildStreetCenters(cfg BuildConfig, street Street, seed int64) []float64 {
	rng := randutil.New(seed)
	boardLen := street.BoardCards()
	deck := make([]poker.Card, poker.NumCards)
	for i := range deck {
		deck[i] = poker.Card(i)
	}

	equities := make([]float64, 0, cfg.PostflopSamples)
	for n := 0; n < cfg.PostflopSamples; n++ {
		draw := 2 + boardLen
		for i := 0; i < draw; i++ {
			j := i + rng.IntN(len(deck)-i)
			deck[i], deck[j] = deck[j], deck[i]
		}
		hole := []poker.Card{deck[0], deck[1]}
		board := append([]poker.Card(nil), deck[2:2+boardLen]...)
		equities = append(equities, EstimateEquity(hole, board, cfg.PostflopRollouts, rng))
	}
	return kmeans1D(equities, cfg.PostflopBuckets, 30)
}

// kmeans1D clusters values into at most k centers, initialised at quantiles.
// Returns the sorted centers; empty clusters collapse away.
func kmeans1D(values []float64, k, iterations int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) <= k {
		return sorted
	}

	centers := make([]float64, k)
	for i := range centers {
		centers[i] = sorted[(2*i+1)*len(sorted)/(2*k)]
	}

	sums := make([]float64, k)
	counts := make([]int, k)
	for it := 0; it < iterations; it++ {
		for i := range sums {
			sums[i] = 0
			counts[i] = 0
		}
		// Centers stay sorted, so assignment is a linear merge.
		ci := 0
		for _, v := range sorted {
			for ci+1 < k && centers[ci+1]-v < v-centers[ci] {
				ci++
			}
			sums[ci] += v
			counts[ci]++
		}
		moved := false
		for i := range centers {
			if counts[i] == 0 {
				continue
			}
			next := sums[i] / float64(counts[i])
			if next != centers[i] {
				centers[i] = next
				moved = true
			}
		}
		sort.Float64s(centers)
		if !moved {
			break
		}
	}

	// Drop empty clusters (duplicated centers).
	out := centers[:0]
	for i, c := range centers {
		if i == 0 || c != centers[i-1] {
			out = append(out, c)
		}
	}
	return append([]float64(nil), out...)
}

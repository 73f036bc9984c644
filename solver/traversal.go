package solver

import (
	"fmt"
	rand "math/rand/v2"
)

// maxTraversalDepth bounds recursion as a guard against a broken game
// implementation that never terminates; real hands stay far below it.
const maxTraversalDepth = 512

// traversalContext carries per-worker state through one traversal. Buffers
// are indexed by depth so recursion does not allocate in the hot loop.
type traversalContext struct {
	trainer   *Trainer
	game      Game
	rng       *rand.Rand
	iteration int
	traverser int

	// traverserSeen flips once the traverser's first decision node has been
	// visited; pruning stays off until then.
	traverserSeen bool

	stats  *TraversalStats
	levels []traversalLevel

	payoffBuf [NumPlayers]float64
}

type traversalLevel struct {
	legal    []int
	key      []byte
	strategy [NumActions]float64
	utils    [NumActions]float64
	delta    [NumActions]float64
	regrets  [NumActions]float64
	pruned   [NumActions]bool
}

func (tc *traversalContext) level(depth int) *traversalLevel {
	for len(tc.levels) <= depth {
		tc.levels = append(tc.levels, traversalLevel{
			legal: make([]int, 0, NumActions),
			key:   make([]byte, 0, 64),
		})
	}
	return &tc.levels[depth]
}

// traverse returns the expected utility of the current state to the
// traverser under external sampling: chance and opponent nodes sample one
// continuation, traverser nodes expand every legal action.
func (tc *traversalContext) traverse(depth int) (float64, error) {
	if depth >= maxTraversalDepth {
		return 0, fmt.Errorf("traversal exceeded depth %d; game failed to terminate", maxTraversalDepth)
	}
	tc.stats.NodesVisited++
	if depth > tc.stats.MaxDepth {
		tc.stats.MaxDepth = depth
	}

	g := tc.game
	if g.IsTerminal() {
		tc.stats.TerminalNodes++
		return g.Payoffs(tc.payoffBuf[:])[tc.traverser], nil
	}

	if g.IsChanceNode() {
		g.SampleChance(tc.rng)
		v, err := tc.traverse(depth + 1)
		g.UndoAction()
		return v, err
	}

	player := g.CurrentPlayer()
	lvl := tc.level(depth)
	legal := g.LegalActions(lvl.legal)
	if len(legal) == 0 {
		return 0, fmt.Errorf("no legal actions at a decision node (player %d)", player)
	}
	key := g.InfoKey(player, lvl.key[:0])
	entry := tc.trainer.table.Get(key)
	strategy := entry.Strategy(legal, lvl.strategy[:])

	if player != tc.traverser {
		idx := sampleAction(legal, strategy, tc.rng)
		g.ApplyAction(legal[idx])
		v, err := tc.traverse(depth + 1)
		g.UndoAction()
		return v, err
	}

	pruneActive := tc.pruneFlags(entry, legal, lvl)
	tc.traverserSeen = true

	ev := 0.0
	for _, a := range legal {
		if pruneActive && lvl.pruned[a] {
			lvl.utils[a] = 0
			tc.stats.PrunedActions++
			continue
		}
		g.ApplyAction(a)
		u, err := tc.traverse(depth + 1)
		g.UndoAction()
		if err != nil {
			return 0, err
		}
		lvl.utils[a] = u
		ev += strategy[a] * u
	}

	weight := 1.0
	if tc.trainer.trainCfg.UseLinearCFR {
		weight = float64(tc.iteration)
	}
	for _, a := range legal {
		lvl.delta[a] = lvl.utils[a] - ev
		if pruneActive && lvl.pruned[a] {
			// Pruned actions record zero strategy mass this visit.
			strategy[a] = 0
		}
	}
	entry.Update(legal, lvl.delta[:], strategy, weight)
	return ev, nil
}

// pruneFlags marks deeply negative-regret actions for skipping. Pruning is
// disabled during warm-up, on revisit iterations (so pruned branches are
// periodically re-evaluated), at the traverser's first decision node of the
// traversal, and whenever it would skip every legal action.
func (tc *traversalContext) pruneFlags(entry *Entry, legal []int, lvl *traversalLevel) bool {
	cfg := &tc.trainer.trainCfg
	if !cfg.PruneEnabled || !tc.traverserSeen {
		return false
	}
	if tc.iteration <= cfg.PruneWarmup || tc.iteration%cfg.PruneRevisitEvery == 0 {
		return false
	}

	regrets := entry.RegretSnapshot(lvl.regrets[:])
	any := false
	kept := 0
	for _, a := range legal {
		lvl.pruned[a] = regrets[a] < cfg.PruneThreshold && tc.rng.Float64() < cfg.PruneSkipProb
		if lvl.pruned[a] {
			any = true
		} else {
			kept++
		}
	}
	if !any {
		return false
	}
	if kept == 0 {
		// Never empty the action set.
		for _, a := range legal {
			lvl.pruned[a] = false
		}
		return false
	}
	return true
}

// sampleAction draws an index into legal according to strategy (which is
// indexed by action id). Falls back to uniform if the mass is degenerate.
func sampleAction(legal []int, strategy []float64, rng *rand.Rand) int {
	total := 0.0
	for _, a := range legal {
		total += strategy[a]
	}
	if total <= 0 {
		return rng.IntN(len(legal))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, a := range legal {
		acc += strategy[a]
		if r <= acc {
			return i
		}
	}
	return len(legal) - 1
}

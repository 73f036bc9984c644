package solver

import rand "math/rand/v2"

// NumActions is the fixed abstract action alphabet size. Games with fewer
// actions leave the upper ids unused; illegal slots carry zero regret and
// strategy mass and are masked during regret matching.
const NumActions = 10

// NumPlayers is the number of seats the trainer traverses for.
const NumPlayers = 3

// Game is the capability set the trainer is parameterized over. A Game is a
// single mutable hand: ApplyAction and SampleChance modify it in place and
// UndoAction reverses the most recent of either, so one instance serves an
// entire traversal without allocation. Implementations are not safe for
// concurrent use; each worker owns its own instance.
type Game interface {
	// DealNewHand resets to a freshly dealt hand using rng.
	DealNewHand(rng *rand.Rand)

	// IsChanceNode reports whether a chance event must be sampled next.
	IsChanceNode() bool

	// SampleChance resolves the pending chance event in place.
	SampleChance(rng *rand.Rand)

	// IsTerminal reports whether the hand has resolved.
	IsTerminal() bool

	// CurrentPlayer returns the acting player at a decision node.
	CurrentPlayer() int

	// LegalActions appends the legal abstract action ids to buf. Non-empty
	// at every decision node.
	LegalActions(buf []int) []int

	// InfoKey appends the info-set key for player's view to buf. Keys are
	// stable across runs and injective over distinct abstracted histories.
	InfoKey(player int, buf []byte) []byte

	// ApplyAction applies an abstract action in place.
	ApplyAction(action int)

	// UndoAction reverses the most recent ApplyAction or SampleChance.
	UndoAction()

	// Payoffs fills buf with each player's net result in big blinds at a
	// terminal state. The entries sum to zero.
	Payoffs(buf []float64) []float64
}

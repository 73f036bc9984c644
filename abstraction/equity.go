package abstraction

import (
	"hash/fnv"
	rand "math/rand/v2"

	"github.com/lox/pokerblueprint/internal/randutil"
	"github.com/lox/pokerblueprint/poker"
)

// EstimateEquity Monte-Carlo estimates the probability that hole wins a
// showdown against one uniformly random opponent hand, running the board out
// to five cards. Ties count half. Board may hold 0, 3, 4 or 5 cards.
func EstimateEquity(hole, board []poker.Card, rollouts int, rng *rand.Rand) float64 {
	var used [poker.NumCards]bool
	for _, c := range hole {
		used[c] = true
	}
	for _, c := range board {
		used[c] = true
	}
	deck := make([]poker.Card, 0, poker.NumCards)
	for c := 0; c < poker.NumCards; c++ {
		if !used[c] {
			deck = append(deck, poker.Card(c))
		}
	}

	need := 5 - len(board)
	mine := make([]poker.Card, 0, 7)
	theirs := make([]poker.Card, 0, 7)
	wins := 0.0
	for n := 0; n < rollouts; n++ {
		// Partial Fisher-Yates: draw 2 opponent cards + the runout.
		draw := 2 + need
		for i := 0; i < draw; i++ {
			j := i + rng.IntN(len(deck)-i)
			deck[i], deck[j] = deck[j], deck[i]
		}
		mine = append(mine[:0], hole...)
		mine = append(mine, board...)
		theirs = append(theirs[:0], deck[0], deck[1])
		theirs = append(theirs, board...)
		for i := 0; i < need; i++ {
			mine = append(mine, deck[2+i])
			theirs = append(theirs, deck[2+i])
		}
		switch poker.CompareHands(poker.EvaluateHand(mine), poker.EvaluateHand(theirs)) {
		case 1:
			wins++
		case 0:
			wins += 0.5
		}
	}
	return wins / float64(rollouts)
}

// equitySeed derives a deterministic RNG seed from the canonical identity of
// a lookup point, so bucket assignment is a pure function of
// (street, hole, board) across runs.
func equitySeed(street Street, hole, board []poker.Card) int64 {
	h := fnv.New64a()
	h.Write([]byte{byte(street)})
	h.Write([]byte{byte(CanonicalHand(hole[0], hole[1]))})
	sorted := make([]byte, len(board))
	for i, c := range board {
		sorted[i] = byte(c)
	}
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	h.Write(sorted)
	// Hole cards beyond the canonical id still matter postflop (suits
	// interact with the board), so mix them in exactly.
	lo, hi := byte(hole[0]), byte(hole[1])
	if lo > hi {
		lo, hi = hi, lo
	}
	h.Write([]byte{lo, hi})
	return int64(h.Sum64())
}

// lookupRNG returns the deterministic generator used for equity rollouts at
// lookup time.
func lookupRNG(street Street, hole, board []poker.Card) *rand.Rand {
	return randutil.New(equitySeed(street, hole, board))
}

package nlhe

import (
	"sort"

	"github.com/lox/pokerblueprint/poker"
)

// resolveShowdown partitions the pot into side pots by ascending commitment
// level and awards each to the best eligible hand. Ties split evenly with
// odd chips going to the earliest eligible winner in postflop order.
func (h *Hand) resolveShowdown() {
	h.done = true
	h.toAct = noPlayer
	h.chancePending = false

	var ranks [NumPlayers]poker.HandRank
	cards := make([]poker.Card, 0, 7)
	for p := 0; p < NumPlayers; p++ {
		if h.folded[p] {
			continue
		}
		cards = append(cards[:0], h.holeCards[p][0], h.holeCards[p][1])
		cards = append(cards, h.board[:h.boardLen]...)
		ranks[p] = poker.EvaluateHand(cards)
	}

	// Commitment levels of the players still in the hand.
	var levels []int
	for p := 0; p < NumPlayers; p++ {
		if !h.folded[p] && h.totalCommitted[p] > 0 {
			levels = append(levels, h.totalCommitted[p])
		}
	}
	sort.Ints(levels)

	distributed := 0
	prev := 0
	var lastWinners []int
	for _, level := range levels {
		if level == prev {
			continue
		}
		delta := level - prev

		// All contributors fund the slice, folded players included up to
		// their commitment.
		size := 0
		for p := 0; p < NumPlayers; p++ {
			c := h.totalCommitted[p] - prev
			if c > delta {
				c = delta
			}
			if c > 0 {
				size += c
			}
		}
		prev = level
		if size == 0 {
			continue
		}

		winners := h.potWinners(level, ranks)
		if len(winners) == 0 {
			continue
		}
		h.award(size, winners)
		distributed += size
		lastWinners = winners
	}

	// Chips committed beyond the highest live level (a fold after an
	// unmatched raise) cannot be won at any level; hand them to the winners
	// of the top pot so chips are conserved.
	if rem := h.Pot() - distributed; rem > 0 && len(lastWinners) > 0 {
		h.award(rem, lastWinners)
	}
}

// potWinners returns the non-folded contributors at the level holding the
// best hand, in postflop order.
func (h *Hand) potWinners(level int, ranks [NumPlayers]poker.HandRank) []int {
	var best poker.HandRank
	found := false
	for p := 0; p < NumPlayers; p++ {
		if h.folded[p] || h.totalCommitted[p] < level {
			continue
		}
		if !found || ranks[p] > best {
			best = ranks[p]
			found = true
		}
	}
	if !found {
		return nil
	}
	winners := make([]int, 0, NumPlayers)
	for _, p := range postflopOrder {
		if h.folded[p] || h.totalCommitted[p] < level {
			continue
		}
		if ranks[p] == best {
			winners = append(winners, p)
		}
	}
	return winners
}

// award splits size chips across winners; the remainder goes one chip at a
// time to the earliest winners, which are already in postflop order.
func (h *Hand) award(size int, winners []int) {
	share := size / len(winners)
	odd := size % len(winners)
	for i, p := range winners {
		h.stacks[p] += share
		if i < odd {
			h.stacks[p]++
		}
	}
}

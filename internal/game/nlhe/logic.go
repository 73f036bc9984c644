package nlhe

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pokerblueprint/abstraction"
)

// betState builds the action-abstraction view of the current decision point.
func (h *Hand) betState() abstraction.BetState {
	return abstraction.BetState{
		Street:        h.street,
		Player:        h.toAct,
		Pot:           h.Pot(),
		Bets:          h.betsThisRound,
		Stacks:        h.stacks,
		LastRaiseSize: h.lastRaiseSize,
		BigBlind:      BigBlind,
	}
}

// LegalActions appends the legal abstract action ids for the acting player.
func (h *Hand) LegalActions(buf []int) []int {
	if h.done || h.chancePending {
		return buf[:0]
	}
	view := h.betState()
	return abstraction.LegalActions(&view, buf)
}

// SampleChance deals the next street. The deck was shuffled at DealNewHand,
// so drawing the next cards is a uniform sample without replacement.
func (h *Hand) SampleChance(rng *rand.Rand) {
	if !h.chancePending || h.done {
		return
	}
	h.undo = append(h.undo, h.snapshot(undoDeal))
	rec := len(h.undo) - 1
	defer func() {
		h.undo[rec].dealtCards = h.boardLen - h.undo[rec].boardLen
	}()

	n := 3
	if h.street != abstraction.StreetPreflop {
		n = 1
	}
	for i := 0; i < n; i++ {
		h.board[h.boardLen] = h.deck.DealOne()
		h.boardLen++
	}

	h.history = append(h.history, abstraction.HistoryStreetDelim)
	h.street++
	h.chancePending = false
	h.lastRaiser = noPlayer
	h.lastRaiseSize = 0
	for p := 0; p < NumPlayers; p++ {
		h.betsThisRound[p] = 0
		h.actedThisRound[p] = false
	}

	// First to act postflop: SB, then BB, then button.
	for _, p := range postflopOrder {
		if !h.folded[p] && !h.allIn[p] {
			h.toAct = p
			return
		}
	}
	h.runOutAndResolve()
}

var postflopOrder = [NumPlayers]int{1, 2, 0}

// ApplyAction applies an abstract action for the acting player and advances
// the hand. Panics on structurally illegal actions, which indicate an
// abstraction or legality bug rather than a recoverable condition.
func (h *Hand) ApplyAction(action int) {
	if h.done || h.chancePending {
		panic("nlhe: action applied at non-decision node")
	}
	p := h.toAct
	view := h.betState()
	fold, target := abstraction.ActionTarget(&view, action)

	h.undo = append(h.undo, h.snapshot(undoAction))
	rec := len(h.undo) - 1
	defer func() {
		h.undo[rec].dealtCards = h.boardLen - h.undo[rec].boardLen
	}()
	h.history = append(h.history, abstraction.HistoryActionByte(action))
	h.actedThisRound[p] = true

	prevMax := h.maxBet()
	if fold {
		h.folded[p] = true
	} else {
		add := target - h.betsThisRound[p]
		if add < 0 || add > h.stacks[p] {
			panic(fmt.Sprintf("nlhe: action %d commits %d chips with stack %d", action, add, h.stacks[p]))
		}
		h.stacks[p] -= add
		h.betsThisRound[p] = target
		h.totalCommitted[p] += add
		if target > prevMax {
			h.lastRaiser = p
			h.lastRaiseSize = target - prevMax
			// A raise reopens the action for everyone else.
			for q := 0; q < NumPlayers; q++ {
				h.actedThisRound[q] = q == p
			}
		}
		if h.stacks[p] == 0 {
			h.allIn[p] = true
		}
	}

	if h.foldedCount() == NumPlayers-1 {
		h.resolveFoldWin()
		return
	}

	h.advance()
}

func (h *Hand) maxBet() int {
	m := h.betsThisRound[0]
	if h.betsThisRound[1] > m {
		m = h.betsThisRound[1]
	}
	if h.betsThisRound[2] > m {
		m = h.betsThisRound[2]
	}
	return m
}

func (h *Hand) foldedCount() int {
	n := 0
	for p := 0; p < NumPlayers; p++ {
		if h.folded[p] {
			n++
		}
	}
	return n
}

func (h *Hand) canActCount() int {
	n := 0
	for p := 0; p < NumPlayers; p++ {
		if !h.folded[p] && !h.allIn[p] {
			n++
		}
	}
	return n
}

// roundComplete reports whether the betting round is closed: every player
// who can still act has acted since the last raise and the live bets match.
func (h *Hand) roundComplete() bool {
	maxBet := h.maxBet()
	for p := 0; p < NumPlayers; p++ {
		if h.folded[p] || h.allIn[p] {
			continue
		}
		if !h.actedThisRound[p] {
			return false
		}
		if h.betsThisRound[p] != maxBet {
			return false
		}
	}
	return true
}

// advance moves to the next decision point after an action: the next player
// in order, the next street, or resolution.
func (h *Hand) advance() {
	if h.canActCount() == 0 {
		h.runOutAndResolve()
		return
	}

	if !h.roundComplete() {
		next := (h.toAct + 1) % NumPlayers
		for h.folded[next] || h.allIn[next] {
			next = (next + 1) % NumPlayers
		}
		h.toAct = next
		return
	}

	// Round closed. With fewer than two players able to act there is no
	// further betting; run the board out.
	if h.canActCount() < 2 {
		h.runOutAndResolve()
		return
	}
	if h.street == abstraction.StreetRiver {
		h.resolveShowdown()
		return
	}
	h.chancePending = true
	h.toAct = noPlayer
}

// runOutAndResolve deals any remaining board cards and goes to showdown.
func (h *Hand) runOutAndResolve() {
	for h.boardLen < 5 {
		n := 3
		if h.boardLen > 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			h.board[h.boardLen] = h.deck.DealOne()
			h.boardLen++
		}
		h.street++
	}
	h.resolveShowdown()
}

func (h *Hand) resolveFoldWin() {
	winner := noPlayer
	for p := 0; p < NumPlayers; p++ {
		if !h.folded[p] {
			winner = p
			break
		}
	}
	h.stacks[winner] += h.Pot()
	h.done = true
	h.toAct = noPlayer
	h.chancePending = false
}

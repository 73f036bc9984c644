// Package nlhe implements a 3-player no-limit Texas Hold'em hand at a fixed
// 20 big-blind stack depth, exposing the capability set the MCCFR trainer
// traverses: deal, chance sampling, legal abstract actions, in-place apply
// with exact undo, and zero-sum payoffs with full side-pot resolution.
//
// Chips are tracked in integer half-big-blind units so pot conservation and
// odd-chip arithmetic are exact; payoffs convert to big blinds on the way
// out.
package nlhe

import (
	rand "math/rand/v2"

	"github.com/lox/pokerblueprint/abstraction"
	"github.com/lox/pokerblueprint/poker"
)

const (
	// NumPlayers is fixed: P0 = button, P1 = small blind, P2 = big blind.
	NumPlayers = 3

	// ChipsPerBB converts between internal chip units and big blinds.
	ChipsPerBB = 2

	// StartingStack is 20 big blinds in chip units.
	StartingStack = 20 * ChipsPerBB

	// SmallBlind and BigBlind in chip units.
	SmallBlind = 1
	BigBlind   = 2

	noPlayer = -1
)

// undoKind discriminates what an undo record reverses.
type undoKind uint8

const (
	undoAction undoKind = iota
	undoDeal
)

// undoRecord snapshots every scalar field ApplyAction or SampleChance can
// touch, so popping one restores the hand bit-for-bit.
type undoRecord struct {
	kind           undoKind
	stacks         [NumPlayers]int
	betsThisRound  [NumPlayers]int
	totalCommitted [NumPlayers]int
	folded         [NumPlayers]bool
	allIn          [NumPlayers]bool
	actedThisRound [NumPlayers]bool
	street         abstraction.Street
	toAct          int
	lastRaiser     int
	lastRaiseSize  int
	boardLen       int
	dealtCards     int
	historyLen     int
	done           bool
	chancePending  bool
}

// Hand is the mutable state of a single 3-player hand. One Hand is reused
// across an entire traversal via ApplyAction/UndoAction.
type Hand struct {
	deck      *poker.Deck
	mapper    *abstraction.Mapper
	holeCards [NumPlayers][2]poker.Card
	board     [5]poker.Card
	boardLen  int

	startStacks    [NumPlayers]int
	stacks         [NumPlayers]int
	betsThisRound  [NumPlayers]int
	totalCommitted [NumPlayers]int
	folded         [NumPlayers]bool
	allIn          [NumPlayers]bool
	actedThisRound [NumPlayers]bool

	street        abstraction.Street
	toAct         int
	lastRaiser    int
	lastRaiseSize int
	done          bool
	chancePending bool

	// history holds the abstracted public action sequence: one byte per
	// action, one street delimiter per chance event.
	history []byte
	undo    []undoRecord

	payoffBuf [NumPlayers]float64
}

// NewHand constructs an empty hand bound to a bucket mapper. Call
// DealNewHand before use.
func NewHand(mapper *abstraction.Mapper) *Hand {
	return &Hand{
		mapper:  mapper,
		history: make([]byte, 0, 64),
		undo:    make([]undoRecord, 0, 64),
	}
}

// DealNewHand resets the hand: fresh shuffle, hole cards dealt, blinds
// posted, button to act first preflop.
func (h *Hand) DealNewHand(rng *rand.Rand) {
	if h.deck == nil {
		h.deck = poker.NewDeck(rng)
	} else {
		h.deck.Shuffle()
	}
	h.resetForDeal()
}

// resetForDeal initializes a hand from whatever deck is installed. Split out
// from DealNewHand so tests can stack the deck.
func (h *Hand) resetForDeal() {
	for p := 0; p < NumPlayers; p++ {
		h.startStacks[p] = StartingStack
		h.stacks[p] = StartingStack
		h.betsThisRound[p] = 0
		h.totalCommitted[p] = 0
		h.folded[p] = false
		h.allIn[p] = false
		h.actedThisRound[p] = false
		h.holeCards[p][0] = h.deck.DealOne()
		h.holeCards[p][1] = h.deck.DealOne()
	}
	h.boardLen = 0
	h.street = abstraction.StreetPreflop
	h.done = false
	h.chancePending = false
	h.history = h.history[:0]
	h.undo = h.undo[:0]

	h.postBlind(1, SmallBlind)
	h.postBlind(2, BigBlind)

	h.toAct = 0
	h.lastRaiser = 2 // BB anchors the preflop min-raise
	h.lastRaiseSize = BigBlind
}

func (h *Hand) postBlind(player, amount int) {
	if amount > h.stacks[player] {
		amount = h.stacks[player]
	}
	h.stacks[player] -= amount
	h.betsThisRound[player] = amount
	h.totalCommitted[player] = amount
	if h.stacks[player] == 0 {
		h.allIn[player] = true
	}
}

// IsTerminal reports whether the hand has been resolved.
func (h *Hand) IsTerminal() bool {
	return h.done
}

// IsChanceNode reports whether community cards must be dealt before the next
// decision.
func (h *Hand) IsChanceNode() bool {
	return h.chancePending && !h.done
}

// CurrentPlayer returns the acting player, or -1 at chance/terminal nodes.
func (h *Hand) CurrentPlayer() int {
	if h.done || h.chancePending {
		return noPlayer
	}
	return h.toAct
}

// Pot returns the total chips committed this hand.
func (h *Hand) Pot() int {
	return h.totalCommitted[0] + h.totalCommitted[1] + h.totalCommitted[2]
}

// Board returns the community cards revealed so far.
func (h *Hand) Board() []poker.Card {
	return h.board[:h.boardLen]
}

// HoleCards returns a player's private cards.
func (h *Hand) HoleCards(player int) []poker.Card {
	return h.holeCards[player][:]
}

// Street returns the current betting round.
func (h *Hand) Street() abstraction.Street {
	return h.street
}

// InfoKey appends the acting player's info-set key to buf and returns it.
// The key composes the player's bucket with the public action history, so
// private cards enter only through the bucket.
func (h *Hand) InfoKey(player int, buf []byte) []byte {
	bucket := h.mapper.Bucket(h.street, h.holeCards[player][:], h.board[:h.boardLen])
	return abstraction.InfoKey(buf, bucket, h.history)
}

// Payoffs fills buf with each player's net result in big blinds. Only valid
// at terminal states; the entries sum to zero.
func (h *Hand) Payoffs(buf []float64) []float64 {
	if buf == nil {
		buf = h.payoffBuf[:]
	}
	for p := 0; p < NumPlayers; p++ {
		buf[p] = float64(h.stacks[p]-h.startStacks[p]) / ChipsPerBB
	}
	return buf[:NumPlayers]
}

func (h *Hand) snapshot(kind undoKind) undoRecord {
	return undoRecord{
		kind:           kind,
		stacks:         h.stacks,
		betsThisRound:  h.betsThisRound,
		totalCommitted: h.totalCommitted,
		folded:         h.folded,
		allIn:          h.allIn,
		actedThisRound: h.actedThisRound,
		street:         h.street,
		toAct:          h.toAct,
		lastRaiser:     h.lastRaiser,
		lastRaiseSize:  h.lastRaiseSize,
		boardLen:       h.boardLen,
		historyLen:     len(h.history),
		done:           h.done,
		chancePending:  h.chancePending,
	}
}

// UndoAction reverses the most recent ApplyAction or SampleChance.
func (h *Hand) UndoAction() {
	if len(h.undo) == 0 {
		return
	}
	rec := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	h.stacks = rec.stacks
	h.betsThisRound = rec.betsThisRound
	h.totalCommitted = rec.totalCommitted
	h.folded = rec.folded
	h.allIn = rec.allIn
	h.actedThisRound = rec.actedThisRound
	h.street = rec.street
	h.toAct = rec.toAct
	h.lastRaiser = rec.lastRaiser
	h.lastRaiseSize = rec.lastRaiseSize
	h.boardLen = rec.boardLen
	h.history = h.history[:rec.historyLen]
	h.done = rec.done
	h.chancePending = rec.chancePending
	if rec.dealtCards > 0 {
		h.deck.Undeal(rec.dealtCards)
	}
}

// Package kuhn implements 3-player Kuhn poker: a 4-card deck, a one-chip
// ante, and a single betting round of pass/bet. The game is small enough to
// verify MCCFR convergence against an exact best response.
package kuhn

import (
	rand "math/rand/v2"

	"github.com/lox/pokerblueprint/abstraction"
)

const (
	// NumPlayers is fixed at three.
	NumPlayers = 3

	// DeckSize is the number of distinct cards (think J, Q, K, A).
	DeckSize = 4

	// ActionPass checks, or folds when facing a bet.
	ActionPass = 0
	// ActionBet bets one chip, or calls when facing a bet.
	ActionBet = 1
)

// Hand is the mutable state of a single 3-player Kuhn hand.
type Hand struct {
	cards   [NumPlayers]int
	history []int
	toAct   int
}

// NewHand constructs an empty hand. Call DealNewHand before use.
func NewHand() *Hand {
	return &Hand{history: make([]int, 0, 8)}
}

// DealNewHand deals one card to each player from the 4-card deck.
func (h *Hand) DealNewHand(rng *rand.Rand) {
	deck := [DeckSize]int{0, 1, 2, 3}
	for i := 0; i < NumPlayers; i++ {
		j := i + rng.IntN(DeckSize-i)
		deck[i], deck[j] = deck[j], deck[i]
	}
	h.cards = [NumPlayers]int{deck[0], deck[1], deck[2]}
	h.history = h.history[:0]
	h.toAct = 0
}

// SetCards fixes the deal, for tests and exact computations.
func (h *Hand) SetCards(cards [NumPlayers]int) {
	h.cards = cards
	h.history = h.history[:0]
	h.toAct = 0
}

// IsChanceNode is always false: all cards are dealt up front.
func (h *Hand) IsChanceNode() bool { return false }

// SampleChance is a no-op; Kuhn has no mid-game chance events.
func (h *Hand) SampleChance(rng *rand.Rand) {}

// IsTerminal reports whether the betting round has resolved.
func (h *Hand) IsTerminal() bool {
	return terminal(h.history)
}

// CurrentPlayer returns the acting player.
func (h *Hand) CurrentPlayer() int {
	return h.toAct
}

// LegalActions appends pass and bet; both are always available.
func (h *Hand) LegalActions(buf []int) []int {
	return append(buf[:0], ActionPass, ActionBet)
}

// InfoKey is the player's card plus the public action sequence.
func (h *Hand) InfoKey(player int, buf []byte) []byte {
	buf = buf[:0]
	hist := make([]byte, len(h.history))
	for i, a := range h.history {
		hist[i] = abstraction.HistoryActionByte(a)
	}
	return abstraction.InfoKey(buf, h.cards[player], hist)
}

// ApplyAction records the action and advances the acting player.
func (h *Hand) ApplyAction(action int) {
	h.history = append(h.history, action)
	h.toAct = nextPlayer(h.history)
}

// UndoAction removes the most recent action.
func (h *Hand) UndoAction() {
	if len(h.history) == 0 {
		return
	}
	h.history = h.history[:len(h.history)-1]
	h.toAct = nextPlayer(h.history)
}

// Payoffs fills buf with each player's net chips at a terminal state.
func (h *Hand) Payoffs(buf []float64) []float64 {
	if buf == nil {
		buf = make([]float64, NumPlayers)
	}
	payoffs(h.cards, h.history, buf)
	return buf[:NumPlayers]
}

// nextPlayer: action order is cyclic whether or not a bet has happened, so
// the acting player is just the action count mod 3.
func nextPlayer(history []int) int {
	return len(history) % NumPlayers
}

func betIndex(history []int) int {
	for i, a := range history {
		if a == ActionBet {
			return i
		}
	}
	return -1
}

// terminal: all three passed, or a bet has been answered by both remaining
// players.
func terminal(history []int) bool {
	n := len(history)
	if n < NumPlayers {
		return false
	}
	betAt := betIndex(history)
	if betAt < 0 {
		return n >= NumPlayers
	}
	return n-betAt-1 >= NumPlayers-1
}

// payoffs writes the terminal net result per player into out.
func payoffs(cards [NumPlayers]int, history []int, out []float64) {
	betAt := betIndex(history)

	if betAt < 0 {
		// Everyone passed: highest card takes the three antes.
		winner := 0
		for p := 1; p < NumPlayers; p++ {
			if cards[p] > cards[winner] {
				winner = p
			}
		}
		for p := 0; p < NumPlayers; p++ {
			out[p] = -1
		}
		out[winner] = 2
		return
	}

	// The bettor acted at index betAt, so the bettor is betAt mod 3; later
	// responses wrap around the table.
	bettor := betAt % NumPlayers
	contrib := [NumPlayers]float64{1, 1, 1}
	contrib[bettor] = 2
	callers := []int{bettor}
	for i, a := range history[betAt+1:] {
		p := (bettor + 1 + i) % NumPlayers
		if a == ActionBet {
			contrib[p] = 2
			callers = append(callers, p)
		}
	}

	winner := callers[0]
	for _, p := range callers[1:] {
		if cards[p] > cards[winner] {
			winner = p
		}
	}

	pot := 0.0
	for p := 0; p < NumPlayers; p++ {
		pot += contrib[p]
		out[p] = -contrib[p]
	}
	out[winner] += pot
}

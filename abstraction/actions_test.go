package abstraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Chip amounts below are half big blinds: SB=1, BB=2, stack=40.

func preflopOpenState() BetState {
	return BetState{
		Street:        StreetPreflop,
		Player:        0,
		Pot:           3,
		Bets:          [3]int{0, 1, 2},
		Stacks:        [3]int{40, 39, 38},
		LastRaiseSize: 2,
		BigBlind:      2,
	}
}

func TestPreflopOpenLegalActions(t *testing.T) {
	s := preflopOpenState()
	legal := LegalActions(&s, nil)

	// Facing the big blind: fold, call, every raise size that clears the
	// min-raise and fits the stack, and all-in.
	assert.Contains(t, legal, ActionFold)
	assert.Contains(t, legal, ActionCheckCall)
	assert.Contains(t, legal, ActionAllIn)

	// 2x the bet raises to 4, legal (min raise-to is 4).
	assert.Contains(t, legal, firstSizedAction)
	// 10x the bet raises to 20, still below the 40-chip stack.
	assert.Contains(t, legal, firstSizedAction+6)
}

func TestCheckWhenNoBetOutstanding(t *testing.T) {
	s := BetState{
		Street:        StreetFlop,
		Player:        1,
		Pot:           6,
		Bets:          [3]int{0, 0, 0},
		Stacks:        [3]int{38, 38, 38},
		LastRaiseSize: 0,
		BigBlind:      2,
	}
	legal := LegalActions(&s, nil)
	assert.NotContains(t, legal, ActionFold, "fold is illegal when not facing a bet")
	assert.Contains(t, legal, ActionCheckCall)

	fold, target := ActionTarget(&s, ActionCheckCall)
	assert.False(t, fold)
	assert.Equal(t, 0, target, "check commits nothing")
}

func TestSizedRaisesDropBelowMinRaise(t *testing.T) {
	// A huge previous raise makes the small sizings illegal.
	s := BetState{
		Street:        StreetPreflop,
		Player:        0,
		Pot:           23,
		Bets:          [3]int{0, 1, 20},
		Stacks:        [3]int{40, 39, 20},
		LastRaiseSize: 18,
		BigBlind:      2,
	}
	legal := LegalActions(&s, nil)
	// 2x of 20 = 40: increment 20 >= minInc 18, but 40 >= stack-total 40
	// collapses into all-in. Every other sizing is either below min-raise
	// or above stack.
	assert.NotContains(t, legal, firstSizedAction)
	assert.Contains(t, legal, ActionFold)
	assert.Contains(t, legal, ActionCheckCall)
	assert.Contains(t, legal, ActionAllIn)
}

func TestShortStackCallIsAllInForLess(t *testing.T) {
	s := BetState{
		Street:        StreetPreflop,
		Player:        2,
		Bets:          [3]int{30, 1, 2},
		Stacks:        [3]int{10, 39, 8},
		Pot:           33,
		LastRaiseSize: 28,
		BigBlind:      2,
	}
	legal := LegalActions(&s, nil)
	require.Contains(t, legal, ActionFold)
	require.Contains(t, legal, ActionCheckCall)
	// Stack cannot cover the call, so no sized raise; calling all-in is the
	// only aggressive line and is exposed through both call and all-in.
	for a := firstSizedAction; a < firstSizedAction+numSizedActions; a++ {
		assert.NotContains(t, legal, a)
	}

	fold, target := ActionTarget(&s, ActionCheckCall)
	require.False(t, fold)
	assert.Equal(t, 2+8, target, "call is capped at remaining stack")
}

func TestLegalActionsDeterministic(t *testing.T) {
	s1 := preflopOpenState()
	s2 := preflopOpenState()
	a := LegalActions(&s1, nil)
	b := LegalActions(&s2, nil)
	assert.Equal(t, a, b, "identical states must produce identical masks")
}

func TestPostflopPotFractionTargets(t *testing.T) {
	s := BetState{
		Street:        StreetFlop,
		Player:        1,
		Pot:           12, // 6 BB pot
		Bets:          [3]int{0, 0, 0},
		Stacks:        [3]int{34, 34, 34},
		LastRaiseSize: 0,
		BigBlind:      2,
	}
	// Full-pot bet: 12 chips.
	fold, target := ActionTarget(&s, firstSizedAction+4)
	require.False(t, fold)
	assert.Equal(t, 12, target)

	// Half-pot bet: 6 chips.
	_, target = ActionTarget(&s, firstSizedAction+1)
	assert.Equal(t, 6, target)
}

func TestDuplicateTargetsAreDropped(t *testing.T) {
	// Tiny pot: many fractions round to the same 2-chip bet.
	s := BetState{
		Street:        StreetFlop,
		Player:        0,
		Pot:           3,
		Bets:          [3]int{0, 0, 0},
		Stacks:        [3]int{39, 0, 0},
		LastRaiseSize: 0,
		BigBlind:      2,
	}
	legal := LegalActions(&s, nil)
	targets := make(map[int]int)
	for _, a := range legal {
		if a < firstSizedAction || a >= firstSizedAction+numSizedActions {
			continue
		}
		_, target := ActionTarget(&s, a)
		if prev, dup := targets[target]; dup {
			t.Fatalf("actions %d and %d share target %d", prev, a, target)
		}
		targets[target] = a
	}
}

func TestAllInAlwaysLegalWithChips(t *testing.T) {
	s := preflopOpenState()
	for p := 0; p < 3; p++ {
		s.Player = p
		legal := LegalActions(&s, nil)
		assert.Contains(t, legal, ActionAllIn)
		assert.NotEmpty(t, legal)
	}
}

package abstraction

import "github.com/lox/pokerblueprint/poker"

// NumCanonicalHands is the number of distinct starting-hand types:
// 13 pairs + 78 suited + 78 offsuit combinations.
const NumCanonicalHands = 169

// CanonicalHand maps two hole cards onto a canonical id in [0,169).
// Pairs occupy 0-12 (deuces through aces); for each high > low the suited
// combination precedes the offsuit one.
func CanonicalHand(c0, c1 poker.Card) int {
	r0, r1 := int(c0.Rank()), int(c1.Rank())
	high, low := r0, r1
	if high < low {
		high, low = low, high
	}
	if high == low {
		return high
	}
	suited := c0.Suit() == c1.Suit()
	base := 13 + (high-1)*high
	id := base + 2*low
	if !suited {
		id++
	}
	return id
}

// CanonicalCards returns representative hole cards for a canonical id,
// inverting CanonicalHand. Used by the bucket builder to enumerate all 169
// starting-hand types.
func CanonicalCards(id int) (poker.Card, poker.Card) {
	if id < 13 {
		r := uint8(id)
		return poker.NewCard(r, 0), poker.NewCard(r, 1)
	}
	rest := id - 13
	// Find high such that (high-1)*high <= rest < high*(high+1).
	high := 1
	for (high)*(high+1) <= rest {
		high++
	}
	rest -= (high - 1) * high
	low := rest / 2
	suited := rest%2 == 0
	if suited {
		return poker.NewCard(uint8(high), 0), poker.NewCard(uint8(low), 0)
	}
	return poker.NewCard(uint8(high), 0), poker.NewCard(uint8(low), 1)
}

package poker

import rand "math/rand/v2"

// Deck represents a standard 52-card deck.
type Deck struct {
	cards [NumCards]Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a new shuffled deck drawing randomness from rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for i := 0; i < NumCards; i++ {
		d.cards[i] = Card(i)
	}
	d.Shuffle()
	return d
}

// NewStackedDeck returns an unshuffled deck that deals the given cards in
// order, followed by the remaining cards in index order. Intended for
// deterministic tests.
func NewStackedDeck(cards ...Card) *Deck {
	d := &Deck{}
	var used [NumCards]bool
	i := 0
	for _, c := range cards {
		d.cards[i] = c
		used[c] = true
		i++
	}
	for c := 0; c < NumCards; c++ {
		if !used[c] {
			d.cards[i] = Card(c)
			i++
		}
	}
	return d
}

// Shuffle reshuffles the full deck using Fisher-Yates.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck, or nil if not enough remain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards
}

// DealOne deals a single card from the deck.
func (d *Deck) DealOne() Card {
	card := d.cards[d.next]
	d.next++
	return card
}

// Undeal returns the most recently dealt n cards to the deck without
// reshuffling, so a traversal can rewind a chance event exactly.
func (d *Deck) Undeal(n int) {
	d.next -= n
	if d.next < 0 {
		d.next = 0
	}
}

// Reset reshuffles the deck.
func (d *Deck) Reset() {
	d.Shuffle()
}

// CardsRemaining returns the number of cards left in the deck.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

package abstraction

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lox/pokerblueprint/poker"
)

// Default bucket counts per street.
const (
	DefaultPreflopBuckets  = 15
	DefaultPostflopBuckets = 50
)

// Mapper converts (street, hole cards, board) into a small bucket id:
// [0,15) preflop and [0,50) per postflop street by default. With tables
// loaded it uses the precomputed equity abstraction; without them it falls
// back to a deterministic heuristic so training runs without precomputation.
type Mapper struct {
	preflopBuckets  int
	postflopBuckets int
	tables          *Tables
	warnOnce        sync.Once
}

// NewMapper returns a mapper backed by tables, which may be nil to select the
// heuristic fallback.
func NewMapper(tables *Tables, preflopBuckets, postflopBuckets int) *Mapper {
	if preflopBuckets <= 0 {
		preflopBuckets = DefaultPreflopBuckets
	}
	if postflopBuckets <= 0 {
		postflopBuckets = DefaultPostflopBuckets
	}
	return &Mapper{
		preflopBuckets:  preflopBuckets,
		postflopBuckets: postflopBuckets,
		tables:          tables,
	}
}

// PreflopBuckets returns the preflop bucket range size.
func (m *Mapper) PreflopBuckets() int { return m.preflopBuckets }

// PostflopBuckets returns the per-street postflop bucket range size.
func (m *Mapper) PostflopBuckets() int { return m.postflopBuckets }

// Bucket maps a decision point to its bucket id for the given street.
func (m *Mapper) Bucket(street Street, hole, board []poker.Card) int {
	if street == StreetPreflop || len(board) < 3 {
		return m.preflopBucket(hole)
	}
	return m.postflopBucket(street, hole, board)
}

func (m *Mapper) preflopBucket(hole []poker.Card) int {
	if m.tables != nil && m.tables.Preflop != nil {
		b := m.tables.Preflop.Hands[CanonicalHand(hole[0], hole[1])]
		return b % m.preflopBuckets
	}
	m.warnFallback()
	return preflopHeuristic(hole, m.preflopBuckets)
}

func (m *Mapper) postflopBucket(street Street, hole, board []poker.Card) int {
	if m.tables != nil && m.tables.Postflop != nil {
		post := m.tables.Postflop
		centers := post.Centers[postflopIndex(street)]
		rng := lookupRNG(street, hole, board)
		eq := EstimateEquity(hole, board, post.Rollouts, rng)
		return nearestCenter(centers, eq) % m.postflopBuckets
	}
	m.warnFallback()
	return postflopHeuristic(hole, board, m.postflopBuckets)
}

func (m *Mapper) warnFallback() {
	m.warnOnce.Do(func() {
		log.Warn().Msg("bucket tables absent; using heuristic bucketing")
	})
}

func postflopIndex(street Street) int {
	switch street {
	case StreetFlop:
		return 0
	case StreetTurn:
		return 1
	default:
		return 2
	}
}

func nearestCenter(centers []float64, eq float64) int {
	best := 0
	bestDist := abs(eq - centers[0])
	for i := 1; i < len(centers); i++ {
		if d := abs(eq - centers[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// preflopHeuristic scores a hole by high/low rank with pair and suited
// bonuses and projects the score onto the bucket range.
func preflopHeuristic(hole []poker.Card, buckets int) int {
	high, low := int(hole[0].Rank()), int(hole[1].Rank())
	if high < low {
		high, low = low, high
	}
	score := high*13 + low
	if high == low {
		score += 100
	}
	if hole[0].Suit() == hole[1].Suit() {
		score += 20
	}
	const maxScore = 12*13 + 12 + 100 + 20
	b := score * buckets / (maxScore + 1)
	if b >= buckets {
		b = buckets - 1
	}
	return b
}

// postflopHeuristic combines made-hand category with coarse board/draw
// texture and the hole ranks.
func postflopHeuristic(hole, board []poker.Card, buckets int) int {
	cards := make([]poker.Card, 0, 7)
	cards = append(cards, hole...)
	cards = append(cards, board...)
	category := int(poker.EvaluateHand(cards).Type())

	score := category * 5
	if boardPaired(board) {
		score++
	}
	if flushDraw(cards) {
		score += 2
	}
	if straightDraw(cards) {
		score++
	}
	score += (int(hole[0].Rank()) + int(hole[1].Rank())) / 8

	b := score * buckets / (8*5 + 4 + 4)
	if b >= buckets {
		b = buckets - 1
	}
	return b
}

func boardPaired(board []poker.Card) bool {
	var counts [13]uint8
	for _, c := range board {
		counts[c.Rank()]++
		if counts[c.Rank()] >= 2 {
			return true
		}
	}
	return false
}

// flushDraw reports four or more cards of one suit among hole+board.
func flushDraw(cards []poker.Card) bool {
	var counts [4]uint8
	for _, c := range cards {
		counts[c.Suit()]++
		if counts[c.Suit()] >= 4 {
			return true
		}
	}
	return false
}

// straightDraw reports four ranks within any five-rank window (open-enders
// and gutshots alike).
func straightDraw(cards []poker.Card) bool {
	var mask uint16
	for _, c := range cards {
		mask |= 1 << (c.Rank() + 1)
	}
	if mask&(1<<13) != 0 {
		mask |= 1 // ace also plays low
	}
	for low := 0; low <= 9; low++ {
		if popcount5(mask>>low&0x1F) >= 4 {
			return true
		}
	}
	return false
}

func popcount5(v uint16) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package abstraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerblueprint/internal/randutil"
	"github.com/lox/pokerblueprint/poker"
)

func TestFallbackPreflopBucketsInRange(t *testing.T) {
	m := NewMapper(nil, DefaultPreflopBuckets, DefaultPostflopBuckets)
	for id := 0; id < NumCanonicalHands; id++ {
		c0, c1 := CanonicalCards(id)
		b := m.Bucket(StreetPreflop, []poker.Card{c0, c1}, nil)
		require.GreaterOrEqual(t, b, 0)
		require.Less(t, b, DefaultPreflopBuckets)
	}
}

func TestFallbackRanksAcesAboveSevenDeuce(t *testing.T) {
	m := NewMapper(nil, DefaultPreflopBuckets, DefaultPostflopBuckets)
	aces := poker.MustParseCards("As Ad")
	trash := poker.MustParseCards("7s 2d")
	assert.Greater(t,
		m.Bucket(StreetPreflop, aces, nil),
		m.Bucket(StreetPreflop, trash, nil))
}

func TestFallbackPostflopBucketsInRange(t *testing.T) {
	m := NewMapper(nil, DefaultPreflopBuckets, DefaultPostflopBuckets)
	rng := randutil.New(9)
	deck := make([]poker.Card, poker.NumCards)
	for i := range deck {
		deck[i] = poker.Card(i)
	}
	for n := 0; n < 200; n++ {
		for i := 0; i < 7; i++ {
			j := i + rng.IntN(len(deck)-i)
			deck[i], deck[j] = deck[j], deck[i]
		}
		hole := deck[:2]
		for _, street := range []Street{StreetFlop, StreetTurn, StreetRiver} {
			board := deck[2 : 2+street.BoardCards()]
			b := m.Bucket(street, hole, board)
			require.GreaterOrEqual(t, b, 0)
			require.Less(t, b, DefaultPostflopBuckets)
		}
	}
}

func TestFallbackRanksMadeHandsAboveAir(t *testing.T) {
	m := NewMapper(nil, DefaultPreflopBuckets, DefaultPostflopBuckets)
	board := poker.MustParseCards("Ah Kd 8c")
	set := poker.MustParseCards("8s 8d")   // three of a kind
	air := poker.MustParseCards("3s 2d")   // no pair, no draw
	assert.Greater(t,
		m.Bucket(StreetFlop, set, board),
		m.Bucket(StreetFlop, air, board))
}

func TestTableBucketDeterministicAcrossMappers(t *testing.T) {
	tables := smallTables(t)
	hole := poker.MustParseCards("Qs Jd")
	board := poker.MustParseCards("Ts 9h 2c")

	m1 := NewMapper(tables, DefaultPreflopBuckets, DefaultPostflopBuckets)
	m2 := NewMapper(tables, DefaultPreflopBuckets, DefaultPostflopBuckets)
	b1 := m1.Bucket(StreetFlop, hole, board)
	for i := 0; i < 5; i++ {
		assert.Equal(t, b1, m2.Bucket(StreetFlop, hole, board),
			"bucket must be a pure function of (street, hole, board)")
	}
}

func TestTablePreflopLookup(t *testing.T) {
	tables := smallTables(t)
	m := NewMapper(tables, DefaultPreflopBuckets, DefaultPostflopBuckets)
	aces := poker.MustParseCards("As Ad")
	b := m.Bucket(StreetPreflop, aces, nil)
	assert.Equal(t, tables.Preflop.Hands[CanonicalHand(aces[0], aces[1])], b)
}

// smallTables builds quick low-effort tables for lookup tests.
func smallTables(t *testing.T) *Tables {
	t.Helper()
	cfg := DefaultBuildConfig()
	cfg.PreflopRollouts = 40
	cfg.PostflopSamples = 60
	cfg.PostflopRollouts = 20
	tables, err := BuildTables(cfg)
	require.NoError(t, err)
	return tables
}

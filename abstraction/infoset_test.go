package abstraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoKeyStable(t *testing.T) {
	hist := []byte{HistoryActionByte(1), HistoryStreetDelim, HistoryActionByte(4)}
	a := InfoKey(nil, 7, hist)
	b := InfoKey(nil, 7, hist)
	assert.Equal(t, a, b)
	assert.Equal(t, "7;b/e", string(a))
}

func TestInfoKeyDistinguishesBuckets(t *testing.T) {
	hist := []byte{HistoryActionByte(1)}
	assert.NotEqual(t, InfoKey(nil, 3, hist), InfoKey(nil, 4, hist))
}

func TestInfoKeyDistinguishesHistories(t *testing.T) {
	// A street boundary is not an action: check-check-deal differs from
	// check-deal-check even though both hold two checks.
	h1 := []byte{HistoryActionByte(1), HistoryActionByte(1), HistoryStreetDelim}
	h2 := []byte{HistoryActionByte(1), HistoryStreetDelim, HistoryActionByte(1)}
	assert.NotEqual(t, InfoKey(nil, 5, h1), InfoKey(nil, 5, h2))
}

func TestInfoKeyBucketPrefixUnambiguous(t *testing.T) {
	// Bucket 1 with history "2..." must not collide with bucket 12.
	h1 := append([]byte{}, '2')
	k1 := InfoKey(nil, 1, h1)
	k2 := InfoKey(nil, 12, nil)
	assert.NotEqual(t, k1, k2)
}

func TestHistoryActionBytesDistinct(t *testing.T) {
	seen := map[byte]bool{HistoryStreetDelim: true}
	for a := 0; a < NumActions; a++ {
		b := HistoryActionByte(a)
		assert.False(t, seen[b], "history byte for action %d collides", a)
		seen[b] = true
	}
}

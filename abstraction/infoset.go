package abstraction

import "strconv"

// Info-set keys compose a bucket id with the abstracted action history the
// acting player has observed. Chance events appear only as street delimiters,
// so private card information enters the key through the bucket alone.
//
// The encoding is one byte per abstract action plus one byte per street
// boundary: injective over histories for a fixed bucket, stable across runs,
// and compact enough to key tens of millions of map entries.

// HistoryStreetDelim separates per-street action runs in a history encoding.
const HistoryStreetDelim = '/'

// HistoryActionByte encodes an abstract action id as a single history byte.
func HistoryActionByte(action int) byte {
	return 'a' + byte(action)
}

// InfoKey appends the key for (bucket, history) to dst and returns it.
func InfoKey(dst []byte, bucket int, history []byte) []byte {
	dst = strconv.AppendInt(dst, int64(bucket), 10)
	dst = append(dst, ';')
	return append(dst, history...)
}

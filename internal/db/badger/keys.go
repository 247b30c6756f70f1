package badger

import (
	"encoding/binary"
	"math"
)

// Key namespaces per emulated data type. The separator byte never
// appears in application keys.
const (
	nsHash    = "h\x00"
	nsKV      = "k\x00"
	nsList    = "l\x00"
	nsZMember = "zm\x00"
	nsZScore  = "zs\x00"
	sep       = "\x00"
)

func hashKey(key string) []byte { return []byte(nsHash + key) }
func kvKey(key string) []byte   { return []byte(nsKV + key) }
func listKey(key string) []byte { return []byte(nsList + key) }

// zMemberPrefix holds member -> score entries of a sorted set.
func zMemberPrefix(key string) []byte { return []byte(nsZMember + key + sep) }

func zMemberKey(key, member string) []byte {
	return append(zMemberPrefix(key), member...)
}

// zScorePrefix holds score+member -> empty entries, ordered by score.
func zScorePrefix(key string) []byte { return []byte(nsZScore + key + sep) }

func zScoreKey(key string, score float64, member string) []byte {
	k := zScorePrefix(key)
	k = binary.BigEndian.AppendUint64(k, sortableFloat(score))
	return append(k, member...)
}

// memberFromScoreKey strips the prefix and the 8-byte score.
func memberFromScoreKey(prefixLen int, k []byte) string {
	return string(k[prefixLen+8:])
}

// sortableFloat maps a float64 to a uint64 whose byte order matches numeric order.
func sortableFloat(f float64) uint64 {
	bits := math.Float64bits(f)
	if f >= 0 {
		return bits ^ (1 << 63)
	}
	return ^bits
}

func encodeScore(f float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(f))
}

func decodeScore(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// rangeBounds resolves Redis-style inclusive start/stop against length n.
// ok is false when the range is empty.
func rangeBounds(start, stop, n int64) (from, to int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

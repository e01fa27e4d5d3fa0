package ewah

import "math/bits"

// Word is the storage unit of a compressed bitmap.
//
// Both widths share one implementation. The marker layout scales with the width:
//
//	W=64: run bit (1) | running length (32) | literal count (31)
//	W=32: run bit (1) | running length (16) | literal count (15)
type Word interface {
	~uint32 | ~uint64
}

// wordBits returns the width of W in bits.
//
//go:nosplit
func wordBits[W Word]() int {
	return bits.Len64(uint64(^W(0)))
}

// runningLengthBits returns R, the number of bits holding the running length.
func runningLengthBits[W Word]() int {
	return wordBits[W]() / 2
}

// literalBits returns L, the number of bits holding the literal count.
func literalBits[W Word]() int {
	return wordBits[W]() - 1 - runningLengthBits[W]()
}

// largestRunningLength is the largest running length a single marker can hold.
func largestRunningLength[W Word]() int {
	return 1<<runningLengthBits[W]() - 1
}

// largestLiteralCount is the largest literal count a single marker can hold.
func largestLiteralCount[W Word]() int {
	return 1<<literalBits[W]() - 1
}

// allOnes returns the word with every bit set.
func allOnes[W Word]() W {
	return ^W(0)
}

// popcount returns the number of set bits in w.
func popcount[W Word](w W) int {
	return bits.OnesCount64(uint64(w))
}

// trailingZeros returns the index of the lowest set bit of w (wordBits if w is zero).
func trailingZeros[W Word](w W) int {
	if w == 0 {
		return wordBits[W]()
	}
	return bits.TrailingZeros64(uint64(w))
}

// Marker word codec. These functions are pure bit arithmetic on one word and
// are shared by the live marker cursor and the detached buffered marker.

func markerRunningBit[W Word](m W) bool {
	return m&1 != 0
}

func markerSetRunningBit[W Word](m W, b bool) W {
	if b {
		return m | 1
	}
	return m &^ 1
}

func markerRunningLength[W Word](m W) int {
	return int((m >> 1) & W(largestRunningLength[W]()))
}

// markerSetRunningLength clears the running length field and ORs in n.
// The caller guarantees 0 <= n <= largestRunningLength.
func markerSetRunningLength[W Word](m W, n int) W {
	mask := W(largestRunningLength[W]()) << 1
	return (m &^ mask) | (W(n) << 1 & mask)
}

func markerLiteralCount[W Word](m W) int {
	return int(m >> (1 + runningLengthBits[W]()))
}

// markerSetLiteralCount clears the literal count field and ORs in n.
// The caller guarantees 0 <= n <= largestLiteralCount.
func markerSetLiteralCount[W Word](m W, n int) W {
	shift := 1 + runningLengthBits[W]()
	keep := W(1)<<shift - 1
	return (m & keep) | W(n)<<shift
}

// markerSize returns runningLength+literalCount, the span of the chunk in words.
func markerSize[W Word](m W) int {
	return markerRunningLength(m) + markerLiteralCount(m)
}

// newMarker packs the three marker fields into one word.
func newMarker[W Word](runningBit bool, runningLength, literalCount int) W {
	var m W
	m = markerSetRunningBit(m, runningBit)
	m = markerSetRunningLength(m, runningLength)
	return markerSetLiteralCount(m, literalCount)
}

package ewah

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordLayout(t *testing.T) {
	assert.Equal(t, 32, wordBits[uint32]())
	assert.Equal(t, 16, runningLengthBits[uint32]())
	assert.Equal(t, 15, literalBits[uint32]())
	assert.Equal(t, 1<<16-1, largestRunningLength[uint32]())
	assert.Equal(t, 1<<15-1, largestLiteralCount[uint32]())

	assert.Equal(t, 64, wordBits[uint64]())
	assert.Equal(t, 32, runningLengthBits[uint64]())
	assert.Equal(t, 31, literalBits[uint64]())
	assert.Equal(t, 1<<32-1, largestRunningLength[uint64]())
	assert.Equal(t, 1<<31-1, largestLiteralCount[uint64]())
}

func testMarkerCodec[W Word](t *testing.T) {
	cases := []struct {
		bit      bool
		run, lit int
	}{
		{false, 0, 0},
		{true, 1, 0},
		{false, 0, 1},
		{true, largestRunningLength[W](), largestLiteralCount[W]()},
		{false, largestRunningLength[W](), 3},
		{true, 7, largestLiteralCount[W]()},
	}
	for _, c := range cases {
		m := newMarker[W](c.bit, c.run, c.lit)
		assert.Equal(t, c.bit, markerRunningBit(m))
		assert.Equal(t, c.run, markerRunningLength(m))
		assert.Equal(t, c.lit, markerLiteralCount(m))
		assert.Equal(t, c.run+c.lit, markerSize(m))

		// Every field can be rewritten without disturbing the others.
		m = markerSetRunningBit(m, !c.bit)
		m = markerSetRunningLength(m, 5)
		assert.Equal(t, !c.bit, markerRunningBit(m))
		assert.Equal(t, 5, markerRunningLength(m))
		assert.Equal(t, c.lit, markerLiteralCount(m))

		m = markerSetLiteralCount(m, 2)
		assert.Equal(t, !c.bit, markerRunningBit(m))
		assert.Equal(t, 5, markerRunningLength(m))
		assert.Equal(t, 2, markerLiteralCount(m))
	}
}

func TestMarkerCodec(t *testing.T) {
	t.Run("uint32", testMarkerCodec[uint32])
	t.Run("uint64", testMarkerCodec[uint64])
}

func TestMarkerBitPositions(t *testing.T) {
	// Run bit at bit 0, running length from bit 1, literal count above.
	assert.Equal(t, uint64(1), newMarker[uint64](true, 0, 0))
	assert.Equal(t, uint64(2), newMarker[uint64](false, 1, 0))
	assert.Equal(t, uint64(1)<<33, newMarker[uint64](false, 0, 1))
	assert.Equal(t, uint32(1)<<17, newMarker[uint32](false, 0, 1))
}

func TestPopcountAndTrailingZeros(t *testing.T) {
	assert.Equal(t, 64, popcount(allOnes[uint64]()))
	assert.Equal(t, 32, popcount(allOnes[uint32]()))
	assert.Equal(t, 3, popcount(uint32(0b1011)))
	assert.Equal(t, 32, trailingZeros(uint32(0)))
	assert.Equal(t, 64, trailingZeros(uint64(0)))
	assert.Equal(t, 4, trailingZeros(uint64(0b10000)))
}

func TestMarkerCursorPersists(t *testing.T) {
	rb := newRunBuffer[uint64](2)
	rb.push(0)
	rb.push(42)

	m := marker[uint64]{rb: &rb, pos: 0}
	m.setRunningBit(true)
	m.setRunningLength(9)
	m.setLiteralCount(1)

	assert.Equal(t, newMarker[uint64](true, 9, 1), rb.words[0])
	assert.Equal(t, uint64(42), rb.words[1])
	assert.Equal(t, 10, m.size())
}

func TestBufferedMarkerIsDetached(t *testing.T) {
	words := []uint64{newMarker[uint64](true, 4, 2), 7, 8}

	var bm bufferedMarker[uint64]
	bm.reset(words[0])
	bm.discardFirstWords(5)

	assert.Zero(t, bm.runningLength)
	assert.Equal(t, 1, bm.literalCount)
	assert.Equal(t, 1, bm.literalOffset)
	assert.Equal(t, newMarker[uint64](true, 4, 2), words[0], "backing word must not change")
}

func TestRunBuffer(t *testing.T) {
	rb := newRunBuffer[uint32](0)
	rb.push(1)
	rb.pushSlice([]uint32{2, 3})
	rb.pushNegated([]uint32{0})
	assert.Equal(t, []uint32{1, 2, 3, ^uint32(0)}, rb.words)

	rb.removeLast()
	rb.orLast(4)
	assert.Equal(t, uint32(7), rb.last())

	rb.negate(0)
	rb.and(0, 0xF0)
	assert.Equal(t, uint32(0xF0), rb.words[0])

	c := rb.clone()
	c.words[0] = 0
	assert.Equal(t, uint32(0xF0), rb.words[0])

	rb.trim()
	assert.Equal(t, len(rb.words), cap(rb.words))
}

func TestWindowDiscardCrossesChunks(t *testing.T) {
	words := []uint64{
		newMarker[uint64](false, 3, 1), 0xA,
		newMarker[uint64](true, 2, 2), 0xB, 0xC,
	}
	w := newWindow(words)
	assert.Equal(t, 4, w.size())

	w.discardFirstWords(4)
	assert.True(t, w.runningBit)
	assert.Equal(t, 2, w.runningLength)

	assert.Equal(t, allOnes[uint64](), w.wordAt(1))
	assert.Equal(t, uint64(0xB), w.wordAt(2))

	w.discardFirstWords(3)
	assert.Equal(t, 1, w.literalCount)
	assert.Equal(t, uint64(0xC), w.literalAt(0))

	w.discardFirstWords(10)
	assert.Zero(t, w.size())
}

func TestWindowSkipsEmptyChunks(t *testing.T) {
	words := []uint64{0, newMarker[uint64](true, 1, 0)}
	w := newWindow(words)
	assert.True(t, w.runningBit)
	assert.Equal(t, 1, w.size())
}

package ewah

import (
	"iter"
	"math/bits"
)

// PositionIterator yields the set positions of a bitmap in ascending order.
//
// Each call to Bitmap.Iterator returns an iterator with fresh state.
type PositionIterator[W Word] struct {
	it   chunkIterator[W]
	base int // position of bit 0 of the next word to decode

	// current run of ones: [runPos, runEnd)
	runPos, runEnd int

	// pending literal words of the current chunk
	literals []W
	// current literal word being drained, and its base position
	word     uint64
	wordBase int
}

// Iterator returns a lazy iterator over the set positions.
func (b *Bitmap[W]) Iterator() *PositionIterator[W] {
	return &PositionIterator[W]{it: newChunkIterator(b.buffer.words)}
}

// HasNext reports whether Next will return another position.
func (p *PositionIterator[W]) HasNext() bool {
	for {
		if p.runPos < p.runEnd || p.word != 0 {
			return true
		}
		if len(p.literals) > 0 {
			p.word = uint64(p.literals[0])
			p.literals = p.literals[1:]
			p.wordBase = p.base
			p.base += wordBits[W]()
			continue
		}
		if !p.it.hasNext() {
			return false
		}
		p.loadChunk()
	}
}

// Next returns the next set position. It must only be called after HasNext
// returned true.
func (p *PositionIterator[W]) Next() int {
	if p.runPos < p.runEnd {
		pos := p.runPos
		p.runPos++
		return pos
	}
	t := bits.TrailingZeros64(p.word)
	p.word &= p.word - 1
	return p.wordBase + t
}

func (p *PositionIterator[W]) loadChunk() {
	m := p.it.next()
	span := markerRunningLength(m) * wordBits[W]()
	if markerRunningBit(m) {
		p.runPos, p.runEnd = p.base, p.base+span
	}
	p.base += span
	start := p.it.literalIndex()
	p.literals = p.it.words[start : start+markerLiteralCount(m)]
}

// All returns an iterator over the set positions in ascending order.
func (b *Bitmap[W]) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := b.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Positions returns all set positions in ascending order.
func (b *Bitmap[W]) Positions() []int {
	out := make([]int, 0, b.Cardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

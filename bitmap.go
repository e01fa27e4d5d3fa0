package ewah

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/ewah/internal/hash"
)

// Bitmap is an EWAH compressed bitmap over words of type W.
//
// The encoded stream is a sequence of chunks. Each chunk is a marker word,
// holding a run of identical words (bit, length), followed by literal words
// stored verbatim:
//
//	┌────────┬─────────┬─────────┬────────┬─────────┐
//	│ marker │ literal │ literal │ marker │ literal │ ...
//	└────────┴─────────┴─────────┴────────┴─────────┘
//
// Bits are appended in increasing order. Binary operators never modify their
// operands and run in time proportional to the compressed sizes.
//
// A Bitmap is not safe for concurrent mutation. Concurrent read-only use,
// including as an operand of several merges, is safe.
type Bitmap[W Word] struct {
	buffer runBuffer[W]
	// rlw is the buffer index of the active (last) marker word.
	rlw        int
	sizeInBits int
}

// Bitmap32 is a bitmap over 32-bit words.
type Bitmap32 = Bitmap[uint32]

// Bitmap64 is a bitmap over 64-bit words.
type Bitmap64 = Bitmap[uint64]

// Source is a read-only compressed bitmap usable as a merge operand.
// It is implemented by *Bitmap and *View.
type Source[W Word] interface {
	bitmap() *Bitmap[W]
}

// New creates an empty bitmap.
func New[W Word]() *Bitmap[W] {
	return NewWithCapacity[W](defaultBufferSize)
}

// NewWithCapacity creates an empty bitmap with room for the given number of
// words before the buffer has to grow.
func NewWithCapacity[W Word](words int) *Bitmap[W] {
	b := &Bitmap[W]{buffer: newRunBuffer[W](words)}
	b.buffer.push(0)
	return b
}

// New32 creates an empty bitmap over 32-bit words.
func New32() *Bitmap32 { return New[uint32]() }

// New64 creates an empty bitmap over 64-bit words.
func New64() *Bitmap64 { return New[uint64]() }

// FromPositions builds a bitmap from positions. Positions must be strictly
// increasing; out-of-order positions are skipped.
func FromPositions[W Word](positions ...int) *Bitmap[W] {
	b := New[W]()
	for _, p := range positions {
		b.Set(p)
	}
	return b
}

func (b *Bitmap[W]) bitmap() *Bitmap[W] { return b }

func (b *Bitmap[W]) active() marker[W] {
	return marker[W]{rb: &b.buffer, pos: b.rlw}
}

// newMarkerWord appends a marker word and makes it the active one.
func (b *Bitmap[W]) newMarkerWord(m W) marker[W] {
	b.buffer.push(m)
	b.rlw = b.buffer.sizeInWords() - 1
	return b.active()
}

// Set sets bit i and returns true.
//
// Bits must be set in increasing order: if i < SizeInBits() the call is a
// no-op and returns false.
func (b *Bitmap[W]) Set(i int) bool {
	if i < b.sizeInBits || i < 0 {
		return false
	}
	wb := wordBits[W]()
	dist := (i+wb)/wb - (b.sizeInBits+wb-1)/wb
	b.sizeInBits = i + 1
	bit := W(1) << (i % wb)
	if dist > 0 {
		if dist > 1 {
			b.fastAddStreamOfEmptyWords(false, dist-1)
		}
		b.addLiteralWord(bit)
		return true
	}
	rlw := b.active()
	if rlw.literalCount() == 0 {
		// The word holding i is the tail of the active run.
		if rlw.runningLength() > 0 {
			if rlw.runningBit() {
				return true
			}
			rlw.setRunningLength(rlw.runningLength() - 1)
		}
		b.addLiteralWord(bit)
		return true
	}
	b.buffer.orLast(bit)
	if b.buffer.last() == allOnes[W]() {
		b.buffer.removeLast()
		rlw.setLiteralCount(rlw.literalCount() - 1)
		b.addEmptyWord(true)
	}
	return true
}

// Get reports whether bit i is set. It walks the chunks, so it costs
// O(compressed size).
func (b *Bitmap[W]) Get(i int) bool {
	if i < 0 || i >= b.sizeInBits {
		return false
	}
	wb := wordBits[W]()
	target := i / wb
	pos := 0
	it := newChunkIterator(b.buffer.words)
	for it.hasNext() {
		m := it.next()
		rl := markerRunningLength(m)
		if target < pos+rl {
			return markerRunningBit(m)
		}
		pos += rl
		lc := markerLiteralCount(m)
		if target < pos+lc {
			return b.buffer.words[it.literalIndex()+target-pos]&(W(1)<<(i%wb)) != 0
		}
		pos += lc
	}
	return false
}

// Add appends a full word of bits and returns the number of words appended
// to the buffer (0, 1 or 2).
func (b *Bitmap[W]) Add(w W) int {
	return b.AddBits(w, wordBits[W]())
}

// AddBits appends a word of which only the low bitsThatMatter bits are part
// of the bitmap. It returns the number of words appended to the buffer.
func (b *Bitmap[W]) AddBits(w W, bitsThatMatter int) int {
	b.sizeInBits += bitsThatMatter
	switch w {
	case 0:
		return b.addEmptyWord(false)
	case allOnes[W]():
		return b.addEmptyWord(true)
	default:
		return b.addLiteralWord(w)
	}
}

// addEmptyWord extends the active run by one word if the marker has no
// literals, the same bit and spare capacity; otherwise it opens a new chunk.
func (b *Bitmap[W]) addEmptyWord(v bool) int {
	rlw := b.active()
	noLiteral := rlw.literalCount() == 0
	runLen := rlw.runningLength()
	if noLiteral && runLen == 0 {
		rlw.setRunningBit(v)
	}
	if noLiteral && rlw.runningBit() == v && runLen < largestRunningLength[W]() {
		rlw.setRunningLength(runLen + 1)
		return 0
	}
	b.newMarkerWord(newMarker[W](v, 1, 0))
	return 1
}

// addLiteralWord appends w to the active chunk, or opens a new chunk when the
// literal count is saturated.
func (b *Bitmap[W]) addLiteralWord(w W) int {
	rlw := b.active()
	n := rlw.literalCount()
	if n >= largestLiteralCount[W]() {
		b.newMarkerWord(newMarker[W](false, 0, 1))
		b.buffer.push(w)
		return 2
	}
	rlw.setLiteralCount(n + 1)
	b.buffer.push(w)
	return 1
}

// AddStreamOfEmptyWords appends n words whose bits all equal v.
func (b *Bitmap[W]) AddStreamOfEmptyWords(v bool, n int) {
	if n <= 0 {
		return
	}
	b.sizeInBits += n * wordBits[W]()
	b.fastAddStreamOfEmptyWords(v, n)
}

// fastAddStreamOfEmptyWords appends the run without touching sizeInBits.
func (b *Bitmap[W]) fastAddStreamOfEmptyWords(v bool, n int) {
	rlw := b.active()
	if rlw.runningBit() != v && rlw.size() == 0 {
		rlw.setRunningBit(v)
	} else if rlw.literalCount() != 0 || rlw.runningBit() != v {
		rlw = b.newMarkerWord(newMarker[W](v, 0, 0))
	}
	largest := largestRunningLength[W]()
	runLen := rlw.runningLength()
	add := min(n, largest-runLen)
	rlw.setRunningLength(runLen + add)
	n -= add
	for n >= largest {
		b.newMarkerWord(newMarker[W](v, largest, 0))
		n -= largest
	}
	if n > 0 {
		b.newMarkerWord(newMarker[W](v, n, 0))
	}
}

// AddStreamOfLiteralWords appends the words verbatim as literals.
func (b *Bitmap[W]) AddStreamOfLiteralWords(words []W) {
	b.addStreamOfLiteralWords(words, false)
}

// AddStreamOfNegatedLiteralWords appends the complement of every word as a literal.
func (b *Bitmap[W]) AddStreamOfNegatedLiteralWords(words []W) {
	b.addStreamOfLiteralWords(words, true)
}

func (b *Bitmap[W]) addStreamOfLiteralWords(words []W, negate bool) {
	largest := largestLiteralCount[W]()
	for len(words) > 0 {
		rlw := b.active()
		count := rlw.literalCount()
		n := min(len(words), largest-count)
		rlw.setLiteralCount(count + n)
		if negate {
			b.buffer.pushNegated(words[:n])
		} else {
			b.buffer.pushSlice(words[:n])
		}
		b.sizeInBits += n * wordBits[W]()
		words = words[n:]
		if len(words) > 0 {
			b.newMarkerWord(0)
		}
	}
}

// AddWord implements Sink.
func (b *Bitmap[W]) AddWord(w W) { b.Add(w) }

// AddLiteralWord implements Sink.
func (b *Bitmap[W]) AddLiteralWord(w W) {
	b.sizeInBits += wordBits[W]()
	b.addLiteralWord(w)
}

// SetSizeInBits sets the logical size. Growing past the stored words appends
// zero runs; shrinking is meant to stay within the last word, the bits of
// stored words beyond the new size are left as they are.
func (b *Bitmap[W]) SetSizeInBits(n int) {
	wb := wordBits[W]()
	if pad := (n+wb-1)/wb - (b.sizeInBits+wb-1)/wb; pad > 0 {
		b.fastAddStreamOfEmptyWords(false, pad)
	}
	b.sizeInBits = n
}

// Done implements Sink. A materializing sink always wants more input.
func (b *Bitmap[W]) Done() bool { return false }

// Not complements the bitmap in place, within SizeInBits.
//
// Only the stored words are flipped, and the last one is masked to
// SizeInBits. If the stored words span more than SizeInBits rounded up to a
// word, as after AddBits with a partial word, the flipped bits past the
// last word stay visible.
func (b *Bitmap[W]) Not() {
	wb := wordBits[W]()
	it := newChunkIterator(b.buffer.words)
	for it.hasNext() {
		pos := it.cursor
		it.next()
		rlw := marker[W]{rb: &b.buffer, pos: pos}
		rlw.setRunningBit(!rlw.runningBit())
		lc := rlw.literalCount()
		for j := 0; j < lc; j++ {
			b.buffer.negate(it.literalIndex() + j)
		}
		if it.hasNext() {
			continue
		}
		used := b.sizeInBits % wb
		if used == 0 {
			return
		}
		mask := allOnes[W]() >> (wb - used)
		if lc == 0 {
			if rlw.runningLength() > 0 && rlw.runningBit() {
				rlw.setRunningLength(rlw.runningLength() - 1)
				b.addLiteralWord(mask)
			}
			return
		}
		b.buffer.and(it.literalIndex()+lc-1, mask)
		return
	}
}

// Cardinality returns the number of set bits.
func (b *Bitmap[W]) Cardinality() int {
	wb := wordBits[W]()
	count := 0
	it := newChunkIterator(b.buffer.words)
	for it.hasNext() {
		m := it.next()
		if markerRunningBit(m) {
			count += markerRunningLength(m) * wb
		}
		lits := b.buffer.words[it.literalIndex() : it.literalIndex()+markerLiteralCount(m)]
		for _, w := range lits {
			count += popcount(w)
		}
	}
	return count
}

// IsEmpty reports whether no bit is set.
func (b *Bitmap[W]) IsEmpty() bool {
	it := newChunkIterator(b.buffer.words)
	for it.hasNext() {
		m := it.next()
		if markerRunningBit(m) && markerRunningLength(m) > 0 {
			return false
		}
		for _, w := range b.buffer.words[it.literalIndex() : it.literalIndex()+markerLiteralCount(m)] {
			if w != 0 {
				return false
			}
		}
	}
	return true
}

// SizeInBits returns the logical length of the bitmap.
func (b *Bitmap[W]) SizeInBits() int { return b.sizeInBits }

// SizeInBytes returns the size of the encoded stream in bytes.
func (b *Bitmap[W]) SizeInBytes() int {
	return b.buffer.sizeInWords() * wordBits[W]() / 8
}

// SizeInWords returns the number of words in the encoded stream.
func (b *Bitmap[W]) SizeInWords() int { return b.buffer.sizeInWords() }

// Clone returns a deep copy.
func (b *Bitmap[W]) Clone() *Bitmap[W] {
	return &Bitmap[W]{
		buffer:     b.buffer.clone(),
		rlw:        b.rlw,
		sizeInBits: b.sizeInBits,
	}
}

// Clear resets the bitmap to empty, keeping its capacity.
func (b *Bitmap[W]) Clear() {
	b.buffer.words = append(b.buffer.words[:0], 0)
	b.rlw = 0
	b.sizeInBits = 0
}

// Trim releases unused buffer capacity.
func (b *Bitmap[W]) Trim() {
	b.buffer.trim()
}

// Equal reports whether both bitmaps have the same encoded representation:
// size in bits, word count, active marker position and words.
func (b *Bitmap[W]) Equal(other Source[W]) bool {
	o := other.bitmap()
	return b.sizeInBits == o.sizeInBits &&
		b.rlw == o.rlw &&
		slices.Equal(b.buffer.words, o.buffer.words)
}

// Hash returns a CRC32C over the encoded representation. Equal bitmaps hash equal.
func (b *Bitmap[W]) Hash() uint32 {
	h := hash.NewCRC32C()
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(b.sizeInBits))
	_, _ = h.Write(scratch[:])
	binary.LittleEndian.PutUint64(scratch[:], uint64(b.buffer.sizeInWords()))
	_, _ = h.Write(scratch[:])
	binary.LittleEndian.PutUint64(scratch[:], uint64(b.rlw))
	_, _ = h.Write(scratch[:])
	for _, w := range b.buffer.words {
		binary.LittleEndian.PutUint64(scratch[:], uint64(w))
		_, _ = h.Write(scratch[:])
	}
	return h.Sum32()
}

// String returns the set positions, e.g. "{1,5,64}".
func (b *Bitmap[W]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for p := range b.All() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.Itoa(p))
	}
	sb.WriteByte('}')
	return sb.String()
}

// DebugString describes the encoded chunks, one per line.
func (b *Bitmap[W]) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ewah: sizeInBits=%d words=%d bytes=%d wordBits=%d\n",
		b.sizeInBits, b.buffer.sizeInWords(), b.SizeInBytes(), wordBits[W]())
	it := newChunkIterator(b.buffer.words)
	for it.hasNext() {
		m := it.next()
		bit := 0
		if markerRunningBit(m) {
			bit = 1
		}
		fmt.Fprintf(&sb, "  run %d x %d, %d literal(s)", bit, markerRunningLength(m), markerLiteralCount(m))
		for _, w := range b.buffer.words[it.literalIndex() : it.literalIndex()+markerLiteralCount(m)] {
			fmt.Fprintf(&sb, " %0*x", wordBits[W]()/4, uint64(w))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

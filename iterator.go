package ewah

// chunkIterator walks the chunks of an encoded word stream front to back.
//
// It is forward-only and reads the words slice it was created with; mutating
// the bitmap during iteration is undefined.
type chunkIterator[W Word] struct {
	words  []W
	cursor int
	// literals is the buffer index of the first literal word of the chunk
	// returned by the last call to next.
	literals int
}

func newChunkIterator[W Word](words []W) chunkIterator[W] {
	return chunkIterator[W]{words: words}
}

func (it *chunkIterator[W]) hasNext() bool {
	return it.cursor < len(it.words)
}

// next returns the marker word at the cursor and skips past its literals.
func (it *chunkIterator[W]) next() W {
	m := it.words[it.cursor]
	it.literals = it.cursor + 1
	it.cursor += 1 + markerLiteralCount(m)
	return m
}

// literalIndex returns the buffer index of the current chunk's first literal word.
func (it *chunkIterator[W]) literalIndex() int {
	return it.literals
}

package ewah

// bufferedMarker is a detached, decoded copy of one marker word.
//
// Discarding words only changes the copy, never the backing buffer, so two
// merge cursors can consume their own view of the same chunk.
type bufferedMarker[W Word] struct {
	runningBit    bool
	runningLength int
	literalCount  int
	// literalOffset counts literal words already discarded from the chunk.
	literalOffset int
}

func (bm *bufferedMarker[W]) reset(m W) {
	bm.runningBit = markerRunningBit(m)
	bm.runningLength = markerRunningLength(m)
	bm.literalCount = markerLiteralCount(m)
	bm.literalOffset = 0
}

func (bm *bufferedMarker[W]) size() int {
	return bm.runningLength + bm.literalCount
}

// discardFirstWords drops x words, draining the run before the literals.
// Precondition: x <= size().
func (bm *bufferedMarker[W]) discardFirstWords(x int) {
	if bm.runningLength >= x {
		bm.runningLength -= x
		return
	}
	x -= bm.runningLength
	bm.runningLength = 0
	bm.literalOffset += x
	bm.literalCount -= x
}

// window is a bufferedMarker that pulls the next chunk from its iterator when
// it runs empty. It is the per-operand cursor of every merge.
type window[W Word] struct {
	bufferedMarker[W]
	it chunkIterator[W]
	// literalStart is the buffer index of the current chunk's first literal.
	literalStart int
}

func newWindow[W Word](words []W) *window[W] {
	w := &window[W]{it: newChunkIterator(words)}
	w.next()
	return w
}

// next loads the next non-empty chunk. It returns false and leaves the window
// empty when the stream is exhausted.
func (w *window[W]) next() bool {
	for w.it.hasNext() {
		w.reset(w.it.next())
		w.literalStart = w.it.literalIndex()
		if w.size() > 0 {
			return true
		}
	}
	w.runningLength = 0
	w.literalCount = 0
	return false
}

// literals returns the first n undiscarded literal words of the current chunk.
func (w *window[W]) literals(n int) []W {
	pos := w.literalStart + w.literalOffset
	return w.it.words[pos : pos+n]
}

// literalAt returns the i-th undiscarded literal word.
func (w *window[W]) literalAt(i int) W {
	return w.it.words[w.literalStart+w.literalOffset+i]
}

// wordAt returns the i-th undiscarded word of the chunk, expanding the run.
func (w *window[W]) wordAt(i int) W {
	if i < w.runningLength {
		if w.runningBit {
			return allOnes[W]()
		}
		return 0
	}
	return w.literalAt(i - w.runningLength)
}

// discardFirstWords drops x words, crossing chunk boundaries as needed.
func (w *window[W]) discardFirstWords(x int) {
	for x > 0 {
		n := min(x, w.size())
		w.bufferedMarker.discardFirstWords(n)
		x -= n
		if w.size() == 0 && !w.next() {
			return
		}
	}
}

// discardLiteralWords drops x literal words of the current chunk.
func (w *window[W]) discardLiteralWords(x int) {
	w.literalOffset += x
	w.literalCount -= x
	if w.literalCount == 0 {
		w.next()
	}
}

// discardRunningWords drops the rest of the current run.
func (w *window[W]) discardRunningWords() {
	w.runningLength = 0
	if w.literalCount == 0 {
		w.next()
	}
}

// dischargeUpTo forwards at most limit words to the sink and returns how many
// were written. With negate set every word is complemented on the way out.
func (w *window[W]) dischargeUpTo(s Sink[W], limit int, negate bool) int {
	written := 0
	for w.size() > 0 {
		if written+w.runningLength > limit {
			n := limit - written
			s.AddStreamOfEmptyWords(w.runningBit != negate, n)
			w.runningLength -= n
			return limit
		}
		s.AddStreamOfEmptyWords(w.runningBit != negate, w.runningLength)
		written += w.runningLength
		w.runningLength = 0
		if written+w.literalCount > limit {
			n := limit - written
			w.writeLiterals(s, n, negate)
			w.literalOffset += n
			w.literalCount -= n
			return limit
		}
		w.writeLiterals(s, w.literalCount, negate)
		written += w.literalCount
		w.literalOffset += w.literalCount
		w.literalCount = 0
		if s.Done() || !w.next() {
			break
		}
	}
	return written
}

func (w *window[W]) writeLiterals(s Sink[W], n int, negate bool) {
	if n == 0 {
		return
	}
	if negate {
		s.AddStreamOfNegatedLiteralWords(w.literals(n))
		return
	}
	s.AddStreamOfLiteralWords(w.literals(n))
}

// discharge forwards everything left in the stream to the sink.
func (w *window[W]) discharge(s Sink[W]) {
	for w.size() > 0 && !s.Done() {
		s.AddStreamOfEmptyWords(w.runningBit, w.runningLength)
		w.writeLiterals(s, w.literalCount, false)
		w.runningLength = 0
		w.literalCount = 0
		w.next()
	}
}

// dischargeAsEmpty consumes the rest of the stream, writing zero runs of the
// same span.
func (w *window[W]) dischargeAsEmpty(s Sink[W]) {
	for w.size() > 0 {
		n := w.size()
		s.AddStreamOfEmptyWords(false, n)
		w.discardFirstWords(n)
	}
}

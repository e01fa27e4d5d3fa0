package ewah

// defaultBufferSize is the initial capacity in words of a new bitmap.
const defaultBufferSize = 4

// runBuffer is the growable word array backing a bitmap.
//
// words[:len(words)] holds the encoded stream; the capacity doubles when an
// append does not fit, so appends are amortized O(1).
type runBuffer[W Word] struct {
	words []W
}

func newRunBuffer[W Word](capacity int) runBuffer[W] {
	if capacity < 1 {
		capacity = 1
	}
	return runBuffer[W]{words: make([]W, 0, capacity)}
}

// sizeInWords returns actualSizeInWords.
func (rb *runBuffer[W]) sizeInWords() int {
	return len(rb.words)
}

// grow makes room for n more words, doubling the capacity as needed.
func (rb *runBuffer[W]) grow(n int) {
	need := len(rb.words) + n
	if need <= cap(rb.words) {
		return
	}
	newCap := 2 * cap(rb.words)
	if newCap < need {
		newCap = need
	}
	words := make([]W, len(rb.words), newCap)
	copy(words, rb.words)
	rb.words = words
}

func (rb *runBuffer[W]) push(w W) {
	rb.grow(1)
	rb.words = append(rb.words, w)
}

// pushSlice appends the words verbatim.
func (rb *runBuffer[W]) pushSlice(src []W) {
	rb.grow(len(src))
	rb.words = append(rb.words, src...)
}

// pushNegated appends the bitwise complement of every word.
func (rb *runBuffer[W]) pushNegated(src []W) {
	rb.grow(len(src))
	n := len(rb.words)
	rb.words = rb.words[:n+len(src)]
	dst := rb.words[n:]
	for i, w := range src {
		dst[i] = ^w
	}
}

func (rb *runBuffer[W]) last() W {
	return rb.words[len(rb.words)-1]
}

func (rb *runBuffer[W]) orLast(w W) {
	rb.words[len(rb.words)-1] |= w
}

func (rb *runBuffer[W]) removeLast() {
	rb.words = rb.words[:len(rb.words)-1]
}

func (rb *runBuffer[W]) negate(i int) {
	rb.words[i] = ^rb.words[i]
}

func (rb *runBuffer[W]) and(i int, mask W) {
	rb.words[i] &= mask
}

// trim releases unused capacity.
func (rb *runBuffer[W]) trim() {
	if cap(rb.words) == len(rb.words) {
		return
	}
	words := make([]W, len(rb.words))
	copy(words, rb.words)
	rb.words = words
}

// clone returns a deep copy with the same capacity.
func (rb *runBuffer[W]) clone() runBuffer[W] {
	words := make([]W, len(rb.words), max(cap(rb.words), 1))
	copy(words, rb.words)
	return runBuffer[W]{words: words}
}

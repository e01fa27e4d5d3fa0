package ewah

// Sink receives the output of a merge.
//
// The same merge code materializes a bitmap, counts bits or stops at the
// first set bit, depending on the sink it writes to. *Bitmap is the
// materializing sink.
type Sink[W Word] interface {
	// AddWord appends one word, classifying it as a run or a literal.
	AddWord(w W)
	// AddLiteralWord appends one word verbatim as a literal.
	AddLiteralWord(w W)
	// AddStreamOfEmptyWords appends n words with every bit equal to bit.
	AddStreamOfEmptyWords(bit bool, n int)
	// AddStreamOfLiteralWords appends the words verbatim as literals.
	AddStreamOfLiteralWords(words []W)
	// AddStreamOfNegatedLiteralWords appends the complement of the words as literals.
	AddStreamOfNegatedLiteralWords(words []W)
	// SetSizeInBits sets the logical size of the output.
	SetSizeInBits(n int)
	// Done reports whether the sink needs no further input.
	Done() bool
}

// CountingSink counts the set bits written to it without storing any word.
type CountingSink[W Word] struct {
	count int
}

// Count returns the number of set bits seen so far.
func (c *CountingSink[W]) Count() int { return c.count }

// AddWord implements Sink.
func (c *CountingSink[W]) AddWord(w W) { c.count += popcount(w) }

// AddLiteralWord implements Sink.
func (c *CountingSink[W]) AddLiteralWord(w W) { c.count += popcount(w) }

// AddStreamOfEmptyWords implements Sink.
func (c *CountingSink[W]) AddStreamOfEmptyWords(bit bool, n int) {
	if bit {
		c.count += n * wordBits[W]()
	}
}

// AddStreamOfLiteralWords implements Sink.
func (c *CountingSink[W]) AddStreamOfLiteralWords(words []W) {
	for _, w := range words {
		c.count += popcount(w)
	}
}

// AddStreamOfNegatedLiteralWords implements Sink.
func (c *CountingSink[W]) AddStreamOfNegatedLiteralWords(words []W) {
	for _, w := range words {
		c.count += popcount(^w)
	}
}

// SetSizeInBits implements Sink.
func (c *CountingSink[W]) SetSizeInBits(int) {}

// Done implements Sink.
func (c *CountingSink[W]) Done() bool { return false }

// nonEmptySink flips to done on the first set bit it receives.
//
// It backs Intersects: the merge polls Done and stops, so the signal never
// leaves the package.
type nonEmptySink[W Word] struct {
	found bool
}

func (s *nonEmptySink[W]) AddWord(w W) {
	if w != 0 {
		s.found = true
	}
}

func (s *nonEmptySink[W]) AddLiteralWord(w W) {
	if w != 0 {
		s.found = true
	}
}

func (s *nonEmptySink[W]) AddStreamOfEmptyWords(bit bool, n int) {
	if bit && n > 0 {
		s.found = true
	}
}

func (s *nonEmptySink[W]) AddStreamOfLiteralWords(words []W) {
	for _, w := range words {
		if w != 0 {
			s.found = true
			return
		}
	}
}

func (s *nonEmptySink[W]) AddStreamOfNegatedLiteralWords(words []W) {
	for _, w := range words {
		if ^w != 0 {
			s.found = true
			return
		}
	}
}

func (s *nonEmptySink[W]) SetSizeInBits(int) {}

func (s *nonEmptySink[W]) Done() bool { return s.found }

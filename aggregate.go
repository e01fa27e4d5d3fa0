package ewah

import (
	"slices"
)

// And returns the intersection of all bitmaps.
//
// It walks every operand once, in lockstep, instead of folding pairwise:
// any zero run skips that many words for all operands at once. With no
// operands it returns an empty bitmap, with one a copy of it.
func And[W Word](bitmaps ...*Bitmap[W]) *Bitmap[W] {
	switch len(bitmaps) {
	case 0:
		return New[W]()
	case 1:
		return bitmaps[0].Clone()
	case 2:
		return bitmaps[0].And(bitmaps[1])
	}
	out := NewWithCapacity[W](minWords(bitmaps))
	andManyToSink(bitmaps, out)
	return out
}

// Or returns the union of all bitmaps.
func Or[W Word](bitmaps ...*Bitmap[W]) *Bitmap[W] {
	switch len(bitmaps) {
	case 0:
		return New[W]()
	case 1:
		return bitmaps[0].Clone()
	case 2:
		return bitmaps[0].Or(bitmaps[1])
	}
	out := NewWithCapacity[W](maxWords(bitmaps))
	orManyToSink(bitmaps, out)
	return out
}

// Xor returns the symmetric difference of all bitmaps, folded left to right.
func Xor[W Word](bitmaps ...*Bitmap[W]) *Bitmap[W] {
	switch len(bitmaps) {
	case 0:
		return New[W]()
	case 1:
		return bitmaps[0].Clone()
	}
	acc := bitmaps[0].Xor(bitmaps[1])
	for _, bm := range bitmaps[2:] {
		acc = acc.Xor(bm)
	}
	return acc
}

// AndCardinality returns the cardinality of the intersection of all bitmaps.
func AndCardinality[W Word](bitmaps ...*Bitmap[W]) int {
	switch len(bitmaps) {
	case 0:
		return 0
	case 1:
		return bitmaps[0].Cardinality()
	case 2:
		return bitmaps[0].AndCardinality(bitmaps[1])
	}
	var c CountingSink[W]
	andManyToSink(bitmaps, &c)
	return c.Count()
}

// OrCardinality returns the cardinality of the union of all bitmaps.
func OrCardinality[W Word](bitmaps ...*Bitmap[W]) int {
	switch len(bitmaps) {
	case 0:
		return 0
	case 1:
		return bitmaps[0].Cardinality()
	case 2:
		return bitmaps[0].OrCardinality(bitmaps[1])
	}
	var c CountingSink[W]
	orManyToSink(bitmaps, &c)
	return c.Count()
}

func minWords[W Word](bitmaps []*Bitmap[W]) int {
	n := bitmaps[0].buffer.sizeInWords()
	for _, bm := range bitmaps[1:] {
		n = min(n, bm.buffer.sizeInWords())
	}
	return n
}

func maxWords[W Word](bitmaps []*Bitmap[W]) int {
	n := 0
	for _, bm := range bitmaps {
		n = max(n, bm.buffer.sizeInWords())
	}
	return n
}

// sortedWindows opens one window per bitmap, ordered by SizeInBits.
func sortedWindows[W Word](bitmaps []*Bitmap[W], descending bool) ([]*window[W], int) {
	sorted := slices.Clone(bitmaps)
	slices.SortStableFunc(sorted, func(x, y *Bitmap[W]) int {
		if descending {
			return y.sizeInBits - x.sizeInBits
		}
		return x.sizeInBits - y.sizeInBits
	})
	windows := make([]*window[W], len(sorted))
	size := 0
	for i, bm := range sorted {
		windows[i] = newWindow(bm.buffer.words)
		size = max(size, bm.sizeInBits)
	}
	return windows, size
}

func andManyToSink[W Word](bitmaps []*Bitmap[W], s Sink[W]) {
	// The shortest operand first: its implicit zero tail ends the whole merge.
	windows, sizeInBits := sortedWindows(bitmaps, false)
	for !s.Done() {
		maxZeroRl, minOneRl, minSize := 0, -1, -1
		exposed := -1 // index of the only window without a run, if exactly one
		exposedCount := 0
		for i, w := range windows {
			if w.size() == 0 {
				s.SetSizeInBits(sizeInBits)
				return
			}
			if w.runningLength == 0 {
				exposed = i
				exposedCount++
			} else if w.runningBit {
				if minOneRl < 0 || w.runningLength < minOneRl {
					minOneRl = w.runningLength
				}
			} else {
				maxZeroRl = max(maxZeroRl, w.runningLength)
			}
			if minSize < 0 || w.size() < minSize {
				minSize = w.size()
			}
		}
		switch {
		case maxZeroRl > 0:
			// A zero run absorbs every other operand for its whole length.
			s.AddStreamOfEmptyWords(false, maxZeroRl)
			discardAll(windows, maxZeroRl)
		case exposedCount == 0:
			s.AddStreamOfEmptyWords(true, minOneRl)
			discardAll(windows, minOneRl)
		case exposedCount == 1:
			// Everyone else is on a one run: copy the exposed literals.
			w := windows[exposed]
			n := w.literalCount
			if minOneRl >= 0 {
				n = min(n, minOneRl)
			}
			s.AddStreamOfLiteralWords(w.literals(n))
			discardAll(windows, n)
		default:
			for k := 0; k < minSize; k++ {
				word := allOnes[W]()
				for _, w := range windows {
					word &= w.wordAt(k)
				}
				s.AddWord(word)
			}
			discardAll(windows, minSize)
		}
	}
}

func orManyToSink[W Word](bitmaps []*Bitmap[W], s Sink[W]) {
	// The longest operand first so it survives the longest in the active set.
	windows, sizeInBits := sortedWindows(bitmaps, true)
	windows = dropExhausted(windows)
	for len(windows) > 1 && !s.Done() {
		maxOneRl, minZeroRl, minSize := 0, -1, -1
		exposed := -1
		exposedCount := 0
		for i, w := range windows {
			if w.runningLength == 0 {
				exposed = i
				exposedCount++
			} else if !w.runningBit {
				if minZeroRl < 0 || w.runningLength < minZeroRl {
					minZeroRl = w.runningLength
				}
			} else {
				maxOneRl = max(maxOneRl, w.runningLength)
			}
			if minSize < 0 || w.size() < minSize {
				minSize = w.size()
			}
		}
		switch {
		case maxOneRl > 0:
			// A one run absorbs every other operand for its whole length.
			s.AddStreamOfEmptyWords(true, maxOneRl)
			discardAll(windows, maxOneRl)
		case exposedCount == 0:
			s.AddStreamOfEmptyWords(false, minZeroRl)
			discardAll(windows, minZeroRl)
		case exposedCount == 1:
			w := windows[exposed]
			n := w.literalCount
			if minZeroRl >= 0 {
				n = min(n, minZeroRl)
			}
			s.AddStreamOfLiteralWords(w.literals(n))
			discardAll(windows, n)
		default:
			for k := 0; k < minSize; k++ {
				var word W
				for _, w := range windows {
					word |= w.wordAt(k)
				}
				s.AddWord(word)
			}
			discardAll(windows, minSize)
		}
		windows = dropExhausted(windows)
	}
	if len(windows) == 1 {
		windows[0].discharge(s)
	}
	s.SetSizeInBits(sizeInBits)
}

// discardAll drops n words from every window. Windows that run out are left
// empty rather than failing: an operand whose zero or one run is longer than
// what remains in a shorter operand simply exhausts it.
func discardAll[W Word](windows []*window[W], n int) {
	for _, w := range windows {
		w.discardFirstWords(n)
	}
}

func dropExhausted[W Word](windows []*window[W]) []*window[W] {
	return slices.DeleteFunc(windows, func(w *window[W]) bool {
		return w.size() == 0
	})
}

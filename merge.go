package ewah

// Pairwise merges.
//
// Each operand is read through its own window. Per step the window with the
// longer current run is the predator and the other one the prey: the predator's
// run decides, through the operator's identity and absorbing elements, whether
// the prey is forwarded (possibly complemented) or overwritten for that many
// words. Once neither window sits on a run, the common literal words are
// combined with the real bitwise operator. Every step consumes at least one
// chunk of one operand, so the total work is proportional to the compressed
// sizes of both inputs.

// And returns the intersection of b and other. Neither operand is modified.
//
// The result's SizeInBits is the larger of the two operand sizes.
func (b *Bitmap[W]) And(other Source[W]) *Bitmap[W] {
	o := other.bitmap()
	out := NewWithCapacity[W](min(b.buffer.sizeInWords(), o.buffer.sizeInWords()))
	andToSink(b, o, out)
	return out
}

// Or returns the union of b and other. Neither operand is modified.
func (b *Bitmap[W]) Or(other Source[W]) *Bitmap[W] {
	o := other.bitmap()
	out := NewWithCapacity[W](b.buffer.sizeInWords() + o.buffer.sizeInWords())
	orToSink(b, o, out)
	return out
}

// Xor returns the symmetric difference of b and other. Neither operand is modified.
func (b *Bitmap[W]) Xor(other Source[W]) *Bitmap[W] {
	o := other.bitmap()
	out := NewWithCapacity[W](b.buffer.sizeInWords() + o.buffer.sizeInWords())
	xorToSink(b, o, out)
	return out
}

// AndNot returns the bits of b that are not set in other. Neither operand is modified.
func (b *Bitmap[W]) AndNot(other Source[W]) *Bitmap[W] {
	o := other.bitmap()
	out := NewWithCapacity[W](b.buffer.sizeInWords())
	andNotToSink(b, o, out)
	return out
}

// AndCardinality returns the cardinality of b AND other without materializing it.
func (b *Bitmap[W]) AndCardinality(other Source[W]) int {
	var c CountingSink[W]
	andToSink(b, other.bitmap(), &c)
	return c.Count()
}

// OrCardinality returns the cardinality of b OR other without materializing it.
func (b *Bitmap[W]) OrCardinality(other Source[W]) int {
	var c CountingSink[W]
	orToSink(b, other.bitmap(), &c)
	return c.Count()
}

// XorCardinality returns the cardinality of b XOR other without materializing it.
func (b *Bitmap[W]) XorCardinality(other Source[W]) int {
	var c CountingSink[W]
	xorToSink(b, other.bitmap(), &c)
	return c.Count()
}

// AndNotCardinality returns the cardinality of b AND NOT other without materializing it.
func (b *Bitmap[W]) AndNotCardinality(other Source[W]) int {
	var c CountingSink[W]
	andNotToSink(b, other.bitmap(), &c)
	return c.Count()
}

// Intersects reports whether b and other share at least one set bit.
// The merge stops at the first common bit.
func (b *Bitmap[W]) Intersects(other Source[W]) bool {
	var s nonEmptySink[W]
	andToSink(b, other.bitmap(), &s)
	return s.found
}

// AndTo writes b AND other to sink.
func (b *Bitmap[W]) AndTo(other Source[W], sink Sink[W]) {
	andToSink(b, other.bitmap(), sink)
}

// OrTo writes b OR other to sink.
func (b *Bitmap[W]) OrTo(other Source[W], sink Sink[W]) {
	orToSink(b, other.bitmap(), sink)
}

// XorTo writes b XOR other to sink.
func (b *Bitmap[W]) XorTo(other Source[W], sink Sink[W]) {
	xorToSink(b, other.bitmap(), sink)
}

// AndNotTo writes b AND NOT other to sink.
func (b *Bitmap[W]) AndNotTo(other Source[W], sink Sink[W]) {
	andNotToSink(b, other.bitmap(), sink)
}

// huntingPair returns (prey, predator, aIsPrey) for the current step: the
// predator is the window with the longer run. Ties go to a as predator.
func huntingPair[W Word](wa, wb *window[W]) (*window[W], *window[W], bool) {
	if wa.runningLength < wb.runningLength {
		return wa, wb, true
	}
	return wb, wa, false
}

func andToSink[W Word](a, b *Bitmap[W], s Sink[W]) {
	wa, wb := newWindow(a.buffer.words), newWindow(b.buffer.words)
	for wa.size() > 0 && wb.size() > 0 {
		if s.Done() {
			return
		}
		for wa.runningLength > 0 || wb.runningLength > 0 {
			prey, predator, _ := huntingPair(wa, wb)
			if !predator.runningBit {
				// 0 absorbs.
				s.AddStreamOfEmptyWords(false, predator.runningLength)
				prey.discardFirstWords(predator.runningLength)
			} else {
				// 1 is the identity: forward the prey.
				n := prey.dischargeUpTo(s, predator.runningLength, false)
				s.AddStreamOfEmptyWords(false, predator.runningLength-n)
			}
			predator.discardRunningWords()
			if s.Done() {
				return
			}
		}
		if n := min(wa.literalCount, wb.literalCount); n > 0 {
			for k := 0; k < n; k++ {
				s.AddWord(wa.literalAt(k) & wb.literalAt(k))
			}
			wa.discardLiteralWords(n)
			wb.discardLiteralWords(n)
		}
	}
	if wa.size() > 0 {
		wa.dischargeAsEmpty(s)
	} else {
		wb.dischargeAsEmpty(s)
	}
	s.SetSizeInBits(max(a.sizeInBits, b.sizeInBits))
}

func orToSink[W Word](a, b *Bitmap[W], s Sink[W]) {
	wa, wb := newWindow(a.buffer.words), newWindow(b.buffer.words)
	for wa.size() > 0 && wb.size() > 0 {
		if s.Done() {
			return
		}
		for wa.runningLength > 0 || wb.runningLength > 0 {
			prey, predator, _ := huntingPair(wa, wb)
			if predator.runningBit {
				// 1 absorbs.
				s.AddStreamOfEmptyWords(true, predator.runningLength)
				prey.discardFirstWords(predator.runningLength)
			} else {
				// 0 is the identity: forward the prey.
				n := prey.dischargeUpTo(s, predator.runningLength, false)
				s.AddStreamOfEmptyWords(false, predator.runningLength-n)
			}
			predator.discardRunningWords()
			if s.Done() {
				return
			}
		}
		if n := min(wa.literalCount, wb.literalCount); n > 0 {
			for k := 0; k < n; k++ {
				s.AddWord(wa.literalAt(k) | wb.literalAt(k))
			}
			wa.discardLiteralWords(n)
			wb.discardLiteralWords(n)
		}
	}
	if wa.size() > 0 {
		wa.discharge(s)
	} else {
		wb.discharge(s)
	}
	s.SetSizeInBits(max(a.sizeInBits, b.sizeInBits))
}

func xorToSink[W Word](a, b *Bitmap[W], s Sink[W]) {
	wa, wb := newWindow(a.buffer.words), newWindow(b.buffer.words)
	for wa.size() > 0 && wb.size() > 0 {
		if s.Done() {
			return
		}
		for wa.runningLength > 0 || wb.runningLength > 0 {
			prey, predator, _ := huntingPair(wa, wb)
			// 0 forwards the prey, 1 forwards its complement.
			bit := predator.runningBit
			n := prey.dischargeUpTo(s, predator.runningLength, bit)
			s.AddStreamOfEmptyWords(bit, predator.runningLength-n)
			predator.discardRunningWords()
			if s.Done() {
				return
			}
		}
		if n := min(wa.literalCount, wb.literalCount); n > 0 {
			for k := 0; k < n; k++ {
				s.AddWord(wa.literalAt(k) ^ wb.literalAt(k))
			}
			wa.discardLiteralWords(n)
			wb.discardLiteralWords(n)
		}
	}
	if wa.size() > 0 {
		wa.discharge(s)
	} else {
		wb.discharge(s)
	}
	s.SetSizeInBits(max(a.sizeInBits, b.sizeInBits))
}

// andNotToSink computes a AND NOT b. The operator is not symmetric, so the
// run table depends on which operand is the predator:
//
//	predator a, run 0   -> 0
//	predator a, run 1   -> NOT prey b
//	predator b, run 0   -> prey a
//	predator b, run 1   -> 0
func andNotToSink[W Word](a, b *Bitmap[W], s Sink[W]) {
	wa, wb := newWindow(a.buffer.words), newWindow(b.buffer.words)
	for wa.size() > 0 && wb.size() > 0 {
		if s.Done() {
			return
		}
		for wa.runningLength > 0 || wb.runningLength > 0 {
			prey, predator, aIsPrey := huntingPair(wa, wb)
			switch {
			case predator.runningBit == aIsPrey:
				s.AddStreamOfEmptyWords(false, predator.runningLength)
				prey.discardFirstWords(predator.runningLength)
			case aIsPrey:
				n := prey.dischargeUpTo(s, predator.runningLength, false)
				s.AddStreamOfEmptyWords(false, predator.runningLength-n)
			default:
				n := prey.dischargeUpTo(s, predator.runningLength, true)
				s.AddStreamOfEmptyWords(true, predator.runningLength-n)
			}
			predator.discardRunningWords()
			if s.Done() {
				return
			}
		}
		if n := min(wa.literalCount, wb.literalCount); n > 0 {
			for k := 0; k < n; k++ {
				s.AddWord(wa.literalAt(k) &^ wb.literalAt(k))
			}
			wa.discardLiteralWords(n)
			wb.discardLiteralWords(n)
		}
	}
	if wa.size() > 0 {
		// b is exhausted: the rest of a survives.
		wa.discharge(s)
	} else {
		wb.dischargeAsEmpty(s)
	}
	s.SetSizeInBits(max(a.sizeInBits, b.sizeInBits))
}

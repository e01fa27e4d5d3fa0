package ewah

// marker is a live view of the marker word at a buffer position.
//
// Reads and writes go straight to the backing buffer, so mutations persist.
// It is only used while building a bitmap; merges use bufferedMarker instead.
type marker[W Word] struct {
	rb  *runBuffer[W]
	pos int
}

func (m marker[W]) word() W {
	return m.rb.words[m.pos]
}

func (m marker[W]) runningBit() bool {
	return markerRunningBit(m.word())
}

func (m marker[W]) setRunningBit(b bool) {
	m.rb.words[m.pos] = markerSetRunningBit(m.word(), b)
}

func (m marker[W]) runningLength() int {
	return markerRunningLength(m.word())
}

func (m marker[W]) setRunningLength(n int) {
	m.rb.words[m.pos] = markerSetRunningLength(m.word(), n)
}

func (m marker[W]) literalCount() int {
	return markerLiteralCount(m.word())
}

func (m marker[W]) setLiteralCount(n int) {
	m.rb.words[m.pos] = markerSetLiteralCount(m.word(), n)
}

func (m marker[W]) size() int {
	return markerSize(m.word())
}

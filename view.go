package ewah

import (
	"iter"
	"unsafe"

	"github.com/hupe1980/ewah/internal/mmap"
)

// View is a read-only bitmap decoded in place from its wire encoding.
//
// On little-endian hosts, when the word payload is suitably aligned, the view
// reads the words directly from the given bytes; otherwise they are copied
// once. The bytes must not be modified while the view is in use.
type View[W Word] struct {
	bm Bitmap[W]
}

// NewView validates data as a serialized bitmap and returns a view over it.
// data must hold exactly one encoded bitmap.
func NewView[W Word](data []byte) (*View[W], error) {
	sizeInBits, raw, rlw, err := parse[W](data)
	if err != nil {
		return nil, err
	}
	wordBytes := wordBits[W]() / 8
	if rest := len(data) - headerSize - trailerSize; rest != len(raw) {
		return nil, &ErrUnalignedData{
			Length:   rest,
			WordBits: wordBits[W](),
			cause:    corruptf("%d trailing bytes", rest-len(raw)),
		}
	}
	words := aliasWords[W](raw)
	if words == nil {
		words = decodeWords(make([]W, 0, len(raw)/wordBytes), raw)
	}
	if err := validate(words, rlw, sizeInBits); err != nil {
		return nil, err
	}
	return &View[W]{bm: Bitmap[W]{
		buffer:     runBuffer[W]{words: words[:len(words):len(words)]},
		rlw:        rlw,
		sizeInBits: sizeInBits,
	}}, nil
}

// aliasWords reinterprets raw as words without copying, or returns nil when
// the host byte order or the alignment of raw does not allow it.
func aliasWords[W Word](raw []byte) []W {
	if !littleEndian || len(raw) == 0 {
		return nil
	}
	var zero W
	p := unsafe.Pointer(unsafe.SliceData(raw))
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		return nil
	}
	return unsafe.Slice((*W)(p), len(raw)/int(unsafe.Sizeof(zero)))
}

var littleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

func (v *View[W]) bitmap() *Bitmap[W] { return &v.bm }

// Cardinality returns the number of set bits.
func (v *View[W]) Cardinality() int { return v.bm.Cardinality() }

// IsEmpty reports whether no bit is set.
func (v *View[W]) IsEmpty() bool { return v.bm.IsEmpty() }

// Get reports whether bit i is set.
func (v *View[W]) Get(i int) bool { return v.bm.Get(i) }

// Iterator returns a lazy iterator over the set positions.
func (v *View[W]) Iterator() *PositionIterator[W] { return v.bm.Iterator() }

// All returns an iterator over the set positions in ascending order.
func (v *View[W]) All() iter.Seq[int] { return v.bm.All() }

// Positions returns all set positions in ascending order.
func (v *View[W]) Positions() []int { return v.bm.Positions() }

// SizeInBits returns the logical length of the bitmap.
func (v *View[W]) SizeInBits() int { return v.bm.SizeInBits() }

// SizeInBytes returns the size of the encoded words in bytes.
func (v *View[W]) SizeInBytes() int { return v.bm.SizeInBytes() }

// And returns the intersection as a new bitmap.
func (v *View[W]) And(other Source[W]) *Bitmap[W] { return v.bm.And(other) }

// Or returns the union as a new bitmap.
func (v *View[W]) Or(other Source[W]) *Bitmap[W] { return v.bm.Or(other) }

// Xor returns the symmetric difference as a new bitmap.
func (v *View[W]) Xor(other Source[W]) *Bitmap[W] { return v.bm.Xor(other) }

// AndNot returns the bits of v not set in other as a new bitmap.
func (v *View[W]) AndNot(other Source[W]) *Bitmap[W] { return v.bm.AndNot(other) }

// Intersects reports whether v and other share at least one set bit.
func (v *View[W]) Intersects(other Source[W]) bool { return v.bm.Intersects(other) }

// Equal reports whether both operands have the same encoded representation.
func (v *View[W]) Equal(other Source[W]) bool { return v.bm.Equal(other) }

// Clone copies the view into a mutable bitmap.
func (v *View[W]) Clone() *Bitmap[W] { return v.bm.Clone() }

// String returns the set positions, e.g. "{1,5,64}".
func (v *View[W]) String() string { return v.bm.String() }

// MappedView is a View over a memory-mapped file.
type MappedView[W Word] struct {
	*View[W]
	m *mmap.Mapping
}

// OpenFile maps the serialized bitmap at path read-only. The view and every
// slice obtained from it are invalid after Close.
func OpenFile[W Word](path string) (*MappedView[W], error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	v, err := NewView[W](m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	_ = m.Advise(mmap.AccessSequential)
	return &MappedView[W]{View: v, m: m}, nil
}

// Close unmaps the file.
func (mv *MappedView[W]) Close() error {
	return mv.m.Close()
}

package interop

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/ewah"
)

// ErrOutOfRange is returned when a position does not fit the target type.
var ErrOutOfRange = errors.New("interop: position out of range")

// Positioned is implemented by *ewah.Bitmap and *ewah.View.
type Positioned interface {
	All() iter.Seq[int]
	SizeInBits() int
}

const batchSize = 1024

// ToRoaring copies the set positions of src into a new Roaring bitmap.
func ToRoaring(src Positioned) (*roaring.Bitmap, error) {
	rb := roaring.New()
	batch := make([]uint32, 0, batchSize)
	for p := range src.All() {
		if p > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d does not fit uint32", ErrOutOfRange, p)
		}
		batch = append(batch, uint32(p))
		if len(batch) == batchSize {
			rb.AddMany(batch)
			batch = batch[:0]
		}
	}
	rb.AddMany(batch)
	rb.RunOptimize()
	return rb, nil
}

// FromRoaring builds an EWAH bitmap holding the values of rb. The size in
// bits is one past the largest value.
func FromRoaring[W ewah.Word](rb *roaring.Bitmap) *ewah.Bitmap[W] {
	bm := ewah.New[W]()
	it := rb.ManyIterator()
	buf := make([]uint32, batchSize)
	for n := it.NextMany(buf); n > 0; n = it.NextMany(buf) {
		for _, v := range buf[:n] {
			bm.Set(int(v))
		}
	}
	return bm
}

// ToBitSet copies src into a bitset of length src.SizeInBits().
func ToBitSet(src Positioned) *bitset.BitSet {
	bs := bitset.New(uint(src.SizeInBits()))
	for p := range src.All() {
		bs.Set(uint(p))
	}
	return bs
}

// FromBitSet builds an EWAH bitmap holding the set bits of bs. The size in
// bits is bs.Len().
func FromBitSet[W ewah.Word](bs *bitset.BitSet) *ewah.Bitmap[W] {
	bm := ewah.New[W]()
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		bm.Set(int(i))
	}
	if n := int(bs.Len()); n > bm.SizeInBits() {
		bm.SetSizeInBits(n)
	}
	return bm
}

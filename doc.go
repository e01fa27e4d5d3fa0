// Package ewah implements EWAH (Enhanced Word-Aligned Hybrid) compressed
// bitmaps.
//
// A bitmap is a run-length encoded bit vector over fixed-width words. Runs of
// all-zero or all-one words collapse into a single marker word, other words
// are stored verbatim as literals. Logical operations stream over both
// compressed inputs and cost time proportional to their compressed sizes.
//
// # Quick Start
//
//	a := ewah.New64()
//	a.Set(1)
//	a.Set(1 << 30) // bits are set in increasing order
//
//	b := ewah.FromPositions[uint64](1, 2, 3)
//	both := a.And(b)
//	fmt.Println(both.Cardinality())
//
//	for p := range a.Or(b).All() {
//		fmt.Println(p)
//	}
//
// # Word Width
//
// The word type is a type parameter. Bitmap64 packs a 32-bit run length and a
// 31-bit literal count into its marker words and suits long runs; Bitmap32
// halves the per-word overhead of sparse literal-heavy data.
//
// # Merges and Sinks
//
// And, Or, Xor and AndNot never modify their operands. The *To variants write
// into any Sink; CountingSink computes cardinalities without materializing
// the result. The package-level And and Or merge many bitmaps in a single
// pass.
//
// # Serialization
//
// WriteTo and MarshalBinary produce the little-endian wire format
//
//	int32 sizeInBits | int32 wordCount | words | int32 activeMarker
//
// NewView and OpenFile read that format without decoding it word by word,
// which makes serialized bitmaps usable straight from memory-mapped files.
//
// Bitmaps are not safe for concurrent mutation. Concurrent read-only use,
// including as operands of parallel merges, is safe.
package ewah

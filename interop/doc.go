// Package interop converts EWAH bitmaps to and from Roaring bitmaps and
// uncompressed bitsets.
package interop

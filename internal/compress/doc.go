// Package compress provides the block codecs used for stored bitmap frames:
// LZ4 for fast reads and Zstandard for a better ratio.
//
// Blocks carry no header of their own. The caller records the algorithm and
// the uncompressed length next to the block and passes both back to
// Decompress.
package compress

package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a block codec. The values are persisted.
type Algorithm uint8

const (
	None Algorithm = 0
	LZ4  Algorithm = 1
	Zstd Algorithm = 2
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("compress(%d)", uint8(a))
	}
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool { return a <= Zstd }

// Parse maps a name produced by String back to its Algorithm.
func Parse(name string) (Algorithm, error) {
	switch name {
	case "none", "":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	}
	return None, fmt.Errorf("compress: unknown algorithm %q", name)
}

var (
	// ErrUnknownAlgorithm is returned for algorithm values outside the known set.
	ErrUnknownAlgorithm = errors.New("compress: unknown algorithm")
	// ErrSizeMismatch is returned when a block does not inflate to the recorded length.
	ErrSizeMismatch = errors.New("compress: decompressed size mismatch")
	// ErrSizeLimit is returned when the declared size cannot be produced from
	// the block, before any output is allocated.
	ErrSizeLimit = errors.New("compress: declared size exceeds block bound")
)

const (
	// lz4MaxInflation bounds the output of one lz4 block byte: a match length
	// grows by at most 255 per extension byte.
	lz4MaxInflation = 255
	// zstdMaxInflation bounds zstd output per input byte: an RLE block of
	// 4 bytes expands to at most 128 KiB.
	zstdMaxInflation = (128 << 10) / 4
	// zstdInitialCap caps the preallocated zstd output; DecodeAll grows it.
	zstdInitialCap = 1 << 20
	// maxDecodedSize matches the 32-bit length field of stored frames.
	maxDecodedSize = 1<<32 - 1
)

// MaxDecompressedSize returns the largest output alg can produce from n
// compressed bytes.
func MaxDecompressedSize(alg Algorithm, n int) int {
	switch alg {
	case LZ4:
		return n * lz4MaxInflation
	case Zstd:
		return n * zstdMaxInflation
	default:
		return n
	}
}

// maxRatio is the largest compressed/uncompressed ratio still worth storing.
const maxRatio = 0.9

var (
	encoders sync.Pool
	decoders sync.Pool
)

func getEncoder() *zstd.Encoder {
	if v := encoders.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getDecoder() *zstd.Decoder {
	if v := decoders.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxDecodedSize))
	return dec
}

// Compress encodes src with alg and returns the block together with the
// algorithm actually used. Blocks that do not shrink below maxRatio of their
// input are returned as-is with None.
func Compress(alg Algorithm, src []byte) ([]byte, Algorithm, error) {
	if alg == None || len(src) == 0 {
		return src, None, nil
	}
	var out []byte
	switch alg {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := lz4.CompressBlock(src, buf, nil)
		if err != nil {
			return nil, None, err
		}
		out = buf[:n]
	case Zstd:
		enc := getEncoder()
		out = enc.EncodeAll(src, make([]byte, 0, len(src)/2))
		encoders.Put(enc)
	default:
		return nil, None, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, alg)
	}
	if len(out) == 0 || float64(len(out)) > float64(len(src))*maxRatio {
		return src, None, nil
	}
	return out, alg, nil
}

// Decompress inflates a block produced by Compress into exactly size bytes.
func Decompress(alg Algorithm, src []byte, size int) ([]byte, error) {
	if size < 0 || (alg.Valid() && alg != None && size > MaxDecompressedSize(alg, len(src))) {
		return nil, fmt.Errorf("%w: %d bytes from a %d-byte %s block", ErrSizeLimit, size, len(src), alg)
	}
	switch alg {
	case None:
		if len(src) != size {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrSizeMismatch, len(src), size)
		}
		return src, nil
	case LZ4:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrSizeMismatch, n, size)
		}
		return dst, nil
	case Zstd:
		var hdr zstd.Header
		if err := hdr.Decode(src); err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		if hdr.HasFCS && hdr.FrameContentSize != uint64(size) {
			return nil, fmt.Errorf("%w: frame declares %d, want %d", ErrSizeMismatch, hdr.FrameContentSize, size)
		}
		dec := getDecoder()
		defer decoders.Put(dec)
		dst, err := dec.DecodeAll(src, make([]byte, 0, min(size, zstdInitialCap)))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		if len(dst) != size {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrSizeMismatch, len(dst), size)
		}
		return dst, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, alg)
}

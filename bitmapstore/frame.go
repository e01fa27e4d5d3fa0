package bitmapstore

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/ewah/internal/compress"
	"github.com/hupe1980/ewah/internal/hash"
)

// Frame layout, little-endian:
//
//	[4]byte magic "EWAH"
//	uint8   version
//	uint8   word bits (32 or 64)
//	uint8   compression
//	uint8   reserved, zero
//	uint32  uncompressed payload length
//	uint32  CRC32C of the uncompressed payload
//	payload
const (
	frameMagic      = "EWAH"
	frameVersion    = 1
	frameHeaderSize = 16
)

type frameHeader struct {
	version     uint8
	wordBits    uint8
	compression compress.Algorithm
	rawLen      uint32
	checksum    uint32
}

// encodeFrame compresses payload with alg and prepends the frame header.
// The algorithm actually used is returned; it is None when alg did not pay off.
func encodeFrame(wordBits int, alg compress.Algorithm, payload []byte) ([]byte, compress.Algorithm, error) {
	if uint64(len(payload)) > 1<<32-1 {
		return nil, 0, fmt.Errorf("%w: payload of %d bytes", ErrBadFrame, len(payload))
	}
	body, used, err := compress.Compress(alg, payload)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, frameHeaderSize, frameHeaderSize+len(body))
	copy(out, frameMagic)
	out[4] = frameVersion
	out[5] = uint8(wordBits)
	out[6] = uint8(used)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[12:], hash.CRC32C(payload))
	return append(out, body...), used, nil
}

func parseFrameHeader(data []byte) (frameHeader, error) {
	if len(data) < frameHeaderSize || string(data[:4]) != frameMagic {
		return frameHeader{}, ErrBadFrame
	}
	h := frameHeader{
		version:     data[4],
		wordBits:    data[5],
		compression: compress.Algorithm(data[6]),
		rawLen:      binary.LittleEndian.Uint32(data[8:]),
		checksum:    binary.LittleEndian.Uint32(data[12:]),
	}
	if h.version != frameVersion {
		return frameHeader{}, fmt.Errorf("%w: frame version %d", ErrUnsupportedVersion, h.version)
	}
	if !h.compression.Valid() || data[7] != 0 {
		return frameHeader{}, fmt.Errorf("%w: compression %d", ErrBadFrame, data[6])
	}
	return h, nil
}

// decodeFrame returns the verified uncompressed payload. For uncompressed
// frames the payload aliases data.
func decodeFrame(data []byte, wordBits int) (frameHeader, []byte, error) {
	h, err := parseFrameHeader(data)
	if err != nil {
		return h, nil, err
	}
	if int(h.wordBits) != wordBits {
		return h, nil, fmt.Errorf("%w: stored %d-bit words, store uses %d", ErrWordWidthMismatch, h.wordBits, wordBits)
	}
	payload, err := compress.Decompress(h.compression, data[frameHeaderSize:], int(h.rawLen))
	if err != nil {
		return h, nil, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	if !hash.Verify(payload, h.checksum) {
		return h, nil, ErrChecksumMismatch
	}
	return h, payload, nil
}

package ewah

import (
	"encoding/binary"
	"io"
	"math"
)

// Wire format, little-endian:
//
//	int32  sizeInBits
//	int32  actualSizeInWords
//	W[actualSizeInWords] words
//	int32  activeMarkerPosition
const (
	headerSize  = 8
	trailerSize = 4
)

// readChunkWords bounds the allocation made per read step, so a corrupt word
// count fails on the short stream instead of allocating up front.
const readChunkWords = 1 << 16

// SerializedSizeInBytes returns the number of bytes WriteTo will produce.
func (b *Bitmap[W]) SerializedSizeInBytes() int {
	return headerSize + b.SizeInBytes() + trailerSize
}

// AppendBinary appends the wire encoding of b to dst.
func (b *Bitmap[W]) AppendBinary(dst []byte) ([]byte, error) {
	if b.sizeInBits > math.MaxInt32 || b.buffer.sizeInWords() > math.MaxInt32 {
		return dst, ErrTooLarge
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(b.sizeInBits))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(b.buffer.sizeInWords()))
	dst = appendWords(dst, b.buffer.words)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(b.rlw))
	return dst, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Bitmap[W]) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(make([]byte, 0, b.SerializedSizeInBytes()))
}

// WriteTo implements io.WriterTo. Errors from w are returned unmodified.
func (b *Bitmap[W]) WriteTo(w io.Writer) (int64, error) {
	data, err := b.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom, replacing the contents of b.
//
// Errors from r are returned unmodified; a stream that ends early yields
// io.ErrUnexpectedEOF (or io.EOF before the first byte). On any error b is
// left unchanged.
func (b *Bitmap[W]) ReadFrom(r io.Reader) (int64, error) {
	var header [headerSize]byte
	read, err := io.ReadFull(r, header[:])
	total := int64(read)
	if err != nil {
		return total, err
	}
	sizeInBits, numWords, err := decodeHeader(header[:])
	if err != nil {
		return total, err
	}

	wordBytes := wordBits[W]() / 8
	words := make([]W, 0, min(numWords, readChunkWords))
	chunk := make([]byte, min(numWords, readChunkWords)*wordBytes)
	for remaining := numWords; remaining > 0; {
		n := min(remaining, readChunkWords)
		read, err = io.ReadFull(r, chunk[:n*wordBytes])
		total += int64(read)
		if err != nil {
			return total, unexpected(err)
		}
		words = decodeWords(words, chunk[:n*wordBytes])
		remaining -= n
	}

	var trailer [trailerSize]byte
	read, err = io.ReadFull(r, trailer[:])
	total += int64(read)
	if err != nil {
		return total, unexpected(err)
	}
	rlw := int(int32(binary.LittleEndian.Uint32(trailer[:])))
	if err := validate(words, rlw, sizeInBits); err != nil {
		return total, err
	}

	b.buffer = runBuffer[W]{words: words}
	b.rlw = rlw
	b.sizeInBits = sizeInBits
	return total, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The words are copied.
func (b *Bitmap[W]) UnmarshalBinary(data []byte) error {
	sizeInBits, words, rlw, err := parse[W](data)
	if err != nil {
		return err
	}
	decoded := decodeWords(make([]W, 0, len(words)/(wordBits[W]()/8)), words)
	if err := validate(decoded, rlw, sizeInBits); err != nil {
		return err
	}
	b.buffer = runBuffer[W]{words: decoded}
	b.rlw = rlw
	b.sizeInBits = sizeInBits
	return nil
}

// unexpected maps io.EOF inside a record to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func decodeHeader(header []byte) (sizeInBits, numWords int, err error) {
	sizeInBits = int(int32(binary.LittleEndian.Uint32(header[0:])))
	numWords = int(int32(binary.LittleEndian.Uint32(header[4:])))
	if sizeInBits < 0 {
		return 0, 0, corruptf("negative size in bits %d", sizeInBits)
	}
	if numWords < 1 {
		return 0, 0, corruptf("word count %d", numWords)
	}
	return sizeInBits, numWords, nil
}

// parse splits a complete serialized bitmap into its fields without decoding
// the words. The returned byte slice aliases data.
func parse[W Word](data []byte) (sizeInBits int, words []byte, rlw int, err error) {
	if len(data) < headerSize+trailerSize {
		return 0, nil, 0, io.ErrUnexpectedEOF
	}
	sizeInBits, numWords, err := decodeHeader(data[:headerSize])
	if err != nil {
		return 0, nil, 0, err
	}
	wordBytes := wordBits[W]() / 8
	end := headerSize + numWords*wordBytes
	if numWords > (len(data)-headerSize-trailerSize)/wordBytes {
		return 0, nil, 0, io.ErrUnexpectedEOF
	}
	words = data[headerSize:end]
	rlw = int(int32(binary.LittleEndian.Uint32(data[end:])))
	return sizeInBits, words, rlw, nil
}

// validate walks the chunk structure once and checks it against the header.
func validate[W Word](words []W, rlw, sizeInBits int) error {
	span := 0
	last := -1
	it := newChunkIterator(words)
	for it.hasNext() {
		pos := it.cursor
		m := it.next()
		if it.cursor > len(words) {
			return corruptf("chunk at %d overruns %d words", pos, len(words))
		}
		span += markerSize(m)
		last = pos
	}
	if rlw != last {
		return corruptf("active marker %d, last marker at %d", rlw, last)
	}
	if sizeInBits > span*wordBits[W]() {
		return corruptf("size in bits %d exceeds encoded span of %d words", sizeInBits, span)
	}
	return nil
}

func appendWords[W Word](dst []byte, words []W) []byte {
	if wordBits[W]() == 32 {
		for _, w := range words {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(w))
		}
		return dst
	}
	for _, w := range words {
		dst = binary.LittleEndian.AppendUint64(dst, uint64(w))
	}
	return dst
}

func decodeWords[W Word](dst []W, src []byte) []W {
	if wordBits[W]() == 32 {
		for i := 0; i+4 <= len(src); i += 4 {
			dst = append(dst, W(binary.LittleEndian.Uint32(src[i:])))
		}
		return dst
	}
	for i := 0; i+8 <= len(src); i += 8 {
		dst = append(dst, W(binary.LittleEndian.Uint64(src[i:])))
	}
	return dst
}

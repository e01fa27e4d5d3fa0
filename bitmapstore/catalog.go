package bitmapstore

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hupe1980/ewah/codec"
)

// Entry describes one stored bitmap.
type Entry struct {
	Name        string    `json:"name"`
	Cardinality int       `json:"cardinality"`
	SizeInBits  int       `json:"size_in_bits"`
	SizeInBytes int       `json:"size_in_bytes"`
	Compression string    `json:"compression"`
	StoredBytes int       `json:"stored_bytes"`
	Checksum    uint32    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"` // zero after Reindex; blobs carry no write time
}

const catalogVersion = 1

type catalogDoc struct {
	Version  int     `json:"version"`
	WordBits int     `json:"word_bits"`
	Entries  []Entry `json:"entries"`
}

// The catalog blob is the codec name, a newline, and the encoded document.
func encodeCatalog(c codec.Codec, doc catalogDoc) ([]byte, error) {
	body, err := c.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("bitmapstore: encode catalog: %w", err)
	}
	out := make([]byte, 0, len(c.Name())+1+len(body))
	out = append(out, c.Name()...)
	out = append(out, '\n')
	return append(out, body...), nil
}

func decodeCatalog(data []byte) (catalogDoc, error) {
	var doc catalogDoc
	name, body, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return doc, fmt.Errorf("%w: catalog without codec line", ErrBadFrame)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return doc, fmt.Errorf("%w: unknown catalog codec %q", ErrBadFrame, name)
	}
	if err := c.Unmarshal(body, &doc); err != nil {
		return doc, fmt.Errorf("bitmapstore: decode catalog: %w", err)
	}
	if doc.Version > catalogVersion {
		return doc, fmt.Errorf("%w: catalog version %d", ErrUnsupportedVersion, doc.Version)
	}
	return doc, nil
}

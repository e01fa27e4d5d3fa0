package bitmapstore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ewah/blobstore"
)

var (
	// ErrNotFound is returned when no bitmap is stored under a name.
	// It matches blobstore.ErrNotFound with errors.Is.
	ErrNotFound = fmt.Errorf("bitmapstore: bitmap not found: %w", blobstore.ErrNotFound)

	// ErrChecksumMismatch is returned when a frame payload fails its CRC32C check.
	ErrChecksumMismatch = errors.New("bitmapstore: checksum mismatch")

	// ErrWordWidthMismatch is returned when stored data uses another word width
	// than the store.
	ErrWordWidthMismatch = errors.New("bitmapstore: word width mismatch")

	// ErrInvalidName is returned for names that are empty, not slash-separated
	// relative paths, or start with an underscore.
	ErrInvalidName = errors.New("bitmapstore: invalid bitmap name")

	// ErrBadFrame is returned for blobs that are not bitmap frames.
	ErrBadFrame = errors.New("bitmapstore: malformed frame")

	// ErrUnsupportedVersion is returned for frames or catalogs written by a
	// newer format version.
	ErrUnsupportedVersion = errors.New("bitmapstore: unsupported format version")
)

// FrameError reports a stored bitmap that could not be decoded.
//
// The underlying error can be inspected with errors.Is / errors.As.
type FrameError struct {
	Name  string
	cause error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("bitmapstore: bitmap %q: %v", e.Name, e.cause)
}

func (e *FrameError) Unwrap() error { return e.cause }

func frameError(name string, err error) error {
	if err == nil {
		return nil
	}
	return &FrameError{Name: name, cause: err}
}

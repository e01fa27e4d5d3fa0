package ewah

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptData is returned when a serialized bitmap is structurally invalid.
	ErrCorruptData = errors.New("ewah: corrupt data")

	// ErrTooLarge is returned when a bitmap does not fit the 32-bit wire format.
	ErrTooLarge = errors.New("ewah: bitmap too large for wire format")
)

// ErrUnalignedData indicates a byte slice whose length is not a whole number
// of words for the view's word width.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnalignedData struct {
	Length   int
	WordBits int
	cause    error
}

func (e *ErrUnalignedData) Error() string {
	return fmt.Sprintf("ewah: %d bytes do not hold whole %d-bit words", e.Length, e.WordBits)
}

func (e *ErrUnalignedData) Unwrap() error { return e.cause }

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptData, fmt.Sprintf(format, args...))
}

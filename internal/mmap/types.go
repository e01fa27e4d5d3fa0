package mmap

import "errors"

// AccessPattern is an advisory hint about how mapped pages will be touched.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits a single pass over the words, e.g. Cardinality.
	AccessSequential
	// AccessRandom suits point lookups with Get.
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

var (
	// ErrClosed is returned by methods called after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned for sub-ranges outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned by ReadAt for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

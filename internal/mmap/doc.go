// Package mmap maps files read-only into memory.
//
// Serialized bitmaps are opened through a Mapping so that views can read the
// encoded words straight from the page cache, without copying:
//
//	m, err := mmap.Open("index/colors.ewah")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	region, _ := m.Region(offset, size)
//	_ = m.Advise(mmap.AccessRandom)
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile, where Advise is a no-op.
//
// Close is idempotent. Slices obtained from Bytes must not be used after
// Close returns.
package mmap

// Package hash provides CRC32-Castagnoli checksums.
//
// They are used for the structural hash of a bitmap and to protect stored
// bitmap frames against corruption:
//
//	sum := hash.CRC32C(payload)
//	if !hash.Verify(payload, sum) { ... }
//
// For streaming input use NewCRC32C.
package hash

// Package blobstore abstracts the storage of serialized bitmaps.
//
// A BlobStore holds named, immutable blobs. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral indexes
//   - LocalStore: local filesystem, memory-mapped reads, atomic writes
//   - CachingStore: in-memory LRU in front of another store
//   - minio.Store: any S3-compatible server through minio-go
//   - s3.Store: Amazon S3 through the AWS SDK
//
// Blobs that implement Mappable expose their bytes without copying, which
// lets bitmap views read words in place.
package blobstore

// Package bitmapstore persists named EWAH bitmaps in a blobstore.BlobStore.
//
// Every bitmap is written as one frame: a 16-byte header carrying the word
// width, the block compression and a CRC32C of the serialized bitmap,
// followed by the (optionally LZ4 or Zstd compressed) serialized bitmap.
// Frames are verified on every read.
//
// A catalog blob records name, cardinality and size of every stored bitmap so
// that List and Stat need no blob reads. The catalog is written by Sync and
// Close; Reindex rebuilds it from the frames themselves.
//
//	blobs := blobstore.NewLocalStore("./bitmaps")
//	st, err := bitmapstore.Open[uint64](ctx, blobs, bitmapstore.WithCompression(bitmapstore.CompressionZstd))
//	if err != nil { ... }
//	defer st.Close(ctx)
//
//	_, err = st.Put(ctx, "users/active", active)
//	bm, err := st.Get(ctx, "users/active")
package bitmapstore
